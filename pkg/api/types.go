package api

import "time"

// Role of an account on the platform
type Role string

const (
	RoleAthlete Role = "ATHLETE"
	RoleCompany Role = "COMPANY"
	RoleAdmin   Role = "ADMIN"
)

// Auth Types
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	CompanyName    string    `json:"company_name,omitempty"`
	Role           Role      `json:"role"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	Sport          string    `json:"sport,omitempty"`
	Position       string    `json:"position,omitempty"`
	ProfilePicture string    `json:"profile_picture"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	EmailVerified  bool      `json:"email_verified"`
	IsSuspended    bool      `json:"is_suspended"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayName is the company name for companies, the full name otherwise
func (u User) DisplayName() string {
	if u.Role == RoleCompany && u.CompanyName != "" {
		return u.CompanyName
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

type UpdateProfileRequest struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Sport       string `json:"sport,omitempty"`
	Position    string `json:"position,omitempty"`
}

// Follow Types
type FollowStatus string

const (
	FollowPending  FollowStatus = "PENDING"
	FollowAccepted FollowStatus = "ACCEPTED"
)

type FollowRelationship struct {
	FollowerID int64        `json:"follower_id"`
	FollowedID int64        `json:"followed_id"`
	Status     FollowStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Post Types
type Post struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"author_id"`
	Author       *User     `json:"author,omitempty"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"image_url,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type PostInput struct {
	Content string `json:"content"`
}

type PostList struct {
	Posts      []Post `json:"posts"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

type PostFilter struct {
	Page     int
	AuthorID int64
}

// Opportunity Types
type OpportunityType string

const (
	OpportunityJob         OpportunityType = "JOB"
	OpportunityInternship  OpportunityType = "INTERNSHIP"
	OpportunitySponsorship OpportunityType = "SPONSORSHIP"
	OpportunityTryout      OpportunityType = "TRYOUT"
)

type Opportunity struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"company_id"`
	Company     *User           `json:"company,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        OpportunityType `json:"type"`
	Location    string          `json:"location"`
	Sport       string          `json:"sport,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OpportunityInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        OpportunityType `json:"type"`
	Location    string          `json:"location"`
	Sport       string          `json:"sport,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
}

type OpportunityList struct {
	Opportunities []Opportunity `json:"opportunities"`
	TotalCount    int           `json:"total_count"`
	Page          int           `json:"page"`
	PageSize      int           `json:"page_size"`
}

type OpportunityFilter struct {
	Page int
	Type OpportunityType
}

// Presence Types
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "ONLINE"
	StatusOffline PresenceStatus = "OFFLINE"
)

type UserStatus struct {
	UserID   int64          `json:"user_id"`
	Status   PresenceStatus `json:"status"`
	LastSeen *time.Time     `json:"last_seen,omitempty"`
}

// Chat Types
type Conversation struct {
	ID            int64     `json:"id"`
	Participant   User      `json:"participant"`
	LastMessage   string    `json:"last_message"`
	UnreadCount   int       `json:"unread_count"`
	LastMessageAt time.Time `json:"last_message_at"`
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	SentAt         time.Time `json:"sent_at"`
}

// Admin Types
type DashboardStats struct {
	TotalUsers         int `json:"total_users"`
	TotalAthletes      int `json:"total_athletes"`
	TotalCompanies     int `json:"total_companies"`
	TotalPosts         int `json:"total_posts"`
	TotalOpportunities int `json:"total_opportunities"`
	ActiveToday        int `json:"active_today"`
	PendingReports     int `json:"pending_reports"`
}

type UserPage struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// Search Types
type SearchResult struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}
