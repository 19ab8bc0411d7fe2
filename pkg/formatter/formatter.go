package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/output"
	"github.com/fatih/color"
	"github.com/samber/lo"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
)

var (
	UserHeaders         = []string{"ID", "USERNAME", "NAME", "ROLE", "LOCATION"}
	PostHeaders         = []string{"ID", "AUTHOR", "POSTED", "CONTENT"}
	OpportunityHeaders  = []string{"ID", "TYPE", "TITLE", "LOCATION", "DEADLINE"}
	ConversationHeaders = []string{"ID", "WITH", "UNREAD", "LAST MESSAGE"}
)

const previewLen = 60

// UserRows renders users for a table
func UserRows(users []api.User) [][]string {
	return lo.Map(users, func(u api.User, _ int) []string {
		return []string{id(u.ID), u.Username, u.DisplayName(), string(u.Role), u.Location}
	})
}

// UserFields is the profile view of a user
func UserFields(u api.User) []output.Field {
	fields := []output.Field{
		{Key: "ID", Value: u.ID},
		{Key: "Username", Value: u.Username},
		{Key: "Name", Value: u.DisplayName()},
		{Key: "Role", Value: u.Role},
	}
	if u.Email != "" {
		fields = append(fields, output.Field{Key: "Email", Value: u.Email})
	}
	if u.Sport != "" {
		fields = append(fields, output.Field{Key: "Sport", Value: strings.TrimSpace(u.Sport + " " + u.Position)})
	}
	return append(fields,
		output.Field{Key: "Location", Value: u.Location},
		output.Field{Key: "Bio", Value: u.Bio},
		output.Field{Key: "Followers", Value: u.FollowersCount},
		output.Field{Key: "Following", Value: u.FollowingCount},
	)
}

func PostRows(posts []api.Post) [][]string {
	return lo.Map(posts, func(p api.Post, _ int) []string {
		author := id(p.AuthorID)
		if p.Author != nil {
			author = p.Author.Username
		}
		return []string{id(p.ID), author, Ago(p.CreatedAt, time.Now()), Truncate(p.Content, previewLen)}
	})
}

func PostFields(p api.Post) []output.Field {
	fields := []output.Field{
		{Key: "ID", Value: p.ID},
		{Key: "Author", Value: p.AuthorID},
		{Key: "Posted", Value: p.CreatedAt.Format(time.RFC822)},
		{Key: "Likes", Value: p.LikeCount},
		{Key: "Comments", Value: p.CommentCount},
	}
	if p.ImageURL != "" {
		fields = append(fields, output.Field{Key: "Image", Value: p.ImageURL})
	}
	return append(fields, output.Field{Key: "Content", Value: p.Content})
}

func OpportunityRows(opps []api.Opportunity) [][]string {
	return lo.Map(opps, func(o api.Opportunity, _ int) []string {
		return []string{id(o.ID), string(o.Type), o.Title, o.Location, Deadline(o.Deadline)}
	})
}

func OpportunityFields(o api.Opportunity) []output.Field {
	company := id(o.CompanyID)
	if o.Company != nil {
		company = o.Company.DisplayName()
	}
	return []output.Field{
		{Key: "ID", Value: o.ID},
		{Key: "Title", Value: o.Title},
		{Key: "Company", Value: company},
		{Key: "Type", Value: o.Type},
		{Key: "Sport", Value: o.Sport},
		{Key: "Location", Value: o.Location},
		{Key: "Deadline", Value: Deadline(o.Deadline)},
		{Key: "Description", Value: o.Description},
	}
}

func ConversationRows(convs []api.Conversation) [][]string {
	return lo.Map(convs, func(c api.Conversation, _ int) []string {
		return []string{id(c.ID), c.Participant.Username, strconv.Itoa(c.UnreadCount), Truncate(c.LastMessage, previewLen)}
	})
}

// MessageLine renders one chat message; own messages are marked "you"
func MessageLine(m api.Message, selfID int64) string {
	who := "them"
	if m.SenderID == selfID {
		who = "you"
	}
	return fmt.Sprintf("[%s] %s: %s", m.SentAt.Format("15:04"), who, m.Content)
}

func StatsFields(s api.DashboardStats) []output.Field {
	return []output.Field{
		{Key: "Users", Value: s.TotalUsers},
		{Key: "Athletes", Value: s.TotalAthletes},
		{Key: "Companies", Value: s.TotalCompanies},
		{Key: "Posts", Value: s.TotalPosts},
		{Key: "Opportunities", Value: s.TotalOpportunities},
		{Key: "Active today", Value: s.ActiveToday},
		{Key: "Pending reports", Value: s.PendingReports},
	}
}

// Presence is the colored online/offline label
func Presence(online bool) string {
	if online {
		return Success.Sprint("● online")
	}
	return Warning.Sprint("○ offline")
}

// Countdown is the resend hint for the given remaining seconds
func Countdown(remaining int) string {
	if remaining <= 0 {
		return "You can resend the code now"
	}
	return fmt.Sprintf("Resend available in %ds", remaining)
}

func Deadline(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// Ago formats t relative to now in the largest whole unit
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Truncate shortens s to at most n runes, flattening newlines
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
