package store

import (
	"sync"

	"github.com/athlink/cli/pkg/api"
	"github.com/samber/lo"
)

// ChatState is a snapshot of the chat view
type ChatState struct {
	Conversations []api.Conversation
	ActiveID      int64
	Messages      map[int64][]api.Message
}

// TotalUnread sums unread counts across conversations
func (s ChatState) TotalUnread() int {
	return lo.SumBy(s.Conversations, func(c api.Conversation) int { return c.UnreadCount })
}

// ChatStore holds conversations and their messages
type ChatStore struct {
	mu       sync.Mutex
	convs    []api.Conversation
	activeID int64
	messages map[int64][]api.Message
	hub      hub[ChatState]
}

func NewChatStore() *ChatStore {
	return &ChatStore{messages: make(map[int64][]api.Message)}
}

// LoadConversations replaces the conversation list
func (s *ChatStore) LoadConversations(convs []api.Conversation) {
	s.mu.Lock()
	s.convs = append([]api.Conversation(nil), convs...)
	if s.activeID != 0 {
		s.markReadLocked(s.activeID)
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.publish(state)
}

// Select makes a conversation active and marks it read
func (s *ChatStore) Select(conversationID int64) {
	s.mu.Lock()
	s.activeID = conversationID
	s.markReadLocked(conversationID)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.publish(state)
}

// SetMessages replaces the messages of one conversation
func (s *ChatStore) SetMessages(conversationID int64, msgs []api.Message) {
	s.mu.Lock()
	s.messages[conversationID] = append([]api.Message(nil), msgs...)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.publish(state)
}

// AppendMessage adds a message, ignoring duplicates by id. Messages to a
// conversation other than the active one count as unread.
func (s *ChatStore) AppendMessage(msg api.Message) {
	s.mu.Lock()
	existing := s.messages[msg.ConversationID]
	if lo.ContainsBy(existing, func(m api.Message) bool { return m.ID == msg.ID }) {
		s.mu.Unlock()
		return
	}
	s.messages[msg.ConversationID] = append(existing, msg)

	_, idx, found := lo.FindIndexOf(s.convs, func(c api.Conversation) bool { return c.ID == msg.ConversationID })
	if found {
		s.convs[idx].LastMessage = msg.Content
		s.convs[idx].LastMessageAt = msg.SentAt
		if msg.ConversationID != s.activeID {
			s.convs[idx].UnreadCount++
		}
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.publish(state)
}

// MarkRead zeroes the unread count of a conversation
func (s *ChatStore) MarkRead(conversationID int64) {
	s.mu.Lock()
	s.markReadLocked(conversationID)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.publish(state)
}

// Clear resets the store, used on logout
func (s *ChatStore) Clear() {
	s.mu.Lock()
	s.convs = nil
	s.activeID = 0
	s.messages = make(map[int64][]api.Message)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.publish(state)
}

func (s *ChatStore) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ChatStore) TotalUnread() int {
	return s.State().TotalUnread()
}

func (s *ChatStore) Subscribe(fn func(ChatState)) func() {
	return s.hub.subscribe(fn)
}

func (s *ChatStore) markReadLocked(conversationID int64) {
	for i := range s.convs {
		if s.convs[i].ID == conversationID {
			s.convs[i].UnreadCount = 0
		}
	}
}

func (s *ChatStore) snapshotLocked() ChatState {
	messages := make(map[int64][]api.Message, len(s.messages))
	for id, msgs := range s.messages {
		messages[id] = append([]api.Message(nil), msgs...)
	}
	return ChatState{
		Conversations: append([]api.Conversation(nil), s.convs...),
		ActiveID:      s.activeID,
		Messages:      messages,
	}
}
