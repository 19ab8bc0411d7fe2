package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/athlink/cli/pkg/formatter"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/store"
)

// ChatService reads and sends direct messages
type ChatService struct {
	Env
}

func NewChatService(env Env) *ChatService {
	return &ChatService{Env: env}
}

// ListConversations shows the inbox with unread counts
func (s *ChatService) ListConversations(ctx context.Context) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}

	convs, err := s.App.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch conversations: %w", err)
	}
	unread := s.App.Chat.TotalUnread()
	title := fmt.Sprintf("%d conversation%s, %d unread", len(convs), pluralize(len(convs)), unread)
	return s.Out.PrintList(title, convs, formatter.ConversationHeaders, formatter.ConversationRows(convs))
}

// Read prints a conversation. With follow set it keeps printing new
// messages pushed over the socket until ctx is done.
func (s *ChatService) Read(ctx context.Context, conversationID int64, follow bool) error {
	me, err := s.requireUser(ctx)
	if err != nil {
		return err
	}

	msgs, err := s.App.OpenConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}
	for _, m := range msgs {
		s.Out.Line("%s", formatter.MessageLine(m, me.ID))
	}
	if !follow {
		return nil
	}

	if err := s.App.ConnectSocket(ctx); err != nil {
		return err
	}
	var mu sync.Mutex
	printed := len(msgs)
	unsubscribe := s.App.Chat.Subscribe(func(st store.ChatState) {
		mu.Lock()
		defer mu.Unlock()
		current := st.Messages[conversationID]
		for ; printed < len(current); printed++ {
			s.Out.Line("%s", formatter.MessageLine(current[printed], me.ID))
		}
	})
	defer unsubscribe()

	s.Out.Info("Waiting for new messages (Ctrl+C to stop)")
	<-ctx.Done()
	return nil
}

// Send posts a message; content is prompted for when empty
func (s *ChatService) Send(ctx context.Context, conversationID int64, content string) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		var err error
		if content, err = s.In.Required("Message: "); err != nil {
			return err
		}
	}

	msg, err := s.App.SendMessage(ctx, conversationID, content)
	if err != nil {
		s.Out.Error("Failed to send message: %v", err)
		return err
	}
	logger.Debug("Message sent", "conversation_id", conversationID, "message_id", msg.ID)
	s.Out.Success("✓ Message sent")
	return nil
}
