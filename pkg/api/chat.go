package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/athlink/cli/pkg/logger"
)

// GetConversations lists the current user's conversations
func (a *API) GetConversations(ctx context.Context) Envelope[[]Conversation] {
	logger.Debug("Fetching conversations")
	return send[[]Conversation](a.client.R(ctx), http.MethodGet, "/api/v1/chats")
}

// GetMessages lists the messages of a conversation, oldest first
func (a *API) GetMessages(ctx context.Context, conversationID int64) Envelope[[]Message] {
	logger.Debug("Fetching messages", "conversation_id", conversationID)
	return send[[]Message](a.client.R(ctx), http.MethodGet, fmt.Sprintf("/api/v1/chats/%d/messages", conversationID))
}

// SendMessage posts a message to a conversation
func (a *API) SendMessage(ctx context.Context, conversationID int64, content string) Envelope[Message] {
	logger.Debug("Sending message", "conversation_id", conversationID)
	return send[Message](a.client.R(ctx).SetBody(map[string]string{
		"content": content,
	}), http.MethodPost, fmt.Sprintf("/api/v1/chats/%d/messages", conversationID))
}
