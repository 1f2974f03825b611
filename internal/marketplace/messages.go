package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tradehub-dev/tradehub/internal/api"
)

// MessageService calls the messaging endpoints with the user session.
type MessageService struct {
	client *api.Client
}

// NewMessageService creates a message service over the shared client.
func NewMessageService(client *api.Client) *MessageService {
	return &MessageService{client: client}
}

// Conversations returns the user's conversation list, most recent first.
func (s *MessageService) Conversations(ctx context.Context) ([]Conversation, error) {
	var conversations []Conversation
	if err := s.client.Do(ctx, http.MethodGet, "/messages/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// Thread returns every message exchanged with otherUserID about listingID.
// Fetching a thread also marks its incoming messages read server-side.
func (s *MessageService) Thread(ctx context.Context, otherUserID, listingID int) ([]Message, error) {
	path := fmt.Sprintf("/messages/conversation/%d/%d", otherUserID, listingID)
	var messages []Message
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send delivers a message to another user about a listing.
func (s *MessageService) Send(ctx context.Context, input MessageInput) (*Message, error) {
	var message Message
	if err := s.client.Do(ctx, http.MethodPost, "/messages", input, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// UnreadCount returns the number of unread messages across all conversations.
func (s *MessageService) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := s.client.Do(ctx, http.MethodGet, "/messages/unread/count", nil, &out); err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}

// MarkRead marks a single message as read.
func (s *MessageService) MarkRead(ctx context.Context, messageID int) error {
	return s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/messages/%d/read", messageID), nil, nil)
}
