package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadHitsConversationEndpoint(t *testing.T) {
	var gotPath string
	client := newServiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]Message{
			{ID: 1, Content: "hi", SenderID: 7, ReceiverID: 1, ListingID: 3, CreatedAt: time.Now()},
		})
	}))

	messages, err := NewMessageService(client).Thread(context.Background(), 7, 3)
	require.NoError(t, err)

	assert.Equal(t, "/messages/conversation/7/3", gotPath)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Content)
}

func TestSendPostsMessage(t *testing.T) {
	var gotInput MessageInput
	client := newServiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/messages", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotInput)
		json.NewEncoder(w).Encode(Message{ID: 44, Content: gotInput.Content})
	}))

	sent, err := NewMessageService(client).Send(context.Background(), MessageInput{
		ReceiverID: 7,
		ListingID:  3,
		Content:    "is this available?",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, gotInput.ReceiverID)
	assert.Equal(t, 3, gotInput.ListingID)
	assert.Equal(t, 44, sent.ID)
}

func TestUnreadCountUnwrapsPayload(t *testing.T) {
	client := newServiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/unread/count", r.URL.Path)
		w.Write([]byte(`{"unread_count": 6}`))
	}))

	count, err := NewMessageService(client).UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}
