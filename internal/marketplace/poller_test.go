package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradehub-dev/tradehub/internal/cache"
)

func newPollerFixture(t *testing.T, handler http.Handler) (*ThreadPoller, *cache.Cache) {
	t.Helper()

	store, err := cache.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client := newServiceClient(t, handler)
	return NewThreadPoller(NewMessageService(client), store, 1, zerolog.Nop()), store
}

func TestWatchRefreshesImmediately(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/messages/conversation/7/3":
			json.NewEncoder(w).Encode([]Message{
				{ID: 5, SenderID: 7, ReceiverID: 1, ListingID: 3, Content: "hello", CreatedAt: time.Now()},
			})
		case "/messages/conversations":
			json.NewEncoder(w).Encode([]Conversation{
				{OtherUserID: 7, ListingID: 3, LastMessage: "hello", LastMessageTime: time.Now()},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	poller, store := newPollerFixture(t, handler)

	var delivered atomic.Int32
	poller.OnThread = func(msgs []cache.Message) {
		delivered.Store(int32(len(msgs)))
	}

	require.NoError(t, poller.Watch(context.Background(), 7, 3))
	poller.Stop()

	// The first refresh runs synchronously inside Watch.
	assert.Equal(t, int32(1), delivered.Load())

	thread, err := store.Thread(cache.Key(7, 3))
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "hello", thread[0].Content)

	conversations, err := store.Conversations()
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestWatchSwitchingConversationsReplacesActiveKey(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/messages/conversation/7/3":
			json.NewEncoder(w).Encode([]Message{{ID: 1, SenderID: 7, ListingID: 3, Content: "first", CreatedAt: time.Now()}})
		case "/messages/conversation/9/4":
			json.NewEncoder(w).Encode([]Message{{ID: 2, SenderID: 9, ListingID: 4, Content: "second", CreatedAt: time.Now()}})
		default:
			json.NewEncoder(w).Encode([]Conversation{})
		}
	})

	poller, store := newPollerFixture(t, handler)

	require.NoError(t, poller.Watch(context.Background(), 7, 3))
	require.NoError(t, poller.Watch(context.Background(), 9, 4))
	poller.Stop()

	assert.False(t, poller.watching(cache.Key(7, 3)))

	// Both threads are cached, under their own keys.
	first, err := store.Thread(cache.Key(7, 3))
	require.NoError(t, err)
	second, err := store.Thread(cache.Key(9, 4))
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}

func TestStopIsIdempotent(t *testing.T) {
	poller, _ := newPollerFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Message{})
	}))

	poller.Stop()
	require.NoError(t, poller.Watch(context.Background(), 7, 3))
	poller.Stop()
	poller.Stop()
}

func TestPollFailuresAreSilent(t *testing.T) {
	poller, store := newPollerFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// A failing poll neither errors nor corrupts the cache.
	require.NoError(t, poller.Watch(context.Background(), 7, 3))
	poller.Stop()

	thread, err := store.Thread(cache.Key(7, 3))
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestWatchDeliversUnechoedSendInThread(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/messages/conversation/7/3":
			json.NewEncoder(w).Encode([]Message{
				{ID: 5, SenderID: 7, ReceiverID: 1, ListingID: 3, Content: "still there?", CreatedAt: time.Now()},
			})
		default:
			json.NewEncoder(w).Encode([]Conversation{})
		}
	})

	poller, store := newPollerFixture(t, handler)

	// A send the server has not echoed back yet.
	_, err := store.AddPending(cache.Key(7, 3), 7, 3, "yes, on my way")
	require.NoError(t, err)

	var mu sync.Mutex
	var delivered []cache.Message
	poller.OnThread = func(msgs []cache.Message) {
		mu.Lock()
		delivered = append([]cache.Message(nil), msgs...)
		mu.Unlock()
	}

	require.NoError(t, poller.Watch(context.Background(), 7, 3))
	poller.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 2)
	assert.Equal(t, "still there?", delivered[0].Content)
	assert.Equal(t, "yes, on my way", delivered[1].Content)
	assert.Equal(t, 1, delivered[1].SenderID)
}

func TestSendTrackedResolvesPendingOnEcho(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/messages" {
			var input MessageInput
			json.NewDecoder(r.Body).Decode(&input)
			json.NewEncoder(w).Encode(Message{
				ID: 77, SenderID: 1, ReceiverID: input.ReceiverID,
				ListingID: input.ListingID, Content: input.Content, CreatedAt: time.Now(),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	poller, store := newPollerFixture(t, handler)

	sent, err := poller.SendTracked(context.Background(), MessageInput{
		ReceiverID: 7, ListingID: 3, Content: "deal?",
	})
	require.NoError(t, err)
	assert.Equal(t, 77, sent.ID)

	key := cache.Key(7, 3)
	pending, err := store.Pending(key)
	require.NoError(t, err)
	assert.Empty(t, pending, "server ack should resolve the optimistic echo")

	thread, err := store.Thread(key)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "deal?", thread[0].Content)
}
