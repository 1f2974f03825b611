package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestThreadRoundTrip(t *testing.T) {
	c := openTestCache(t)
	key := Key(7, 3)

	msgs := []Message{
		{ID: 2, SenderID: 7, ReceiverID: 1, ListingID: 3, Content: "still available?", CreatedAt: time.Now().Add(-time.Minute)},
		{ID: 5, SenderID: 1, ReceiverID: 7, ListingID: 3, Content: "yes", CreatedAt: time.Now()},
	}
	require.NoError(t, c.StoreThread(key, msgs))

	got, err := c.Thread(key)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "still available?", got[0].Content)
	assert.Equal(t, "yes", got[1].Content)

	// Upserting the same IDs does not duplicate.
	require.NoError(t, c.StoreThread(key, msgs))
	got, err = c.Thread(key)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestThreadIsolationBetweenConversations(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.StoreThread(Key(7, 3), []Message{{ID: 1, Content: "a", CreatedAt: time.Now()}}))
	require.NoError(t, c.StoreThread(Key(9, 4), []Message{{ID: 2, Content: "b", CreatedAt: time.Now()}}))

	got, err := c.Thread(Key(7, 3))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Content)
}

func TestReconcileResolvesAcknowledgedPending(t *testing.T) {
	c := openTestCache(t)
	key := Key(7, 3)
	const selfID = 1

	_, err := c.AddPending(key, 7, 3, "deal at 500?")
	require.NoError(t, err)

	// Server echo of our send arrives on the next poll.
	echo := []Message{
		{ID: 10, SenderID: selfID, ReceiverID: 7, ListingID: 3, Content: "deal at 500?", CreatedAt: time.Now()},
	}
	require.NoError(t, c.Reconcile(key, echo, selfID))

	pending, err := c.Pending(key)
	require.NoError(t, err)
	assert.Empty(t, pending)

	thread, err := c.Thread(key)
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}

func TestReconcileKeepsUnacknowledgedPending(t *testing.T) {
	c := openTestCache(t)
	key := Key(7, 3)
	const selfID = 1

	_, err := c.AddPending(key, 7, 3, "deal at 500?")
	require.NoError(t, err)

	// The counterpart's message must not resolve our pending send, even with
	// identical content.
	theirs := []Message{
		{ID: 11, SenderID: 7, ReceiverID: selfID, ListingID: 3, Content: "deal at 500?", CreatedAt: time.Now()},
	}
	require.NoError(t, c.Reconcile(key, theirs, selfID))

	pending, err := c.Pending(key)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestReconcileIgnoresOlderIdenticalMessage(t *testing.T) {
	c := openTestCache(t)
	key := Key(7, 3)
	const selfID = 1

	// The user said "ok" an hour ago; that message is already in the thread.
	old := []Message{{ID: 20, SenderID: selfID, ReceiverID: 7, ListingID: 3, Content: "ok", CreatedAt: time.Now().Add(-time.Hour)}}
	require.NoError(t, c.StoreThread(key, old))

	// Saying "ok" again: the hour-old copy must not count as the echo.
	pendingRow, err := c.AddPending(key, 7, 3, "ok")
	require.NoError(t, err)

	require.NoError(t, c.Reconcile(key, old, selfID))
	pending, err := c.Pending(key)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// The real echo, stamped after the send, resolves it.
	echo := []Message{{ID: 21, SenderID: selfID, ReceiverID: 7, ListingID: 3, Content: "ok", CreatedAt: pendingRow.CreatedAt.Add(time.Second)}}
	require.NoError(t, c.Reconcile(key, echo, selfID))
	pending, err = c.Pending(key)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMergedThreadAppendsPendingEchoes(t *testing.T) {
	c := openTestCache(t)
	key := Key(7, 3)
	const selfID = 1

	require.NoError(t, c.StoreThread(key, []Message{
		{ID: 2, SenderID: 7, ReceiverID: selfID, ListingID: 3, Content: "still available?", CreatedAt: time.Now().Add(-time.Minute)},
	}))
	_, err := c.AddPending(key, 7, 3, "yes, tomorrow?")
	require.NoError(t, err)

	merged, err := c.MergedThread(key, selfID)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "still available?", merged[0].Content)
	assert.Equal(t, "yes, tomorrow?", merged[1].Content)
	assert.Equal(t, selfID, merged[1].SenderID)
	assert.Zero(t, merged[1].ID)
}

func TestReconcileResolvesDuplicateContentInOrder(t *testing.T) {
	c := openTestCache(t)
	key := Key(7, 3)
	const selfID = 1

	first, err := c.AddPending(key, 7, 3, "ok")
	require.NoError(t, err)
	second, err := c.AddPending(key, 7, 3, "ok")
	require.NoError(t, err)
	require.Less(t, first.ClientID, second.ClientID)

	// Only one echo arrived; the older pending resolves.
	echo := []Message{{ID: 12, SenderID: selfID, ReceiverID: 7, ListingID: 3, Content: "ok", CreatedAt: time.Now()}}
	require.NoError(t, c.Reconcile(key, echo, selfID))

	pending, err := c.Pending(key)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ClientID, pending[0].ClientID)
}

func TestStoreConversationsReplacesList(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.StoreConversations([]Conversation{
		{ConversationKey: Key(7, 3), OtherUserID: 7, ListingID: 3, LastMessage: "old", LastMessageTime: time.Now().Add(-time.Hour)},
		{ConversationKey: Key(9, 4), OtherUserID: 9, ListingID: 4, LastMessage: "older", LastMessageTime: time.Now().Add(-2 * time.Hour)},
	}))

	// A later sync with one conversation gone replaces the whole list.
	require.NoError(t, c.StoreConversations([]Conversation{
		{ConversationKey: Key(7, 3), OtherUserID: 7, ListingID: 3, LastMessage: "new", LastMessageTime: time.Now()},
	}))

	got, err := c.Conversations()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].LastMessage)
}
