package marketplace

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tradehub-dev/tradehub/internal/cache"
)

const (
	threadRefreshSpec       = "@every 3s"
	conversationRefreshSpec = "@every 30s"
)

// ThreadPoller keeps one open conversation fresh: while a thread is watched it
// re-fetches the thread every 3 seconds and the conversation list every 30,
// reconciling both into the local cache. Watching a different thread or
// stopping cancels the schedule deterministically, so a poll never fires
// against a conversation that has been navigated away from. Poll failures are
// silent (logged at debug); the next tick retries.
type ThreadPoller struct {
	messages *MessageService
	store    *cache.Cache
	selfID   int
	log      zerolog.Logger

	// OnThread receives the merged (cached) thread after each successful
	// refresh. OnConversations likewise for the conversation list. Both are
	// optional and are called from the poll goroutine.
	OnThread        func([]cache.Message)
	OnConversations func([]cache.Conversation)

	mu        sync.Mutex
	runner    *cron.Cron
	activeKey string
}

// NewThreadPoller creates a poller for the given user's session.
func NewThreadPoller(messages *MessageService, store *cache.Cache, selfID int, log zerolog.Logger) *ThreadPoller {
	return &ThreadPoller{
		messages: messages,
		store:    store,
		selfID:   selfID,
		log:      log,
	}
}

// Watch starts polling the conversation with otherUserID about listingID. If
// another conversation is being watched its schedule is stopped first. The
// first refresh runs immediately rather than waiting for the first tick.
func (p *ThreadPoller) Watch(ctx context.Context, otherUserID, listingID int) error {
	p.Stop()

	key := cache.Key(otherUserID, listingID)

	p.mu.Lock()
	p.activeKey = key
	runner := cron.New()
	p.runner = runner
	p.mu.Unlock()

	p.refreshThread(ctx, key, otherUserID, listingID)
	p.refreshConversations(ctx)

	_, err := runner.AddFunc(threadRefreshSpec, func() {
		if !p.watching(key) {
			return
		}
		p.refreshThread(ctx, key, otherUserID, listingID)
	})
	if err != nil {
		return err
	}
	_, err = runner.AddFunc(conversationRefreshSpec, func() {
		if !p.watching(key) {
			return
		}
		p.refreshConversations(ctx)
	})
	if err != nil {
		return err
	}

	runner.Start()
	p.log.Debug().Str("conversation", key).Msg("Watching conversation")
	return nil
}

// Stop cancels the active schedule and waits for any in-flight poll to
// finish. Stopping an idle poller is a no-op.
func (p *ThreadPoller) Stop() {
	p.mu.Lock()
	runner := p.runner
	p.runner = nil
	p.activeKey = ""
	p.mu.Unlock()

	if runner == nil {
		return
	}
	<-runner.Stop().Done()
}

func (p *ThreadPoller) watching(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeKey == key
}

func (p *ThreadPoller) refreshThread(ctx context.Context, key string, otherUserID, listingID int) {
	fetched, err := p.messages.Thread(ctx, otherUserID, listingID)
	if err != nil {
		p.log.Debug().Err(err).Str("conversation", key).Msg("Thread refresh failed")
		return
	}

	if err := p.store.Reconcile(key, toCacheMessages(fetched), p.selfID); err != nil {
		p.log.Debug().Err(err).Str("conversation", key).Msg("Thread reconcile failed")
		return
	}

	if p.OnThread == nil {
		return
	}
	merged, err := p.store.MergedThread(key, p.selfID)
	if err != nil {
		p.log.Debug().Err(err).Str("conversation", key).Msg("Cached thread read failed")
		return
	}
	p.OnThread(merged)
}

func (p *ThreadPoller) refreshConversations(ctx context.Context) {
	fetched, err := p.messages.Conversations(ctx)
	if err != nil {
		p.log.Debug().Err(err).Msg("Conversation list refresh failed")
		return
	}

	rows := make([]cache.Conversation, 0, len(fetched))
	for _, c := range fetched {
		rows = append(rows, cache.Conversation{
			ConversationKey: cache.Key(c.OtherUserID, c.ListingID),
			OtherUserID:     c.OtherUserID,
			OtherUserName:   c.OtherUserName,
			ListingID:       c.ListingID,
			ListingTitle:    c.ListingTitle,
			LastMessage:     c.LastMessage,
			LastMessageTime: c.LastMessageTime,
			UnreadCount:     c.UnreadCount,
		})
	}
	if err := p.store.StoreConversations(rows); err != nil {
		p.log.Debug().Err(err).Msg("Conversation cache write failed")
		return
	}

	if p.OnConversations != nil {
		p.OnConversations(rows)
	}
}

func toCacheMessages(messages []Message) []cache.Message {
	rows := make([]cache.Message, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, cache.Message{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			ListingID:  m.ListingID,
			Content:    m.Content,
			IsRead:     m.IsRead,
			CreatedAt:  m.CreatedAt,
		})
	}
	return rows
}

// SendTracked sends a message and records an optimistic pending echo in the
// cache, to be resolved by a later reconcile. Sending through here keeps a
// just-sent message visible even when the next poll cycle is slow or the
// server has not echoed it yet.
func (p *ThreadPoller) SendTracked(ctx context.Context, input MessageInput) (*Message, error) {
	key := cache.Key(input.ReceiverID, input.ListingID)
	pending, err := p.store.AddPending(key, input.ReceiverID, input.ListingID, input.Content)
	if err != nil {
		// Cache trouble should not block the send itself.
		p.log.Debug().Err(err).Msg("Pending record failed")
	}

	sent, err := p.messages.Send(ctx, input)
	if err != nil {
		return nil, err
	}

	if pending != nil {
		row := toCacheMessages([]Message{*sent})
		if rerr := p.store.Reconcile(key, row, p.selfID); rerr != nil {
			p.log.Debug().Err(rerr).Msg("Send reconcile failed")
		}
	}

	return sent, nil
}
