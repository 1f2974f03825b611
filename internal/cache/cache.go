// Package cache keeps a local copy of the user's conversations so the
// messages view renders instantly on open and survives flaky connectivity.
// The server remains the source of truth; every poll reconciles this copy.
package cache

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Message is a cached copy of a server-acknowledged message.
type Message struct {
	ID              int    `gorm:"primaryKey"`
	ConversationKey string `gorm:"index;not null"`
	SenderID        int
	ReceiverID      int
	ListingID       int
	Content         string
	IsRead          bool
	CreatedAt       time.Time
	SyncedAt        time.Time `gorm:"autoUpdateTime"`
}

// PendingMessage is an optimistic local echo of a send that has not yet been
// observed back from the server. The ULID client ID orders pendings by send
// time and survives restarts.
type PendingMessage struct {
	ClientID        string `gorm:"primaryKey;type:varchar(26)"`
	ConversationKey string `gorm:"index;not null"`
	ReceiverID      int
	ListingID       int
	Content         string
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID client ID if one was not supplied.
func (p *PendingMessage) BeforeCreate(tx *gorm.DB) error {
	if p.ClientID == "" {
		p.ClientID = ulid.Make().String()
	}
	return nil
}

// Conversation is a cached conversation-list entry.
type Conversation struct {
	ConversationKey string `gorm:"primaryKey"`
	OtherUserID     int
	OtherUserName   string
	ListingID       int
	ListingTitle    string
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
	SyncedAt        time.Time `gorm:"autoUpdateTime"`
}

// reconcileClockSkew is how far a server timestamp may lag a pending's local
// creation time and still count as its acknowledgement.
const reconcileClockSkew = time.Minute

// Key identifies a conversation: the counterpart and the listing under
// discussion together form the thread.
func Key(otherUserID, listingID int) string {
	return fmt.Sprintf("%d:%d", otherUserID, listingID)
}

// Cache is the SQLite-backed local message store.
type Cache struct {
	db *gorm.DB
}

// Open opens (or creates) the cache database at path. ":memory:" is accepted
// for tests.
func Open(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open message cache: %w", err)
	}
	if err := db.AutoMigrate(&Message{}, &PendingMessage{}, &Conversation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate message cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// StoreThread upserts a fetched thread into the cache.
func (c *Cache) StoreThread(key string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	for i := range messages {
		messages[i].ConversationKey = key
	}
	err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&messages).Error
	if err != nil {
		return fmt.Errorf("failed to cache thread: %w", err)
	}
	return nil
}

// Thread returns the cached messages of a conversation in send order.
func (c *Cache) Thread(key string) ([]Message, error) {
	var messages []Message
	err := c.db.
		Where("conversation_key = ?", key).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read cached thread: %w", err)
	}
	return messages, nil
}

// MergedThread returns the cached thread with the conversation's unconfirmed
// sends appended as local echoes from selfID. Echoes carry a zero ID; a later
// reconcile replaces them with the server's copy.
func (c *Cache) MergedThread(key string, selfID int) ([]Message, error) {
	messages, err := c.Thread(key)
	if err != nil {
		return nil, err
	}
	pending, err := c.Pending(key)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		messages = append(messages, Message{
			ConversationKey: key,
			SenderID:        selfID,
			ReceiverID:      p.ReceiverID,
			ListingID:       p.ListingID,
			Content:         p.Content,
			CreatedAt:       p.CreatedAt,
		})
	}
	return messages, nil
}

// AddPending records an optimistic local echo for a just-sent message.
func (c *Cache) AddPending(key string, receiverID, listingID int, content string) (*PendingMessage, error) {
	pending := &PendingMessage{
		ConversationKey: key,
		ReceiverID:      receiverID,
		ListingID:       listingID,
		Content:         content,
	}
	if err := c.db.Create(pending).Error; err != nil {
		return nil, fmt.Errorf("failed to record pending message: %w", err)
	}
	return pending, nil
}

// Pending returns the unconfirmed sends of a conversation, oldest first.
// ULIDs sort lexicographically in creation order.
func (c *Cache) Pending(key string) ([]PendingMessage, error) {
	var pending []PendingMessage
	err := c.db.
		Where("conversation_key = ?", key).
		Order("client_id asc").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read pending messages: %w", err)
	}
	return pending, nil
}

// Reconcile merges a freshly fetched thread into the cache and drops any
// pending echo the server has now acknowledged: a pending entry is resolved
// when a fetched message from selfID carries the same content and is no older
// than the pending itself. The age fence keeps an earlier identical message
// (the user saying "ok" twice) from swallowing a fresh echo. Duplicate user
// content resolves the oldest pending first, which is the send order.
func (c *Cache) Reconcile(key string, messages []Message, selfID int) error {
	if err := c.StoreThread(key, messages); err != nil {
		return err
	}

	pending, err := c.Pending(key)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	matched := map[int]bool{}
	for _, p := range pending {
		for _, m := range messages {
			if matched[m.ID] || m.SenderID != selfID || m.Content != p.Content {
				continue
			}
			// Server and client clocks drift; allow a little slack.
			if m.CreatedAt.Before(p.CreatedAt.Add(-reconcileClockSkew)) {
				continue
			}
			matched[m.ID] = true
			if err := c.db.Delete(&PendingMessage{}, "client_id = ?", p.ClientID).Error; err != nil {
				return fmt.Errorf("failed to resolve pending message: %w", err)
			}
			break
		}
	}
	return nil
}

// StoreConversations replaces the cached conversation list.
func (c *Cache) StoreConversations(conversations []Conversation) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Conversation{}).Error; err != nil {
			return fmt.Errorf("failed to prune conversations: %w", err)
		}
		if len(conversations) == 0 {
			return nil
		}
		if err := tx.Create(&conversations).Error; err != nil {
			return fmt.Errorf("failed to cache conversations: %w", err)
		}
		return nil
	})
}

// Conversations returns the cached conversation list, most recent first.
func (c *Cache) Conversations() ([]Conversation, error) {
	var conversations []Conversation
	err := c.db.Order("last_message_time desc").Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read cached conversations: %w", err)
	}
	return conversations, nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
