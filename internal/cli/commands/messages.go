package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/tradehub-dev/tradehub/internal/api"
	"github.com/tradehub-dev/tradehub/internal/cache"
	"github.com/tradehub-dev/tradehub/internal/marketplace"
)

// NewMessagesCmd creates the messages command group
func NewMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Read and send marketplace messages",
	}

	cmd.AddCommand(newMessagesListCmd())
	cmd.AddCommand(newMessagesOpenCmd())
	cmd.AddCommand(newMessagesSendCmd())
	cmd.AddCommand(newMessagesWatchCmd())
	cmd.AddCommand(newMessagesUnreadCmd())

	return cmd
}

func newMessagesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List your conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			rows, err := fetchConversations(cmd, app)
			if err != nil {
				return err
			}

			if len(rows) == 0 {
				fmt.Println("No conversations yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WITH\tLISTING\tLAST MESSAGE\tUNREAD")
			fmt.Fprintln(w, "────\t───────\t────────────\t──────")
			for _, c := range rows {
				fmt.Fprintf(w, "%s (#%d)\t%s (#%d)\t%s\t%d\n",
					c.OtherUserName, c.OtherUserID,
					c.ListingTitle, c.ListingID,
					truncate(c.LastMessage, 40), c.UnreadCount)
			}
			w.Flush()
			return nil
		},
	}
}

func newMessagesOpenCmd() *cobra.Command {
	var markRead bool

	cmd := &cobra.Command{
		Use:   "open [other-user-id] [listing-id]",
		Short: "Open a conversation thread",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			self, err := app.requireUser(cmd.Context())
			if err != nil {
				return err
			}

			otherUserID, listingID, err := resolveConversation(cmd, app, args)
			if err != nil {
				return err
			}

			thread, err := app.messages.Thread(cmd.Context(), otherUserID, listingID)
			if err != nil {
				return fmt.Errorf("failed to fetch thread: %s", api.Detail(err, "could not reach the server"))
			}

			if len(thread) == 0 {
				fmt.Println("No messages in this conversation yet.")
				return nil
			}

			for _, m := range thread {
				printMessage(m.SenderID, self.ID, m.Content, m.CreatedAt)
				if markRead && !m.IsRead && m.ReceiverID == self.ID {
					if err := app.messages.MarkRead(cmd.Context(), m.ID); err != nil {
						app.log.Debug().Err(err).Int("message_id", m.ID).Msg("Mark read failed")
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markRead, "mark-read", true, "Mark received messages as read")

	return cmd
}

func newMessagesSendCmd() *cobra.Command {
	var otherUserID, listingID int

	cmd := &cobra.Command{
		Use:   "send <content>",
		Short: "Send a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			self, err := app.requireUser(cmd.Context())
			if err != nil {
				return err
			}

			if otherUserID == 0 || listingID == 0 {
				return fmt.Errorf("--to and --listing are required")
			}

			store, err := openCache(app)
			if err != nil {
				return err
			}
			defer store.Close()

			input := marketplace.MessageInput{
				ReceiverID: otherUserID,
				ListingID:  listingID,
				Content:    args[0],
			}
			poller := marketplace.NewThreadPoller(app.messages, store, self.ID, app.log)
			if _, err := poller.SendTracked(cmd.Context(), input); err != nil {
				return fmt.Errorf("failed to send message: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Println("✓ Sent.")
			return nil
		},
	}

	cmd.Flags().IntVar(&otherUserID, "to", 0, "Recipient user id")
	cmd.Flags().IntVar(&listingID, "listing", 0, "Listing id the conversation is about")

	return cmd
}

func newMessagesWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [other-user-id] [listing-id]",
		Short: "Follow a conversation live",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			self, err := app.requireUser(cmd.Context())
			if err != nil {
				return err
			}

			otherUserID, listingID, err := resolveConversation(cmd, app, args)
			if err != nil {
				return err
			}

			store, err := openCache(app)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			poller := marketplace.NewThreadPoller(app.messages, store, self.ID, app.log)

			// Print only what we have not shown yet.
			var lastShown int
			poller.OnThread = func(msgs []cache.Message) {
				for _, m := range msgs[min(lastShown, len(msgs)):] {
					printMessage(m.SenderID, self.ID, m.Content, m.CreatedAt)
				}
				lastShown = len(msgs)
			}

			if err := poller.Watch(ctx, otherUserID, listingID); err != nil {
				return fmt.Errorf("failed to start watching: %w", err)
			}
			defer poller.Stop()

			fmt.Fprintln(os.Stderr, "Watching conversation. Press Ctrl-C to stop.")
			<-ctx.Done()
			return nil
		},
	}
}

func newMessagesUnreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Show the unread message count",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.requireUser(cmd.Context()); err != nil {
				return err
			}

			count, err := app.messages.UnreadCount(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch unread count: %s", api.Detail(err, "could not reach the server"))
			}

			fmt.Printf("%d unread\n", count)
			return nil
		},
	}
}

// resolveConversation takes the counterpart and listing from positional args,
// or prompts with the conversation list when they are missing.
func resolveConversation(cmd *cobra.Command, app *app, args []string) (int, int, error) {
	if len(args) == 2 {
		otherUserID, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid user id: %s", args[0])
		}
		listingID, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid listing id: %s", args[1])
		}
		return otherUserID, listingID, nil
	}
	if len(args) == 1 {
		return 0, 0, fmt.Errorf("provide both the user id and the listing id, or neither")
	}

	conversations, err := app.messages.Conversations(cmd.Context())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch conversations: %s", api.Detail(err, "could not reach the server"))
	}
	if len(conversations) == 0 {
		return 0, 0, fmt.Errorf("no conversations to open")
	}

	type conversationOption struct {
		Label        string
		Conversation *marketplace.Conversation
	}

	options := make([]conversationOption, len(conversations))
	for i := range conversations {
		c := &conversations[i]
		options[i] = conversationOption{
			Label:        fmt.Sprintf("%s about %s (%d unread)", c.OtherUserName, c.ListingTitle, c.UnreadCount),
			Conversation: c,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a conversation",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return 0, 0, fmt.Errorf("conversation selection cancelled: %w", err)
	}

	picked := options[index].Conversation
	return picked.OtherUserID, picked.ListingID, nil
}

// fetchConversations returns the server's conversation list, refreshing the
// local cache on the way. When the server is unreachable it falls back to the
// cached list so the view still renders offline; the original failure is
// surfaced only when the cache has nothing either.
func fetchConversations(cmd *cobra.Command, app *app) ([]cache.Conversation, error) {
	fetched, fetchErr := app.messages.Conversations(cmd.Context())
	if fetchErr == nil {
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
		if store, err := openCache(app); err == nil {
			if err := store.StoreConversations(rows); err != nil {
				app.log.Debug().Err(err).Msg("Conversation cache write failed")
			}
			store.Close()
		}
		return rows, nil
	}

	store, err := openCache(app)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %s", api.Detail(fetchErr, "could not reach the server"))
	}
	defer store.Close()

	cached, err := store.Conversations()
	if err != nil || len(cached) == 0 {
		return nil, fmt.Errorf("failed to fetch conversations: %s", api.Detail(fetchErr, "could not reach the server"))
	}

	fmt.Fprintln(os.Stderr, "Server unreachable, showing cached conversations.")
	return cached, nil
}

// openCache opens the local message cache, creating its directory on first
// use.
func openCache(app *app) (*cache.Cache, error) {
	if err := os.MkdirAll(filepath.Dir(app.cfg.CachePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	store, err := cache.Open(app.cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open message cache: %w", err)
	}
	return store, nil
}

func printMessage(senderID, selfID int, content string, at time.Time) {
	who := "them"
	if senderID == selfID {
		who = "you"
	}
	fmt.Printf("[%s] %s: %s\n", at.Local().Format("15:04"), who, content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
