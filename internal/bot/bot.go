// Package bot is the Telegram-facing shell: the reply-keyboard menu, the
// small conversation flows for adding and deleting items, and the dispatcher
// the scheduler uses to deliver reminders.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dukerupert/keepsake/internal/occurrence"
	"github.com/dukerupert/keepsake/internal/store"
)

// Menu button labels. These double as the match keys for incoming text.
const (
	btnListDates = "📅 List Dates"
	btnAddDate   = "➕ Add Date"
	btnViewNotes = "📝 View Notes"
	btnAddNote   = "➕ Add Note"
	btnJourney   = "❤️ Our Journey"
	btnDelete    = "🗑 Delete Item"
	btnBack      = "🔙 Back"

	btnDeleteDate = "Delete Date"
	btnDeleteNote = "Delete Note"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	events *store.EventStore
	notes  *store.NoteStore
	feb29  occurrence.Feb29Policy
	logger *slog.Logger

	mu     sync.Mutex
	convos map[int64]*conversation
}

// New authenticates against the Bot API. The HTTP client carries a hard
// timeout so no dispatch or poll can hang forever.
func New(token string, events *store.EventStore, notes *store.NoteStore, feb29 occurrence.Feb29Policy, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{
		Timeout: 45 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	return &Bot{
		api:    api,
		events: events,
		notes:  notes,
		feb29:  feb29,
		logger: logger,
		convos: make(map[int64]*conversation),
	}, nil
}

// Run long-polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("bot running", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

// Send implements scheduler.Dispatcher. The context bounds the call only
// coarsely; the underlying HTTP client enforces the real timeout.
func (b *Bot) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.endConversation(chatID)
			b.replyMenu(chatID, "👋 <b>Hello!</b>\n\nI am ready to track your important dates and memories.\nUse the buttons below to control me.")
		case "add":
			b.startAddDate(chatID)
		case "addnote":
			b.startAddNote(chatID)
		case "delete":
			b.startDelete(chatID)
		case "cancel":
			b.cancel(chatID)
		default:
			b.replyMenu(chatID, "I don't know that command. Use the buttons below.")
		}
		return
	}

	switch msg.Text {
	case btnBack:
		b.cancel(chatID)
	case btnListDates:
		b.listDates(chatID)
	case btnAddDate:
		b.startAddDate(chatID)
	case btnViewNotes:
		b.viewNotes(chatID)
	case btnAddNote:
		b.startAddNote(chatID)
	case btnJourney:
		b.journey(chatID)
	case btnDelete:
		b.startDelete(chatID)
	default:
		if conv := b.conversation(chatID); conv != nil {
			b.advance(conv, msg)
			return
		}
		b.replyMenu(chatID, "Use the buttons below, or /add to track a new date.")
	}
}

func (b *Bot) cancel(chatID int64) {
	b.endConversation(chatID)
	b.replyMenu(chatID, "🔙 Returned to Main Menu.")
}

// reply sends HTML text with the given keyboard. Errors are logged, not
// propagated; a failed menu reply is not worth tearing a conversation down.
func (b *Bot) reply(chatID int64, text string, keyboard any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send reply failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyMenu(chatID int64, text string) {
	b.reply(chatID, text, mainKeyboard())
}

func (b *Bot) replyBack(chatID int64, text string) {
	b.reply(chatID, text, backKeyboard())
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnListDates),
			tgbotapi.NewKeyboardButton(btnAddDate),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnViewNotes),
			tgbotapi.NewKeyboardButton(btnAddNote),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnJourney),
			tgbotapi.NewKeyboardButton(btnDelete),
		),
	)
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
}

func deleteKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDeleteDate),
			tgbotapi.NewKeyboardButton(btnDeleteNote),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
}
