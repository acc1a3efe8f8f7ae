package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dukerupert/keepsake/internal/alert"
	"github.com/dukerupert/keepsake/internal/occurrence"
)

type convStep int

const (
	stepEventName convStep = iota
	stepEventDate
	stepNoteTitle
	stepNoteContent
	stepDeleteChoice
	stepDeleteEventID
	stepDeleteNoteID
)

// conversation is the per-chat state of an in-flight multi-step command.
type conversation struct {
	step      convStep
	eventName string
	noteTitle string
}

func (b *Bot) conversation(chatID int64) *conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.convos[chatID]
}

func (b *Bot) setConversation(chatID int64, conv *conversation) *conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.convos[chatID] = conv
	return conv
}

func (b *Bot) endConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.convos, chatID)
}

func (b *Bot) startAddDate(chatID int64) {
	b.setConversation(chatID, &conversation{step: stepEventName})
	b.replyBack(chatID, "What is the name of the event? (e.g., Anniversary)")
}

func (b *Bot) startAddNote(chatID int64) {
	b.setConversation(chatID, &conversation{step: stepNoteTitle})
	b.replyBack(chatID, "📝 New Note: What is the <b>Title</b>?")
}

func (b *Bot) startDelete(chatID int64) {
	b.setConversation(chatID, &conversation{step: stepDeleteChoice})
	b.reply(chatID, "What would you like to delete?", deleteKeyboard())
}

// advance feeds one message into the chat's conversation.
func (b *Bot) advance(conv *conversation, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch conv.step {
	case stepEventName:
		conv.eventName = strings.TrimSpace(msg.Text)
		if conv.eventName == "" {
			b.replyBack(chatID, "Please send a name for the event.")
			return
		}
		conv.step = stepEventDate
		b.replyBack(chatID, "Great! What is the date? Format: DD-MM-YYYY (e.g., 17-09-2022).\nLeave the year off (DD-MM) if you don't want elapsed-time tracking.")

	case stepEventDate:
		month, day, originYear, err := parseEventDate(msg.Text)
		if err != nil {
			b.replyBack(chatID, "Invalid date. Please use DD-MM-YYYY or DD-MM.")
			return
		}
		event, err := b.events.Create(chatID, conv.eventName, month, day, originYear, inferKind(conv.eventName))
		if err != nil {
			b.logger.Error("create event failed", "chat_id", chatID, "error", err)
			b.replyMenu(chatID, "Something went wrong saving that date. Please try again.")
			b.endConversation(chatID)
			return
		}
		b.endConversation(chatID)
		b.replyMenu(chatID, fmt.Sprintf("✅ Saved: <b>%s</b> on %02d-%02d!", html.EscapeString(event.Name), event.Day, event.Month))

	case stepNoteTitle:
		conv.noteTitle = strings.TrimSpace(msg.Text)
		if conv.noteTitle == "" {
			b.replyBack(chatID, "Please send a title for the note.")
			return
		}
		conv.step = stepNoteContent
		b.replyBack(chatID, "Got it. Send <b>Text</b> or a <b>Photo</b>.")

	case stepNoteContent:
		var photoID *string
		content := msg.Text
		if len(msg.Photo) > 0 {
			// The last photo size is the largest.
			id := msg.Photo[len(msg.Photo)-1].FileID
			photoID = &id
			content = msg.Caption
		}
		if _, err := b.notes.Create(chatID, conv.noteTitle, content, photoID); err != nil {
			b.logger.Error("create note failed", "chat_id", chatID, "error", err)
			b.replyMenu(chatID, "Something went wrong saving that note. Please try again.")
			b.endConversation(chatID)
			return
		}
		b.endConversation(chatID)
		b.replyMenu(chatID, "✅ Note saved!")

	case stepDeleteChoice:
		b.handleDeleteChoice(conv, chatID, msg.Text)

	case stepDeleteEventID:
		id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil {
			b.replyBack(chatID, "Please reply with the numeric ID, or click Back.")
			return
		}
		deleted, err := b.events.DeleteInChat(id, chatID)
		if err != nil {
			b.logger.Error("delete event failed", "chat_id", chatID, "error", err)
			b.replyMenu(chatID, "Something went wrong. Please try again.")
			b.endConversation(chatID)
			return
		}
		if !deleted {
			b.replyBack(chatID, "❌ Could not find that ID. Try again or click Back.")
			return
		}
		b.endConversation(chatID)
		b.replyMenu(chatID, "✅ Deleted successfully.")

	case stepDeleteNoteID:
		id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil {
			b.replyBack(chatID, "Please reply with the numeric ID, or click Back.")
			return
		}
		deleted, err := b.notes.DeleteInChat(id, chatID)
		if err != nil {
			b.logger.Error("delete note failed", "chat_id", chatID, "error", err)
			b.replyMenu(chatID, "Something went wrong. Please try again.")
			b.endConversation(chatID)
			return
		}
		if !deleted {
			b.replyBack(chatID, "❌ Could not find that ID. Try again or click Back.")
			return
		}
		b.endConversation(chatID)
		b.replyMenu(chatID, "✅ Deleted successfully.")
	}
}

func (b *Bot) handleDeleteChoice(conv *conversation, chatID int64, text string) {
	switch text {
	case btnDeleteDate:
		events, err := b.events.ListByChat(chatID)
		if err != nil {
			b.logger.Error("list events failed", "chat_id", chatID, "error", err)
			b.replyMenu(chatID, "Something went wrong. Please try again.")
			b.endConversation(chatID)
			return
		}
		if len(events) == 0 {
			b.replyBack(chatID, "No dates to delete.")
			return
		}
		var sb strings.Builder
		sb.WriteString("🗑 <b>Reply with the ID to delete:</b>\n\n")
		for _, e := range events {
			fmt.Fprintf(&sb, "ID: <b>%d</b> | %s (%02d-%02d)\n", e.ID, html.EscapeString(e.Name), e.Day, e.Month)
		}
		conv.step = stepDeleteEventID
		b.replyBack(chatID, sb.String())

	case btnDeleteNote:
		notes, err := b.notes.ListByChat(chatID)
		if err != nil {
			b.logger.Error("list notes failed", "chat_id", chatID, "error", err)
			b.replyMenu(chatID, "Something went wrong. Please try again.")
			b.endConversation(chatID)
			return
		}
		if len(notes) == 0 {
			b.replyBack(chatID, "No notes to delete.")
			return
		}
		var sb strings.Builder
		sb.WriteString("🗑 <b>Reply with the ID to delete:</b>\n\n")
		for _, n := range notes {
			fmt.Fprintf(&sb, "ID: <b>%d</b> | %s\n", n.ID, html.EscapeString(n.Title))
		}
		conv.step = stepDeleteNoteID
		b.replyBack(chatID, sb.String())

	default:
		b.replyBack(chatID, "Please pick one of the options, or click Back.")
	}
}

func (b *Bot) listDates(chatID int64) {
	events, err := b.events.ListByChat(chatID)
	if err != nil {
		b.logger.Error("list events failed", "chat_id", chatID, "error", err)
		b.replyMenu(chatID, "Something went wrong. Please try again.")
		return
	}
	if len(events) == 0 {
		b.replyMenu(chatID, "No dates saved yet!")
		return
	}

	today := occurrence.Date(time.Now())
	var sb strings.Builder
	sb.WriteString("📅 <b>Your Important Dates:</b>\n\n")
	for _, e := range events {
		_, days := occurrence.Next(e.Month, e.Day, today, b.feb29)
		fmt.Fprintf(&sb, "• %s: %02d-%02d", html.EscapeString(e.Name), e.Day, e.Month)
		if e.OriginYear != nil {
			fmt.Fprintf(&sb, "-%d", *e.OriginYear)
		}
		switch days {
		case 0:
			sb.WriteString(" — today! 🎉\n")
		case 1:
			sb.WriteString(" — tomorrow!\n")
		default:
			fmt.Fprintf(&sb, " — in %d days\n", days)
		}
	}
	b.replyMenu(chatID, sb.String())
}

func (b *Bot) viewNotes(chatID int64) {
	notes, err := b.notes.ListByChat(chatID)
	if err != nil {
		b.logger.Error("list notes failed", "chat_id", chatID, "error", err)
		b.replyMenu(chatID, "Something went wrong. Please try again.")
		return
	}
	if len(notes) == 0 {
		b.replyMenu(chatID, "No notes saved yet!")
		return
	}

	var sb strings.Builder
	sb.WriteString("📝 <b>Your Saved Notes:</b>\n\n")
	var hasText bool
	for _, n := range notes {
		if n.PhotoID != nil {
			continue
		}
		hasText = true
		fmt.Fprintf(&sb, "📌 <b>%s</b>\n", html.EscapeString(n.Title))
		if n.Content != "" {
			fmt.Fprintf(&sb, "<code>%s</code>\n\n", html.EscapeString(n.Content))
		}
	}
	if hasText {
		b.reply(chatID, sb.String(), nil)
	}

	for _, n := range notes {
		if n.PhotoID == nil {
			continue
		}
		caption := fmt.Sprintf("📌 <b>%s</b>", html.EscapeString(n.Title))
		if n.Content != "" {
			caption += "\n" + html.EscapeString(n.Content)
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(*n.PhotoID))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(photo); err != nil {
			b.logger.Error("send photo note failed", "chat_id", chatID, "note_id", n.ID, "error", err)
		}
	}
	b.replyMenu(chatID, "Done.")
}

func (b *Bot) journey(chatID int64) {
	events, err := b.events.ListByChat(chatID)
	if err != nil {
		b.logger.Error("list events failed", "chat_id", chatID, "error", err)
		b.replyMenu(chatID, "Something went wrong. Please try again.")
		return
	}

	span, err := journeySpan(events, occurrence.Date(time.Now()), b.feb29)
	if err != nil {
		b.replyMenu(chatID, "💔 I don't know when you started!\n\nAdd an event named <b>Anniversary</b> with its full date (DD-MM-YYYY) so I can calculate your time together.")
		return
	}
	b.replyMenu(chatID, alert.JourneyMessage(span))
}
