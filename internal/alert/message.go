package alert

import (
	"fmt"
	"html"

	"github.com/dukerupert/keepsake/internal/model"
	"github.com/dukerupert/keepsake/internal/occurrence"
)

// Message renders the Telegram-HTML reminder text for an event at a tier.
// Names are user input and always escaped.
func Message(e model.Event, tier Tier) string {
	name := html.EscapeString(e.Name)

	switch tier.Label {
	case TierMonth:
		return fmt.Sprintf("🔔 Heads up! <b>%s</b> is in 1 month.", name)
	case TierWeek:
		return fmt.Sprintf("⏰ Reminder: <b>%s</b> is in 1 week.", name)
	case TierDay:
		return fmt.Sprintf("😱 Get ready! <b>%s</b> is TOMORROW!", name)
	case TierToday:
		return todayMessage(e.Kind, name)
	}
	// Custom tier from config.
	return fmt.Sprintf("🔔 Reminder: <b>%s</b> is in %d days.", name, tier.Days)
}

func todayMessage(kind model.EventKind, name string) string {
	switch kind {
	case model.KindAnniversary:
		return fmt.Sprintf("❤️ Today is the day! Happy <b>%s</b>! 🎉", name)
	case model.KindBirthday:
		return fmt.Sprintf("🎂 It's <b>%s</b> today! Happy Birthday! 🎉", name)
	default:
		return fmt.Sprintf("🎉 Today is the day! <b>%s</b>!", name)
	}
}

// JourneyMessage renders the elapsed-time-together figure.
func JourneyMessage(span occurrence.Span) string {
	return fmt.Sprintf(
		"❤️ <b>Our Journey Together</b> ❤️\n\n"+
			"We have been together for:\n"+
			"<b>%d</b> Years, <b>%d</b> Months, and <b>%d</b> Days.\n\n"+
			"That is <b>%d</b> days of love! 😘",
		span.Years, span.Months, span.Days, span.TotalDays,
	)
}
