package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/keepsake/internal/model"
	"github.com/dukerupert/keepsake/internal/occurrence"
)

// parseEventDate accepts "DD-MM-YYYY" (origin year recorded, enabling the
// elapsed-time figure) or "DD-MM" (simple reminder).
func parseEventDate(s string) (month, day int, originYear *int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, nil, fmt.Errorf("want DD-MM or DD-MM-YYYY, got %q", s)
	}

	day, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, nil, fmt.Errorf("invalid day %q", parts[0])
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, nil, fmt.Errorf("invalid month %q", parts[1])
	}
	if err := occurrence.ValidateMonthDay(month, day); err != nil {
		return 0, 0, nil, err
	}

	if len(parts) == 3 {
		year, err := strconv.Atoi(parts[2])
		if err != nil || year < 1900 || year > time.Now().Year() {
			return 0, 0, nil, fmt.Errorf("invalid year %q", parts[2])
		}
		originYear = &year
	}
	return month, day, originYear, nil
}

// inferKind picks the wording variant from the event's name, mirroring how
// people actually label these dates.
func inferKind(name string) model.EventKind {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "anniversary"):
		return model.KindAnniversary
	case strings.Contains(lower, "birthday"), strings.Contains(lower, "bday"):
		return model.KindBirthday
	default:
		return model.KindGeneric
	}
}

// journeySpan finds the chat's anniversary and computes the elapsed time
// since its origin date. Returns occurrence.ErrNoOriginDate when no
// anniversary with a recorded origin year exists.
func journeySpan(events []model.Event, today time.Time, policy occurrence.Feb29Policy) (occurrence.Span, error) {
	for _, e := range events {
		if e.Kind != model.KindAnniversary {
			continue
		}
		if e.OriginYear == nil {
			continue
		}
		return occurrence.Elapsed(*e.OriginYear, e.Month, e.Day, today, policy), nil
	}
	return occurrence.Span{}, occurrence.ErrNoOriginDate
}
