package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/keepsake/internal/model"
	"github.com/dukerupert/keepsake/internal/occurrence"
)

func TestParseEventDateFull(t *testing.T) {
	month, day, year, err := parseEventDate("17-09-2022")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if month != 9 || day != 17 {
		t.Errorf("date = %d-%d, want 9-17", month, day)
	}
	if year == nil || *year != 2022 {
		t.Errorf("year = %v, want 2022", year)
	}
}

func TestParseEventDateWithoutYear(t *testing.T) {
	month, day, year, err := parseEventDate("03-05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if month != 5 || day != 3 {
		t.Errorf("date = %d-%d, want 5-3", month, day)
	}
	if year != nil {
		t.Errorf("year = %d, want nil", *year)
	}
}

func TestParseEventDateTrimsWhitespace(t *testing.T) {
	if _, _, _, err := parseEventDate("  29-02-2020 "); err != nil {
		t.Errorf("parse: %v", err)
	}
}

func TestParseEventDateRejectsGarbage(t *testing.T) {
	bad := []string{"", "17", "17/09/2022", "x-y", "32-01", "17-13", "30-02-2020", "17-09-20221", "17-09-1850"}
	for _, s := range bad {
		if _, _, _, err := parseEventDate(s); err == nil {
			t.Errorf("parseEventDate(%q) should fail", s)
		}
	}
}

func TestParseEventDateRejectsImpossibleDate(t *testing.T) {
	_, _, _, err := parseEventDate("31-04")
	if !errors.Is(err, occurrence.ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		want model.EventKind
	}{
		{"Anniversary", model.KindAnniversary},
		{"our wedding anniversary", model.KindAnniversary},
		{"Mom's Birthday", model.KindBirthday},
		{"dad bday", model.KindBirthday},
		{"Visa Renewal", model.KindGeneric},
		{"", model.KindGeneric},
	}
	for _, tt := range tests {
		if got := inferKind(tt.name); got != tt.want {
			t.Errorf("inferKind(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestJourneySpan(t *testing.T) {
	origin := 2020
	events := []model.Event{
		{Name: "Mom's Birthday", Kind: model.KindBirthday, Month: 5, Day: 3, OriginYear: &origin},
		{Name: "Anniversary", Kind: model.KindAnniversary, Month: 3, Day: 15, OriginYear: &origin},
	}

	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	span, err := journeySpan(events, today, occurrence.FallbackFeb28)
	if err != nil {
		t.Fatalf("journeySpan: %v", err)
	}
	// The birthday is skipped; the anniversary drives the figure.
	if span.Years != 4 || span.Months != 0 || span.Days != 0 {
		t.Errorf("span = %+v, want 4y 0m 0d", span)
	}
}

func TestJourneySpanNoAnniversary(t *testing.T) {
	_, err := journeySpan([]model.Event{
		{Name: "Mom's Birthday", Kind: model.KindBirthday, Month: 5, Day: 3},
	}, time.Now(), occurrence.FallbackFeb28)
	if !errors.Is(err, occurrence.ErrNoOriginDate) {
		t.Errorf("err = %v, want ErrNoOriginDate", err)
	}
}

func TestJourneySpanAnniversaryWithoutOriginYear(t *testing.T) {
	_, err := journeySpan([]model.Event{
		{Name: "Anniversary", Kind: model.KindAnniversary, Month: 9, Day: 17},
	}, time.Now(), occurrence.FallbackFeb28)
	if !errors.Is(err, occurrence.ErrNoOriginDate) {
		t.Errorf("err = %v, want ErrNoOriginDate", err)
	}
}
