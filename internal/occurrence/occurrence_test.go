package occurrence

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateMonthDay(t *testing.T) {
	valid := []struct{ month, day int }{
		{1, 1}, {1, 31}, {2, 28}, {2, 29}, {4, 30}, {12, 25},
	}
	for _, tt := range valid {
		if err := ValidateMonthDay(tt.month, tt.day); err != nil {
			t.Errorf("ValidateMonthDay(%d, %d) = %v, want nil", tt.month, tt.day, err)
		}
	}

	invalid := []struct{ month, day int }{
		{0, 1}, {13, 1}, {1, 0}, {1, 32}, {2, 30}, {4, 31}, {6, 31}, {11, 31},
	}
	for _, tt := range invalid {
		err := ValidateMonthDay(tt.month, tt.day)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ValidateMonthDay(%d, %d) = %v, want ErrInvalidDate", tt.month, tt.day, err)
		}
	}
}

func TestNextSameDay(t *testing.T) {
	occ, days := Next(12, 25, date(2025, time.December, 25), FallbackFeb28)
	if days != 0 {
		t.Errorf("days = %d, want 0", days)
	}
	if !occ.Equal(date(2025, time.December, 25)) {
		t.Errorf("occurrence = %v, want 2025-12-25", occ)
	}
}

func TestNextLaterThisYear(t *testing.T) {
	occ, days := Next(12, 25, date(2025, time.November, 25), FallbackFeb28)
	if days != 30 {
		t.Errorf("days = %d, want 30", days)
	}
	if occ.Year() != 2025 {
		t.Errorf("occurrence year = %d, want 2025", occ.Year())
	}
}

func TestNextRollsToFollowingYear(t *testing.T) {
	occ, days := Next(1, 1, date(2025, time.December, 25), FallbackFeb28)
	if !occ.Equal(date(2026, time.January, 1)) {
		t.Errorf("occurrence = %v, want 2026-01-01", occ)
	}
	if days != 7 {
		t.Errorf("days = %d, want 7", days)
	}
}

func TestNextNeverBeforeToday(t *testing.T) {
	// Sweep a couple of years of reference dates against a handful of events.
	events := []struct{ month, day int }{
		{1, 1}, {2, 29}, {6, 15}, {12, 31},
	}
	today := date(2023, time.January, 1)
	end := date(2025, time.January, 1)
	for ; today.Before(end); today = today.AddDate(0, 0, 1) {
		for _, e := range events {
			occ, days := Next(e.month, e.day, today, FallbackFeb28)
			if occ.Before(today) {
				t.Fatalf("Next(%d, %d, %v) = %v, before today", e.month, e.day, today, occ)
			}
			if days < 0 || days > 366 {
				t.Fatalf("Next(%d, %d, %v) days = %d, out of range", e.month, e.day, today, days)
			}
		}
	}
}

func TestNextFeb29NonLeapFallsBackToFeb28(t *testing.T) {
	occ, days := Next(2, 29, date(2025, time.February, 1), FallbackFeb28)
	if !occ.Equal(date(2025, time.February, 28)) {
		t.Errorf("occurrence = %v, want 2025-02-28", occ)
	}
	if days != 27 {
		t.Errorf("days = %d, want 27", days)
	}
}

func TestNextFeb29NonLeapFallsForwardToMar1(t *testing.T) {
	occ, _ := Next(2, 29, date(2025, time.February, 1), FallbackMar1)
	if !occ.Equal(date(2025, time.March, 1)) {
		t.Errorf("occurrence = %v, want 2025-03-01", occ)
	}
}

func TestNextFeb29LeapYearUnaffectedByPolicy(t *testing.T) {
	for _, policy := range []Feb29Policy{FallbackFeb28, FallbackMar1} {
		occ, _ := Next(2, 29, date(2024, time.January, 1), policy)
		if !occ.Equal(date(2024, time.February, 29)) {
			t.Errorf("policy %v: occurrence = %v, want 2024-02-29", policy, occ)
		}
	}
}

func TestNextFeb28TodayWithMar1Policy(t *testing.T) {
	// Under the mar1 policy a Feb-29 event has not passed on Feb 28.
	occ, days := Next(2, 29, date(2025, time.February, 28), FallbackMar1)
	if !occ.Equal(date(2025, time.March, 1)) {
		t.Errorf("occurrence = %v, want 2025-03-01", occ)
	}
	if days != 1 {
		t.Errorf("days = %d, want 1", days)
	}
}

func TestElapsedExactAnniversary(t *testing.T) {
	span := Elapsed(2020, 3, 15, date(2024, time.March, 15), FallbackFeb28)
	if span.Years != 4 || span.Months != 0 || span.Days != 0 {
		t.Errorf("span = %+v, want 4y 0m 0d", span)
	}
}

func TestElapsedDayBeforeAnniversary(t *testing.T) {
	// One day short of four years. The day borrow uses the actual length of
	// February 2024 (29 days): 2020-03-15 plus 3y 11m lands on 2024-02-15,
	// and 2024-02-15 to 2024-03-14 is 28 days.
	span := Elapsed(2020, 3, 15, date(2024, time.March, 14), FallbackFeb28)
	if span.Years != 3 || span.Months != 11 || span.Days != 28 {
		t.Errorf("span = %+v, want 3y 11m 28d", span)
	}
}

func TestElapsedTotalDays(t *testing.T) {
	span := Elapsed(2020, 3, 15, date(2024, time.March, 15), FallbackFeb28)
	// 2020-03-15..2024-03-15 crosses one leap day (2024-02-29).
	if span.TotalDays != 4*365+1 {
		t.Errorf("total days = %d, want %d", span.TotalDays, 4*365+1)
	}
}

func TestElapsedBorrowAcrossJanuary(t *testing.T) {
	span := Elapsed(2022, 12, 31, date(2024, time.January, 1), FallbackFeb28)
	if span.Years != 1 || span.Months != 0 || span.Days != 1 {
		t.Errorf("span = %+v, want 1y 0m 1d", span)
	}
}

func TestElapsedMonthBorrow(t *testing.T) {
	span := Elapsed(2022, 9, 17, date(2023, time.March, 5), FallbackFeb28)
	// 2022-09-17 +5m = 2023-02-17; Feb 2023 has 28 days, so 16 days remain.
	if span.Years != 0 || span.Months != 5 || span.Days != 16 {
		t.Errorf("span = %+v, want 0y 5m 16d", span)
	}
}

func TestParseFeb29Policy(t *testing.T) {
	if p, err := ParseFeb29Policy(""); err != nil || p != FallbackFeb28 {
		t.Errorf("ParseFeb29Policy(\"\") = %v, %v", p, err)
	}
	if p, err := ParseFeb29Policy("feb28"); err != nil || p != FallbackFeb28 {
		t.Errorf("ParseFeb29Policy(feb28) = %v, %v", p, err)
	}
	if p, err := ParseFeb29Policy("mar1"); err != nil || p != FallbackMar1 {
		t.Errorf("ParseFeb29Policy(mar1) = %v, %v", p, err)
	}
	if _, err := ParseFeb29Policy("skip"); err == nil {
		t.Error("ParseFeb29Policy(skip) should fail")
	}
}
