package booking

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCalendarMergeUpsert(t *testing.T) {
	cal := NewCalendar([]Day{
		{Date: date("2024-06-01"), Available: true, Price: 100},
		{Date: date("2024-06-02"), Available: true, Price: 120},
	})

	if cal.Len() != 2 {
		t.Fatalf("expected 2 days, got %d", cal.Len())
	}

	// Paging re-fetches an overlapping window; the overlap must overwrite,
	// not duplicate.
	cal.Merge([]Day{
		{Date: date("2024-06-02"), Available: false, Price: 150},
		{Date: date("2024-06-03"), Available: true, Price: 110},
	})

	if cal.Len() != 3 {
		t.Fatalf("expected 3 days after merge, got %d", cal.Len())
	}
	d, ok := cal.Day(date("2024-06-02"))
	if !ok {
		t.Fatal("2024-06-02 missing after merge")
	}
	if d.Available || d.Price != 150 {
		t.Fatalf("last write should win: got available=%v price=%v", d.Available, d.Price)
	}
}

func TestCalendarDuplicateDatesLastWriteWins(t *testing.T) {
	cal := NewCalendar([]Day{
		{Date: date("2024-06-01"), Available: true, Price: 100},
		{Date: date("2024-06-01"), Available: true, Price: 90},
	})
	if cal.Len() != 1 {
		t.Fatalf("expected 1 day, got %d", cal.Len())
	}
	d, _ := cal.Day(date("2024-06-01"))
	if d.Price != 90 {
		t.Fatalf("expected price 90, got %v", d.Price)
	}
}

func TestCalendarLookupIgnoresTimeOfDay(t *testing.T) {
	cal := NewCalendar([]Day{{Date: date("2024-06-01"), Available: true, Price: 100}})

	noon := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	if _, ok := cal.Day(noon); !ok {
		t.Fatal("lookup with a time-of-day component should still hit the date key")
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		in, out string
		want    int
	}{
		{"2024-06-01", "2024-06-03", 2},
		{"2024-06-01", "2024-06-02", 1},
		{"2024-06-01", "2024-06-01", 0},
		{"2024-06-03", "2024-06-01", 0},
	}
	for _, tc := range tests {
		if got := Nights(date(tc.in), date(tc.out)); got != tc.want {
			t.Errorf("Nights(%s, %s) = %d, want %d", tc.in, tc.out, got, tc.want)
		}
	}
}
