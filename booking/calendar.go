// Package booking holds the availability and pricing calculations for
// short-term stays. Everything in here is pure: the HTTP layer and the API
// client both feed it day records and booked ranges and read back
// eligibility answers and price quotes.
package booking

import "time"

const dateLayout = "2006-01-02"

// Day is one calendar day of a listing: whether it can be booked and the
// nightly rate that applies.
type Day struct {
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
	Price     float64   `json:"price"`
}

// Range is an occupied span of an existing booking. The occupied nights are
// the half-open interval [CheckIn, CheckOut): the checkout day itself is free
// for a same-day turnover.
type Range struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Calendar indexes Day records by date for O(1) lookup. Duplicate dates are
// resolved last-write-wins.
type Calendar struct {
	days map[string]Day
}

func NewCalendar(days []Day) *Calendar {
	c := &Calendar{days: make(map[string]Day, len(days))}
	c.Merge(days)
	return c
}

// Merge upserts a batch of day records, keyed by date. Paging the calendar
// forward re-merges whatever window the API returned; re-merging an already
// cached date just overwrites it.
func (c *Calendar) Merge(days []Day) {
	if c.days == nil {
		c.days = make(map[string]Day, len(days))
	}
	for _, d := range days {
		day := d
		day.Date = DateOnly(d.Date)
		c.days[day.Date.Format(dateLayout)] = day
	}
}

func (c *Calendar) Day(date time.Time) (Day, bool) {
	d, ok := c.days[DateOnly(date).Format(dateLayout)]
	return d, ok
}

func (c *Calendar) Len() int {
	return len(c.days)
}

// DateOnly strips the time-of-day so dates from different sources compare
// equal.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights is the whole-day count from check-in to check-out, exclusive of the
// checkout day.
func Nights(checkIn, checkOut time.Time) int {
	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	if !out.After(in) {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}
