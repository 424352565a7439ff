package booking

import "time"

// maxStayAheadDays bounds how far a checkout may be picked when no future
// booking caps it. Matches the calendar paging window of the booking form,
// not a business rule.
const maxStayAheadDays = 180

// Occupied reports whether date falls inside the occupied span of any booked
// range, using the half-open interval [CheckIn, CheckOut). A checkout day is
// not occupied, so a turnover day stays bookable. Overlapping input ranges
// are tolerated; any one of them occupying the date is enough.
func Occupied(booked []Range, date time.Time) bool {
	d := DateOnly(date)
	for _, r := range booked {
		in := DateOnly(r.CheckIn)
		out := DateOnly(r.CheckOut)
		if !d.Before(in) && d.Before(out) {
			return true
		}
	}
	return false
}

// CheckInEligible reports whether date is a legal check-in: it must have a
// day record, the day must be available, and it must not be an occupied
// night of an existing booking.
func CheckInEligible(cal *Calendar, booked []Range, date time.Time) bool {
	day, ok := cal.Day(date)
	if !ok || !day.Available {
		return false
	}
	return !Occupied(booked, date)
}

// MaxCheckout returns the latest selectable checkout for the given check-in:
// the check-in of the next booking after it, or check-in + 180 days when
// nothing is booked ahead.
func MaxCheckout(booked []Range, checkIn time.Time) time.Time {
	in := DateOnly(checkIn)
	var next time.Time
	for _, r := range booked {
		b := DateOnly(r.CheckIn)
		if b.After(in) && (next.IsZero() || b.Before(next)) {
			next = b
		}
	}
	if next.IsZero() {
		return in.AddDate(0, 0, maxStayAheadDays)
	}
	return next
}

// CheckOutEligible reports whether candidate is a legal checkout for the
// selected check-in. The candidate must be strictly after the check-in, must
// not pass MaxCheckout, and the stay [checkIn, candidate) must not swallow
// the check-in day of any existing booking. Landing exactly on the next
// booking's check-in is fine: that is the turnover day.
func CheckOutEligible(booked []Range, checkIn, candidate time.Time) bool {
	in := DateOnly(checkIn)
	out := DateOnly(candidate)
	if !out.After(in) {
		return false
	}
	if out.After(MaxCheckout(booked, in)) {
		return false
	}
	for _, r := range booked {
		b := DateOnly(r.CheckIn)
		if b.After(in) && b.Before(out) {
			return false
		}
	}
	return true
}

// Overlaps reports whether the stay [checkIn, checkOut) intersects any booked
// range. This is the server-side create check: check_in < existing.check_out
// AND check_out > existing.check_in.
func Overlaps(booked []Range, checkIn, checkOut time.Time) bool {
	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	for _, r := range booked {
		if in.Before(DateOnly(r.CheckOut)) && out.After(DateOnly(r.CheckIn)) {
			return true
		}
	}
	return false
}
