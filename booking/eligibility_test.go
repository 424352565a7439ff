package booking

import (
	"testing"
	"time"
)

func juneCalendar() *Calendar {
	var days []Day
	for d := date("2024-06-01"); d.Before(date("2024-07-01")); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{Date: d, Available: true, Price: 100})
	}
	return NewCalendar(days)
}

func TestCheckInBlockedInsideBookedSpan(t *testing.T) {
	cal := juneCalendar()
	booked := []Range{{CheckIn: date("2024-06-05"), CheckOut: date("2024-06-10")}}

	// Every night of [check_in, check_out) is occupied.
	for d := date("2024-06-05"); d.Before(date("2024-06-10")); d = d.AddDate(0, 0, 1) {
		if CheckInEligible(cal, booked, d) {
			t.Errorf("%s should be an ineligible check-in", d.Format("2006-01-02"))
		}
	}
}

func TestCheckInOnTurnoverDay(t *testing.T) {
	cal := juneCalendar()
	booked := []Range{{CheckIn: date("2024-06-05"), CheckOut: date("2024-06-10")}}

	// The existing booking's checkout day accepts a same-day turnover.
	if !CheckInEligible(cal, booked, date("2024-06-10")) {
		t.Error("checkout day of an existing booking must be check-in eligible")
	}
	if !CheckInEligible(cal, booked, date("2024-06-04")) {
		t.Error("day before the booked span must be check-in eligible")
	}
}

func TestCheckInNeedsDayRecord(t *testing.T) {
	cal := NewCalendar([]Day{
		{Date: date("2024-06-01"), Available: true, Price: 100},
		{Date: date("2024-06-02"), Available: false, Price: 100},
	})

	if !CheckInEligible(cal, nil, date("2024-06-01")) {
		t.Error("available day with no bookings should be eligible")
	}
	if CheckInEligible(cal, nil, date("2024-06-02")) {
		t.Error("unavailable day should be ineligible")
	}
	if CheckInEligible(cal, nil, date("2024-06-03")) {
		t.Error("day without a record should be ineligible")
	}
}

func TestCheckInToleratesOverlappingRanges(t *testing.T) {
	cal := juneCalendar()
	// Overlap should never happen upstream, but must not panic or misreport.
	booked := []Range{
		{CheckIn: date("2024-06-05"), CheckOut: date("2024-06-10")},
		{CheckIn: date("2024-06-08"), CheckOut: date("2024-06-12")},
	}
	if CheckInEligible(cal, booked, date("2024-06-09")) {
		t.Error("date occupied by both ranges should be ineligible")
	}
	if !CheckInEligible(cal, booked, date("2024-06-12")) {
		t.Error("checkout of the later range should be eligible")
	}
}

func TestCheckOutMustFollowCheckIn(t *testing.T) {
	if CheckOutEligible(nil, date("2024-06-05"), date("2024-06-05")) {
		t.Error("checkout equal to check-in must be rejected")
	}
	if CheckOutEligible(nil, date("2024-06-05"), date("2024-06-04")) {
		t.Error("checkout before check-in must be rejected")
	}
	if !CheckOutEligible(nil, date("2024-06-05"), date("2024-06-06")) {
		t.Error("one-night stay must be accepted")
	}
}

func TestCheckOutCappedByNextBooking(t *testing.T) {
	booked := []Range{{CheckIn: date("2024-06-10"), CheckOut: date("2024-06-15")}}
	in := date("2024-06-01")

	// Landing exactly on the next booking's check-in is the turnover day.
	if !CheckOutEligible(booked, in, date("2024-06-10")) {
		t.Error("checkout on the next booking's check-in must be eligible")
	}
	if CheckOutEligible(booked, in, date("2024-06-11")) {
		t.Error("checkout past the next booking's check-in must be ineligible")
	}
}

func TestMaxCheckoutDefaultsTo180Days(t *testing.T) {
	in := date("2024-06-01")
	got := MaxCheckout(nil, in)
	want := in.AddDate(0, 0, 180)
	if !got.Equal(want) {
		t.Fatalf("MaxCheckout with no future bookings = %v, want %v", got, want)
	}

	if !CheckOutEligible(nil, in, want) {
		t.Error("checkout at the 180-day bound should be eligible")
	}
	if CheckOutEligible(nil, in, want.AddDate(0, 0, 1)) {
		t.Error("checkout past the 180-day bound should be ineligible")
	}
}

func TestMaxCheckoutPicksEarliestFutureBooking(t *testing.T) {
	booked := []Range{
		{CheckIn: date("2024-06-20"), CheckOut: date("2024-06-25")},
		{CheckIn: date("2024-06-10"), CheckOut: date("2024-06-12")},
		// In the past relative to the selected check-in; must not count.
		{CheckIn: date("2024-05-01"), CheckOut: date("2024-05-05")},
	}
	got := MaxCheckout(booked, date("2024-06-01"))
	if !got.Equal(date("2024-06-10")) {
		t.Fatalf("MaxCheckout = %v, want 2024-06-10", got)
	}
}

func TestOverlaps(t *testing.T) {
	booked := []Range{{CheckIn: date("2024-06-05"), CheckOut: date("2024-06-10")}}

	tests := []struct {
		in, out string
		want    bool
	}{
		{"2024-06-01", "2024-06-05", false}, // ends on their check-in
		{"2024-06-10", "2024-06-12", false}, // starts on their checkout
		{"2024-06-01", "2024-06-06", true},
		{"2024-06-09", "2024-06-12", true},
		{"2024-06-06", "2024-06-08", true}, // fully inside
		{"2024-06-01", "2024-06-12", true}, // fully covering
	}
	for _, tc := range tests {
		if got := Overlaps(booked, date(tc.in), date(tc.out)); got != tc.want {
			t.Errorf("Overlaps(%s, %s) = %v, want %v", tc.in, tc.out, got, tc.want)
		}
	}
}

func TestOccupiedHalfOpen(t *testing.T) {
	booked := []Range{{CheckIn: date("2024-06-05"), CheckOut: date("2024-06-10")}}
	if !Occupied(booked, date("2024-06-05")) {
		t.Error("check-in day is occupied")
	}
	if Occupied(booked, date("2024-06-10")) {
		t.Error("checkout day is not occupied")
	}
	if Occupied(booked, time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)) {
		t.Error("time-of-day must not leak into occupancy")
	}
}
