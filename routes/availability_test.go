package routes

import (
	"testing"
	"time"

	"acropolis-estates-server/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolveNightlyRatePrecedence(t *testing.T) {
	listing := &models.Listing{Price: 100}
	overrides := []models.PriceOverride{
		{Date: date("2024-08-15"), Price: 250},
	}
	seasons := []models.SeasonalPrice{
		{StartDate: date("2024-08-01"), EndDate: date("2024-09-01"), Price: 180},
	}

	tests := []struct {
		name string
		day  string
		want float64
	}{
		{"override beats season", "2024-08-15", 250},
		{"season beats base", "2024-08-10", 180},
		{"season end exclusive", "2024-09-01", 100},
		{"season start inclusive", "2024-08-01", 180},
		{"base outside season", "2024-07-20", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveNightlyRate(listing, overrides, seasons, date(tt.day))
			if got != tt.want {
				t.Errorf("rate for %s = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestBuildDaysMarksBookedNights(t *testing.T) {
	listing := &models.Listing{Price: 100}
	booked := map[string]bool{
		"2024-06-03": true,
		"2024-06-04": true,
	}

	days := buildDays(listing, nil, nil, booked, date("2024-06-01"), date("2024-06-06"))
	if len(days) != 5 {
		t.Fatalf("got %d days, want 5 (end exclusive)", len(days))
	}
	for _, d := range days {
		key := d.Date.Format("2006-01-02")
		if booked[key] && d.Available {
			t.Errorf("%s should be unavailable", key)
		}
		if !booked[key] && !d.Available {
			t.Errorf("%s should be available", key)
		}
		if d.Price != 100 {
			t.Errorf("%s price = %v, want 100", key, d.Price)
		}
	}
}

func TestNightsToRangesMergesContiguous(t *testing.T) {
	dates := []time.Time{
		date("2024-06-03"),
		date("2024-06-04"),
		date("2024-06-05"),
		date("2024-06-10"),
		date("2024-06-11"),
		date("2024-06-20"),
	}

	ranges := nightsToRanges(dates)
	if len(ranges) != 3 {
		t.Fatalf("got %d ranges, want 3", len(ranges))
	}

	// Checkout is the day after the last occupied night.
	if !ranges[0].CheckIn.Equal(date("2024-06-03")) || !ranges[0].CheckOut.Equal(date("2024-06-06")) {
		t.Errorf("range 0 = %v..%v", ranges[0].CheckIn, ranges[0].CheckOut)
	}
	if !ranges[1].CheckIn.Equal(date("2024-06-10")) || !ranges[1].CheckOut.Equal(date("2024-06-12")) {
		t.Errorf("range 1 = %v..%v", ranges[1].CheckIn, ranges[1].CheckOut)
	}
	if !ranges[2].CheckIn.Equal(date("2024-06-20")) || !ranges[2].CheckOut.Equal(date("2024-06-21")) {
		t.Errorf("range 2 = %v..%v", ranges[2].CheckIn, ranges[2].CheckOut)
	}
}

func TestNightsToRangesEmpty(t *testing.T) {
	if got := nightsToRanges(nil); len(got) != 0 {
		t.Fatalf("expected no ranges, got %v", got)
	}
}

func TestListingRatesConvertsPercentages(t *testing.T) {
	listing := &models.Listing{
		VATRate:                  13,
		MunicipalityTaxRate:      0.5,
		ServiceFeeRate:           12,
		ClimateCrisisFeePerNight: 2,
		CleaningFee:              40,
	}

	rates := listingRates(listing)
	if rates.VATRate != 0.13 {
		t.Errorf("VATRate = %v, want 0.13", rates.VATRate)
	}
	if rates.MunicipalityTaxRate != 0.005 {
		t.Errorf("MunicipalityTaxRate = %v, want 0.005", rates.MunicipalityTaxRate)
	}
	if rates.ServiceFeeRate != 0.12 {
		t.Errorf("ServiceFeeRate = %v, want 0.12", rates.ServiceFeeRate)
	}
	if rates.ClimateFeePerNight != 2 || rates.CleaningFee != 40 {
		t.Errorf("flat fees not carried: %+v", rates)
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.BookingStatusPending, models.BookingStatusConfirmed},
		{models.BookingStatusPending, models.BookingStatusRejected},
		{models.BookingStatusPending, models.BookingStatusCancelled},
		{models.BookingStatusConfirmed, models.BookingStatusCancelled},
		{models.BookingStatusConfirmed, models.BookingStatusCompleted},
	}
	for _, tr := range allowed {
		if !statusTransitionAllowed(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to string }{
		{models.BookingStatusRejected, models.BookingStatusConfirmed},
		{models.BookingStatusCancelled, models.BookingStatusPending},
		{models.BookingStatusCompleted, models.BookingStatusCancelled},
		{models.BookingStatusConfirmed, models.BookingStatusPending},
		{models.BookingStatusPending, models.BookingStatusCompleted},
	}
	for _, tr := range forbidden {
		if statusTransitionAllowed(tr.from, tr.to) {
			t.Errorf("%s -> %s should be rejected", tr.from, tr.to)
		}
	}
}

func TestParseStayDates(t *testing.T) {
	in, out, errs := parseStayDates("2024-06-01", "2024-06-05")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !in.Equal(date("2024-06-01")) || !out.Equal(date("2024-06-05")) {
		t.Errorf("parsed %v..%v", in, out)
	}

	_, _, errs = parseStayDates("June 1st", "2024-06-05")
	if len(errs["check_in"]) == 0 {
		t.Error("bad check_in not reported")
	}

	// Empty dates are left to domain validation, not parse errors.
	_, _, errs = parseStayDates("", "")
	if len(errs) != 0 {
		t.Errorf("empty dates must not be parse errors: %v", errs)
	}
}
