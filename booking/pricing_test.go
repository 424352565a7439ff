package booking

import (
	"math"
	"testing"
	"time"
)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestPriceBreakdown(t *testing.T) {
	cal := NewCalendar([]Day{
		{Date: date("2024-06-01"), Available: true, Price: 100},
		{Date: date("2024-06-02"), Available: true, Price: 120},
	})
	rates := Rates{VATRate: 0.13, MunicipalityTaxRate: 0.005, ClimateFeePerNight: 2}

	q := Price(cal, rates, date("2024-06-01"), date("2024-06-03"))

	if q.Nights != 2 {
		t.Fatalf("nights = %d, want 2", q.Nights)
	}
	if !q.Complete() {
		t.Fatal("quote with both dates set must be complete")
	}
	if !approx(*q.Subtotal, 220) {
		t.Errorf("subtotal = %v, want 220", *q.Subtotal)
	}
	if !approx(*q.VAT, 28.6) {
		t.Errorf("vat = %v, want 28.6", *q.VAT)
	}
	if !approx(*q.MunicipalityTax, 1.1) {
		t.Errorf("municipality_tax = %v, want 1.1", *q.MunicipalityTax)
	}
	if !approx(*q.ClimateCrisisFee, 4) {
		t.Errorf("climate_crisis_fee = %v, want 4", *q.ClimateCrisisFee)
	}
	if !approx(*q.Total, 253.7) {
		t.Errorf("total = %v, want 253.7", *q.Total)
	}
}

func TestPriceTotalIsSumOfParts(t *testing.T) {
	cal := juneCalendar()
	rates := Rates{
		VATRate:             0.1325,
		MunicipalityTaxRate: 0.005,
		ClimateFeePerNight:  2,
		ServiceFeeRate:      0.05,
		CleaningFee:         40,
	}

	q := Price(cal, rates, date("2024-06-03"), date("2024-06-08"))
	sum := *q.Subtotal + *q.VAT + *q.MunicipalityTax + *q.ClimateCrisisFee + *q.ServiceFee + *q.CleaningFee
	if !approx(*q.Total, sum) {
		t.Fatalf("total = %v, parts sum to %v", *q.Total, sum)
	}
}

func TestPriceIdempotent(t *testing.T) {
	cal := juneCalendar()
	rates := Rates{VATRate: 0.13, MunicipalityTaxRate: 0.005, ClimateFeePerNight: 2}

	a := Price(cal, rates, date("2024-06-01"), date("2024-06-05"))
	b := Price(cal, rates, date("2024-06-01"), date("2024-06-05"))
	if *a.Total != *b.Total || a.Nights != b.Nights || *a.Subtotal != *b.Subtotal {
		t.Fatal("identical inputs must price identically")
	}
}

func TestPriceSkipsMissingAndUnavailableDays(t *testing.T) {
	cal := NewCalendar([]Day{
		{Date: date("2024-06-01"), Available: true, Price: 100},
		{Date: date("2024-06-02"), Available: false, Price: 500},
		// 2024-06-03 has no record at all.
	})
	rates := Rates{VATRate: 0.13}

	q := Price(cal, rates, date("2024-06-01"), date("2024-06-04"))
	if q.Nights != 3 {
		t.Fatalf("nights = %d, want 3", q.Nights)
	}
	// Only the one available night is charged.
	if !approx(*q.Subtotal, 100) {
		t.Fatalf("subtotal = %v, want 100", *q.Subtotal)
	}
}

func TestPriceEmptyWhenDatesIncomplete(t *testing.T) {
	cal := juneCalendar()
	rates := Rates{VATRate: 0.13, MunicipalityTaxRate: 0.005, ClimateFeePerNight: 2}

	for _, q := range []Quote{
		Price(cal, rates, time.Time{}, time.Time{}),
		Price(cal, rates, date("2024-06-01"), time.Time{}),
		Price(cal, rates, time.Time{}, date("2024-06-03")),
	} {
		if q.Nights != 0 {
			t.Errorf("nights = %d, want 0", q.Nights)
		}
		if q.Complete() {
			t.Error("incomplete dates must yield the empty quote")
		}
		// All money fields nil together, never a partial reset.
		if q.Subtotal != nil || q.VAT != nil || q.MunicipalityTax != nil ||
			q.ClimateCrisisFee != nil || q.CleaningFee != nil || q.ServiceFee != nil || q.Total != nil {
			t.Error("money fields must all be nil when dates are incomplete")
		}
	}
}

func TestPriceAllFieldsPopulatedTogether(t *testing.T) {
	cal := juneCalendar()
	q := Price(cal, Rates{}, date("2024-06-01"), date("2024-06-02"))
	if q.Subtotal == nil || q.VAT == nil || q.MunicipalityTax == nil ||
		q.ClimateCrisisFee == nil || q.CleaningFee == nil || q.ServiceFee == nil || q.Total == nil {
		t.Fatal("complete dates must populate every money field")
	}
}
