package booking

import "time"

// Rates is the tax and fee configuration of a listing, fixed for the
// lifetime of one calculation. VATRate, MunicipalityTaxRate and
// ServiceFeeRate are fractions (0.13 for 13%); ClimateFeePerNight and
// CleaningFee are amounts.
type Rates struct {
	VATRate             float64
	MunicipalityTaxRate float64
	ClimateFeePerNight  float64
	ServiceFeeRate      float64
	CleaningFee         float64
}

// Quote is the price breakdown for a candidate stay. The money fields are
// either all nil (dates incomplete) or all set, never mixed.
type Quote struct {
	Nights           int      `json:"nights"`
	Subtotal         *float64 `json:"subtotal"`
	VAT              *float64 `json:"vat"`
	MunicipalityTax  *float64 `json:"municipality_tax"`
	ClimateCrisisFee *float64 `json:"climate_crisis_fee"`
	CleaningFee      *float64 `json:"cleaning_fee"`
	ServiceFee       *float64 `json:"service_fee"`
	Total            *float64 `json:"total"`
}

// Complete reports whether the quote carries a full breakdown.
func (q Quote) Complete() bool {
	return q.Subtotal != nil
}

// Price computes the quote for a stay. With either date unset it returns the
// empty quote. Nights priced from the calendar are only those with a record
// marked available; a missing or unavailable night contributes zero to the
// subtotal rather than failing the stay (behavior kept from the booking
// form, flagged upstream as questionable).
func Price(cal *Calendar, rates Rates, checkIn, checkOut time.Time) Quote {
	if checkIn.IsZero() || checkOut.IsZero() {
		return Quote{}
	}

	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	nights := Nights(in, out)

	subtotal := 0.0
	for d := in; d.Before(out); d = d.AddDate(0, 0, 1) {
		if day, ok := cal.Day(d); ok && day.Available {
			subtotal += day.Price
		}
	}

	vat := subtotal * rates.VATRate
	municipality := subtotal * rates.MunicipalityTaxRate
	climate := rates.ClimateFeePerNight * float64(nights)
	service := subtotal * rates.ServiceFeeRate
	cleaning := rates.CleaningFee
	total := subtotal + vat + municipality + climate + service + cleaning

	return Quote{
		Nights:           nights,
		Subtotal:         &subtotal,
		VAT:              &vat,
		MunicipalityTax:  &municipality,
		ClimateCrisisFee: &climate,
		CleaningFee:      &cleaning,
		ServiceFee:       &service,
		Total:            &total,
	}
}
