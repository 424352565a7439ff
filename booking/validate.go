package booking

import (
	"strings"
	"time"
)

// Validation error codes, reported per field in the same field-keyed shape
// the public API returns.
const (
	CodeMissingDates         = "missing_dates"
	CodeInvalidRange         = "invalid_range"
	CodeMinimumStayNotMet    = "minimum_stay_not_met"
	CodeMissingRequiredField = "missing_required_field"
	CodeGuestCountExceeded   = "guest_count_exceeded"
)

// FieldErrors maps a field name to the error codes raised against it.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, code string) {
	fe[field] = append(fe[field], code)
}

// Has reports whether field carries the given code.
func (fe FieldErrors) Has(field, code string) bool {
	for _, c := range fe[field] {
		if c == code {
			return true
		}
	}
	return false
}

// Request is a booking submission as entered by the guest.
type Request struct {
	CheckIn       time.Time
	CheckOut      time.Time
	Adults        int
	Children      int
	FirstName     string
	LastName      string
	Email         string
	PhoneNumber   string
	TermsAccepted bool
}

// GuestLimits is the listing's capacity configuration.
type GuestLimits struct {
	MaxGuests   int
	MaxAdults   int
	MaxChildren int
}

// Validate checks a booking request against the listing limits and returns
// every violation at once, field-keyed. An empty result means the request
// may be submitted.
func Validate(req Request, limits GuestLimits) FieldErrors {
	errs := FieldErrors{}

	if req.CheckIn.IsZero() {
		errs.add("check_in", CodeMissingDates)
	}
	if req.CheckOut.IsZero() {
		errs.add("check_out", CodeMissingDates)
	}

	if !req.CheckIn.IsZero() && !req.CheckOut.IsZero() {
		if !DateOnly(req.CheckOut).After(DateOnly(req.CheckIn)) {
			errs.add("check_out", CodeInvalidRange)
		} else if Nights(req.CheckIn, req.CheckOut) < 1 {
			errs.add("check_out", CodeMinimumStayNotMet)
		}
	}

	if !req.TermsAccepted {
		errs.add("terms", CodeMissingRequiredField)
	}
	if strings.TrimSpace(req.FirstName) == "" {
		errs.add("first_name", CodeMissingRequiredField)
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs.add("last_name", CodeMissingRequiredField)
	}
	if strings.TrimSpace(req.Email) == "" {
		errs.add("email", CodeMissingRequiredField)
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		errs.add("phone_number", CodeMissingRequiredField)
	}
	if req.Adults < 1 {
		errs.add("adults", CodeMissingRequiredField)
	}

	if limits.MaxAdults > 0 && req.Adults > limits.MaxAdults {
		errs.add("adults", CodeGuestCountExceeded)
	}
	if req.Children > limits.MaxChildren {
		errs.add("children", CodeGuestCountExceeded)
	}
	if limits.MaxGuests > 0 && req.Adults+req.Children > limits.MaxGuests {
		errs.add("guests", CodeGuestCountExceeded)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
