package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"acropolis-estates-server/booking"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// newTestServer serves a small fixed listing with an open June 2024 calendar
// and one existing booking June 10-13.
func newTestServer(t *testing.T, onBooking func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/short-term-listings/7", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ID":                           7,
			"title":                        "Plaka Apartment",
			"currency":                     "EUR",
			"max_guests":                   4,
			"max_adults":                   3,
			"max_children":                 2,
			"price":                        100.0,
			"vat_rate":                     13.0,
			"municipality_tax_rate":        0.5,
			"climate_crisis_fee_per_night": 2.0,
			"cleaning_fee":                 40.0,
			"service_fee":                  0.0,
		})
	})

	mux.HandleFunc("/short-term-listings/7/availability", func(w http.ResponseWriter, r *http.Request) {
		start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
		if err != nil {
			http.Error(w, "bad start", http.StatusBadRequest)
			return
		}
		end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
		if err != nil {
			http.Error(w, "bad end", http.StatusBadRequest)
			return
		}
		var days []map[string]interface{}
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			days = append(days, map[string]interface{}{
				"date":      d.Format("2006-01-02"),
				"available": true,
				"price":     100.0,
			})
		}
		json.NewEncoder(w).Encode(days)
	})

	mux.HandleFunc("/short-term-bookings/unavailable-dates", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("listing") != "7" {
			http.Error(w, "unknown listing", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{
			{"check_in": "2024-06-10", "check_out": "2024-06-13"},
		})
	})

	mux.HandleFunc("/short-term-bookings/", func(w http.ResponseWriter, r *http.Request) {
		if onBooking != nil {
			onBooking(w, r)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"ID": 1}`)
	})

	return httptest.NewServer(mux)
}

func TestGetListing(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	c := New(srv.URL)
	listing, err := c.GetListing(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if listing.MaxGuests != 4 || listing.MaxAdults != 3 || listing.MaxChildren != 2 {
		t.Errorf("unexpected guest limits: %+v", listing)
	}
	if listing.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", listing.Currency)
	}
}

func TestGetAvailabilityParsesDays(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	c := New(srv.URL)
	days, err := c.GetAvailability(context.Background(), 7, date("2024-06-01"), date("2024-06-04"))
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	if !days[0].Date.Equal(date("2024-06-01")) || !days[0].Available || days[0].Price != 100 {
		t.Errorf("unexpected first day: %+v", days[0])
	}
}

func TestGetUnavailableDates(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	c := New(srv.URL)
	ranges, err := c.GetUnavailableDates(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUnavailableDates: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	if !ranges[0].CheckIn.Equal(date("2024-06-10")) || !ranges[0].CheckOut.Equal(date("2024-06-13")) {
		t.Errorf("unexpected range: %+v", ranges[0])
	}
}

func TestCreateBookingSurfacesFieldErrors(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string][]string{
			"email": {"missing_required_field"},
			"terms": {"missing_required_field"},
		})
	})
	defer srv.Close()

	c := New(srv.URL)
	err := c.CreateBooking(context.Background(), BookingInput{Listing: 7})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
	if got := apiErr.Fields["email"]; len(got) != 1 || got[0] != "missing_required_field" {
		t.Errorf("email errors = %v", got)
	}
	if _, ok := apiErr.Fields["terms"]; !ok {
		t.Error("terms error missing from surfaced body")
	}
}

func TestCreateBookingServerErrorIsGeneric(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	c := New(srv.URL)
	err := c.CreateBooking(context.Background(), BookingInput{Listing: 7})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*APIError); ok {
		t.Fatal("5xx must not come back as a field error")
	}
}

func validDetails() GuestDetails {
	return GuestDetails{
		FirstName:     "Maria",
		LastName:      "Papadopoulou",
		Email:         "maria@example.com",
		PhoneNumber:   "+306900000000",
		Adults:        2,
		Children:      1,
		Language:      "el",
		TermsAccepted: true,
	}
}

func loadedSession(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	s := NewSession(New(srv.URL), 7)
	if err := s.Load(date("2024-06-01"), date("2024-07-01")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestSessionFullFlow(t *testing.T) {
	var submitted BookingInput
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"ID": 1}`)
	})
	defer srv.Close()

	s := loadedSession(t, srv)
	defer s.Close()

	if s.State() != StateBrowsing {
		t.Fatalf("initial state = %v, want browsing", s.State())
	}

	if err := s.SelectDates(date("2024-06-03"), date("2024-06-06")); err != nil {
		t.Fatalf("SelectDates: %v", err)
	}
	if s.State() != StateDatesSelected {
		t.Fatalf("state = %v after selecting dates", s.State())
	}

	quote := s.Quote()
	if !quote.Complete() {
		t.Fatal("quote incomplete after date selection")
	}
	if quote.Nights != 3 {
		t.Errorf("nights = %d, want 3", quote.Nights)
	}
	if *quote.Subtotal != 300 {
		t.Errorf("subtotal = %v, want 300", *quote.Subtotal)
	}

	if errs := s.EnterDetails(validDetails()); errs != nil {
		t.Fatalf("EnterDetails: %v", errs)
	}
	if s.State() != StateDetailsEntered {
		t.Fatalf("state = %v after details", s.State())
	}

	if err := s.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.State() != StateSubmitted {
		t.Fatalf("state = %v after submit", s.State())
	}
	if submitted.CheckIn != "2024-06-03" || submitted.CheckOut != "2024-06-06" {
		t.Errorf("submitted dates %s..%s", submitted.CheckIn, submitted.CheckOut)
	}
	if submitted.Listing != 7 || submitted.Adults != 2 {
		t.Errorf("unexpected submission payload: %+v", submitted)
	}
}

func TestSessionRejectsOccupiedDates(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	s := loadedSession(t, srv)
	defer s.Close()

	// June 10-13 is already booked.
	if err := s.SelectDates(date("2024-06-11"), date("2024-06-14")); err != ErrDatesNotBookable {
		t.Fatalf("expected ErrDatesNotBookable, got %v", err)
	}
	if s.State() != StateBrowsing {
		t.Errorf("failed selection must not change state, got %v", s.State())
	}
}

func TestSessionTurnoverDayCheckIn(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	s := loadedSession(t, srv)
	defer s.Close()

	// Checkout day of the existing booking is a valid check-in.
	if err := s.SelectDates(date("2024-06-13"), date("2024-06-16")); err != nil {
		t.Fatalf("turnover day check-in rejected: %v", err)
	}
}

func TestSessionQuoteCallbackAtomic(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	s := loadedSession(t, srv)
	defer s.Close()

	var calls []booking.Quote
	s.OnQuote = func(q booking.Quote) { calls = append(calls, q) }

	if err := s.SelectDates(date("2024-06-03"), date("2024-06-05")); err != nil {
		t.Fatalf("SelectDates: %v", err)
	}
	s.ClearDates()

	if len(calls) != 2 {
		t.Fatalf("got %d quote callbacks, want 2", len(calls))
	}
	if !calls[0].Complete() {
		t.Error("selection callback carried a partial quote")
	}
	if calls[1].Complete() || calls[1].Subtotal != nil {
		t.Error("clearing dates must reset the quote to empty")
	}
	if s.State() != StateBrowsing {
		t.Errorf("state = %v after clearing", s.State())
	}
}

func TestSessionSubmitFailureReturnsToDetails(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string][]string{
			"non_field_errors": {"These dates are already booked."},
		})
	})
	defer srv.Close()

	s := loadedSession(t, srv)
	defer s.Close()

	if err := s.SelectDates(date("2024-06-03"), date("2024-06-06")); err != nil {
		t.Fatalf("SelectDates: %v", err)
	}
	if errs := s.EnterDetails(validDetails()); errs != nil {
		t.Fatalf("EnterDetails: %v", errs)
	}

	err := s.Submit()
	if err == nil {
		t.Fatal("expected submit failure")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Fields["non_field_errors"][0] != "These dates are already booked." {
		t.Errorf("unexpected error body: %v", apiErr.Fields)
	}
	if s.State() != StateDetailsEntered {
		t.Errorf("state = %v after failed submit, want details_entered", s.State())
	}

	// The guest can retry from where they were.
	if errs := s.EnterDetails(validDetails()); errs != nil {
		t.Errorf("retry rejected: %v", errs)
	}
}

func TestSessionDetailsValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	s := loadedSession(t, srv)
	defer s.Close()

	if err := s.SelectDates(date("2024-06-03"), date("2024-06-06")); err != nil {
		t.Fatalf("SelectDates: %v", err)
	}

	details := validDetails()
	details.Email = ""
	details.Adults = 5 // above max_adults 3

	errs := s.EnterDetails(details)
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	if !errs.Has("email", booking.CodeMissingRequiredField) {
		t.Errorf("missing email not reported: %v", errs)
	}
	if !errs.Has("adults", booking.CodeGuestCountExceeded) {
		t.Errorf("adults overflow not reported: %v", errs)
	}
	if s.State() != StateDatesSelected {
		t.Errorf("failed details must not advance state, got %v", s.State())
	}
}

func TestSessionWindowPagingIdempotent(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	s := loadedSession(t, srv)
	defer s.Close()

	if err := s.LoadWindow(date("2024-07-01"), date("2024-08-01")); err != nil {
		t.Fatalf("LoadWindow: %v", err)
	}
	if err := s.LoadWindow(date("2024-07-01"), date("2024-08-01")); err != nil {
		t.Fatalf("repeat LoadWindow: %v", err)
	}

	// The merged July window makes July dates selectable.
	if err := s.SelectDates(date("2024-07-10"), date("2024-07-12")); err != nil {
		t.Fatalf("July selection after paging: %v", err)
	}
}

func TestSessionCloseCancelsRequests(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	s := loadedSession(t, srv)
	s.Close()

	if err := s.LoadWindow(date("2024-07-01"), date("2024-08-01")); err == nil {
		t.Fatal("expected canceled context to fail the fetch")
	}
}
