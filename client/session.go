package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"acropolis-estates-server/booking"
)

// State is a phase of one booking attempt.
type State int

const (
	StateBrowsing State = iota
	StateDatesSelected
	StateDetailsEntered
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateDatesSelected:
		return "dates_selected"
	case StateDetailsEntered:
		return "details_entered"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	}
	return "unknown"
}

var (
	ErrNotLoaded        = errors.New("session not loaded")
	ErrBadTransition    = errors.New("operation not valid in current state")
	ErrDatesNotBookable = errors.New("selected dates are not bookable")
)

// GuestDetails is what the guest fills in after picking dates.
type GuestDetails struct {
	FirstName     string
	LastName      string
	Email         string
	PhoneNumber   string
	Adults        int
	Children      int
	Message       string
	Language      string
	TermsAccepted bool
}

// Session drives one booking attempt against one listing. It owns an
// availability calendar extended by month paging and the listing's booked
// ranges, and recomputes the price quote whenever the candidate dates
// change. Safe for use from multiple goroutines.
type Session struct {
	client    *Client
	listingID uint

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	loaded   bool
	listing  *Listing
	calendar *booking.Calendar
	booked   []booking.Range

	checkIn  time.Time
	checkOut time.Time
	details  GuestDetails
	quote    booking.Quote

	// OnQuote, when set before Load, is called with the full quote after
	// every recompute. It never observes a partially updated quote; an
	// empty quote means no selection.
	OnQuote func(booking.Quote)
}

// NewSession starts a session in the browsing state.
func NewSession(c *Client, listingID uint) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		client:    c,
		listingID: listingID,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateBrowsing,
		calendar:  booking.NewCalendar(nil),
	}
}

// Load fetches the listing plus the initial availability window and the
// booked ranges, the latter two concurrently. The session only becomes
// submittable once both resolve; a failed availability or range fetch is
// logged and leaves that side empty.
func (s *Session) Load(start, end time.Time) error {
	listing, err := s.client.GetListing(s.ctx, s.listingID)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var days []booking.Day
	var ranges []booking.Range

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		if days, err = s.client.GetAvailability(s.ctx, s.listingID, start, end); err != nil {
			log.Printf("availability fetch failed for listing %d: %v", s.listingID, err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if ranges, err = s.client.GetUnavailableDates(s.ctx, s.listingID); err != nil {
			log.Printf("unavailable-dates fetch failed for listing %d: %v", s.listingID, err)
		}
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listing = listing
	s.calendar.Merge(days)
	s.booked = ranges
	s.loaded = true
	return nil
}

// LoadWindow fetches another availability window, as when the guest pages
// the calendar forward, and merges it. Re-fetching the same window is
// idempotent.
func (s *Session) LoadWindow(start, end time.Time) error {
	days, err := s.client.GetAvailability(s.ctx, s.listingID, start, end)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar.Merge(days)
	return nil
}

// State returns the current attempt phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Quote returns the last computed quote; empty when no dates are selected.
func (s *Session) Quote() booking.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote
}

// CheckInEligible reports whether date works as a check-in against the
// loaded calendar and booked ranges.
func (s *Session) CheckInEligible(date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false
	}
	return booking.CheckInEligible(s.calendar, s.booked, date)
}

// CheckOutEligible reports whether date works as a check-out for the given
// check-in.
func (s *Session) CheckOutEligible(checkIn, date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false
	}
	return booking.CheckOutEligible(s.booked, checkIn, date)
}

// SelectDates sets the candidate stay and recomputes the quote. Allowed
// while browsing or reselecting; rejected once a submit is in flight.
func (s *Session) SelectDates(checkIn, checkOut time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.state == StateSubmitting || s.state == StateSubmitted {
		return ErrBadTransition
	}
	if !booking.CheckInEligible(s.calendar, s.booked, checkIn) ||
		!booking.CheckOutEligible(s.booked, checkIn, checkOut) {
		return ErrDatesNotBookable
	}

	s.checkIn = booking.DateOnly(checkIn)
	s.checkOut = booking.DateOnly(checkOut)
	s.state = StateDatesSelected
	s.recomputeQuoteLocked()
	return nil
}

// ClearDates resets the candidate stay; the quote empties atomically.
func (s *Session) ClearDates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateSubmitted {
		return
	}
	s.checkIn = time.Time{}
	s.checkOut = time.Time{}
	s.state = StateBrowsing
	s.recomputeQuoteLocked()
}

// recomputeQuoteLocked derives the quote from the current dates and fires
// OnQuote. Caller holds s.mu.
func (s *Session) recomputeQuoteLocked() {
	if s.listing == nil {
		return
	}
	s.quote = booking.Price(s.calendar, s.listing.Rates(), s.checkIn, s.checkOut)
	if s.OnQuote != nil {
		s.OnQuote(s.quote)
	}
}

// EnterDetails validates the guest's contact details against the listing
// limits. All violations come back at once, field-keyed.
func (s *Session) EnterDetails(details GuestDetails) booking.FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDatesSelected && s.state != StateDetailsEntered {
		return booking.FieldErrors{"non_field_errors": {"select dates first"}}
	}

	req := booking.Request{
		CheckIn:       s.checkIn,
		CheckOut:      s.checkOut,
		Adults:        details.Adults,
		Children:      details.Children,
		FirstName:     details.FirstName,
		LastName:      details.LastName,
		Email:         details.Email,
		PhoneNumber:   details.PhoneNumber,
		TermsAccepted: details.TermsAccepted,
	}
	if errs := booking.Validate(req, s.listing.Limits()); errs != nil {
		return errs
	}

	s.details = details
	s.state = StateDetailsEntered
	return nil
}

// Submit sends the booking. On success the session is submitted and done
// for this attempt; on failure it returns to the details state so the
// guest can correct and retry. A 4xx *APIError carries the server's
// field-keyed body verbatim.
func (s *Session) Submit() error {
	s.mu.Lock()
	if s.state != StateDetailsEntered {
		s.mu.Unlock()
		return ErrBadTransition
	}
	s.state = StateSubmitting
	input := BookingInput{
		Listing:       s.listingID,
		FirstName:     s.details.FirstName,
		LastName:      s.details.LastName,
		Email:         s.details.Email,
		PhoneNumber:   s.details.PhoneNumber,
		CheckIn:       s.checkIn.Format(dateLayout),
		CheckOut:      s.checkOut.Format(dateLayout),
		Adults:        s.details.Adults,
		Children:      s.details.Children,
		Message:       s.details.Message,
		Language:      s.details.Language,
		TermsAccepted: s.details.TermsAccepted,
	}
	s.mu.Unlock()

	err := s.client.CreateBooking(s.ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateDetailsEntered
		return err
	}
	s.state = StateSubmitted
	return nil
}

// Close cancels any outstanding requests. The session is unusable after.
func (s *Session) Close() {
	s.cancel()
}
