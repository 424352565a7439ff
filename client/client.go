// Package client consumes the public short-term rental API: listing
// metadata, the availability calendar, booked ranges, and booking
// submission. Session drives a full booking attempt on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"acropolis-estates-server/booking"
)

const dateLayout = "2006-01-02"

// Listing is the subset of listing metadata the booking flow needs.
type Listing struct {
	ID          uint   `json:"ID"`
	Title       string `json:"title"`
	TitleGr     string `json:"title_gr"`
	Currency    string `json:"currency"`
	MaxGuests   int    `json:"max_guests"`
	MaxAdults   int    `json:"max_adults"`
	MaxChildren int    `json:"max_children"`

	Price                    float64 `json:"price"`
	VATRate                  float64 `json:"vat_rate"`
	MunicipalityTaxRate      float64 `json:"municipality_tax_rate"`
	ClimateCrisisFeePerNight float64 `json:"climate_crisis_fee_per_night"`
	CleaningFee              float64 `json:"cleaning_fee"`
	ServiceFeeRate           float64 `json:"service_fee"`
}

// Rates converts the listing's percentage rates into pricing fractions.
func (l *Listing) Rates() booking.Rates {
	return booking.Rates{
		VATRate:             l.VATRate / 100,
		MunicipalityTaxRate: l.MunicipalityTaxRate / 100,
		ServiceFeeRate:      l.ServiceFeeRate / 100,
		ClimateFeePerNight:  l.ClimateCrisisFeePerNight,
		CleaningFee:         l.CleaningFee,
	}
}

// Limits returns the listing's guest capacity for request validation.
func (l *Listing) Limits() booking.GuestLimits {
	return booking.GuestLimits{
		MaxGuests:   l.MaxGuests,
		MaxAdults:   l.MaxAdults,
		MaxChildren: l.MaxChildren,
	}
}

// BookingInput is the booking submission payload.
type BookingInput struct {
	Listing       uint   `json:"listing"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Message       string `json:"message,omitempty"`
	Language      string `json:"language,omitempty"`
	TermsAccepted bool   `json:"terms_accepted"`
	User          *uint  `json:"user,omitempty"`
}

// APIError is a 4xx response whose field-keyed body is surfaced verbatim.
type APIError struct {
	StatusCode int
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %d field(s) rejected", e.StatusCode, len(e.Fields))
}

// Client talks to one API deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the given base URL, e.g. "https://api.example.com".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient keeps the caller's transport, for tests and custom TLS.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetListing fetches listing metadata.
func (c *Client) GetListing(ctx context.Context, id uint) (*Listing, error) {
	var listing Listing
	if err := c.getJSON(ctx, fmt.Sprintf("/short-term-listings/%d", id), nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

type dayWire struct {
	Date      string  `json:"date"`
	Available bool    `json:"available"`
	Price     float64 `json:"price"`
}

// GetAvailability fetches the day records for [start, end), end exclusive.
func (c *Client) GetAvailability(ctx context.Context, listingID uint, start, end time.Time) ([]booking.Day, error) {
	query := url.Values{}
	query.Set("start", start.Format(dateLayout))
	query.Set("end", end.Format(dateLayout))

	var wire []dayWire
	path := fmt.Sprintf("/short-term-listings/%d/availability", listingID)
	if err := c.getJSON(ctx, path, query, &wire); err != nil {
		return nil, err
	}

	days := make([]booking.Day, 0, len(wire))
	for _, w := range wire {
		date, err := time.Parse(dateLayout, w.Date)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in availability response: %w", w.Date, err)
		}
		days = append(days, booking.Day{Date: date, Available: w.Available, Price: w.Price})
	}
	return days, nil
}

type rangeWire struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// GetUnavailableDates fetches the listing's booked ranges, checkout exclusive.
func (c *Client) GetUnavailableDates(ctx context.Context, listingID uint) ([]booking.Range, error) {
	query := url.Values{}
	query.Set("listing", fmt.Sprintf("%d", listingID))

	var wire []rangeWire
	if err := c.getJSON(ctx, "/short-term-bookings/unavailable-dates", query, &wire); err != nil {
		return nil, err
	}

	ranges := make([]booking.Range, 0, len(wire))
	for _, w := range wire {
		in, err := time.Parse(dateLayout, w.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("bad check_in %q: %w", w.CheckIn, err)
		}
		out, err := time.Parse(dateLayout, w.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("bad check_out %q: %w", w.CheckOut, err)
		}
		ranges = append(ranges, booking.Range{CheckIn: in, CheckOut: out})
	}
	return ranges, nil
}

// CreateBooking submits a booking. A 4xx with a field-keyed body comes back
// as *APIError with the body verbatim; anything else non-2xx is a generic
// error.
func (c *Client) CreateBooking(ctx context.Context, input BookingInput) error {
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/short-term-bookings/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		raw, _ := io.ReadAll(resp.Body)
		var fields map[string][]string
		if err := json.Unmarshal(raw, &fields); err == nil && len(fields) > 0 {
			return &APIError{StatusCode: resp.StatusCode, Fields: fields}
		}
	}
	return fmt.Errorf("booking submission failed with status %d", resp.StatusCode)
}
