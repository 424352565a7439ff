package routes

import (
	"fmt"
	"time"

	"acropolis-estates-server/booking"
	"acropolis-estates-server/models"
	"acropolis-estates-server/services"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// Mailer is set at startup; nil disables guest emails.
var Mailer *services.Mailer

type CreateBookingInput struct {
	Listing       uint   `json:"listing" validate:"required"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Message       string `json:"message"`
	Language      string `json:"language"`
	TermsAccepted bool   `json:"terms_accepted"`
	User          *uint  `json:"user"`
}

// CreateBooking handles POST /short-term-bookings/. The price is always
// recomputed server-side from the listing calendar; client-supplied totals
// are never trusted.
func CreateBooking(ctx iris.Context) {
	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, input.Listing).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Listing not found", ctx)
		return
	}
	if listing.Approved == nil || !*listing.Approved {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Listing not found", ctx)
		return
	}

	checkIn, checkOut, dateErrs := parseStayDates(input.CheckIn, input.CheckOut)

	req := booking.Request{
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Adults:        input.Adults,
		Children:      input.Children,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		PhoneNumber:   input.PhoneNumber,
		TermsAccepted: input.TermsAccepted,
	}
	limits := booking.GuestLimits{
		MaxGuests:   listing.MaxGuests,
		MaxAdults:   listing.MaxAdults,
		MaxChildren: listing.MaxChildren,
	}

	errs := booking.Validate(req, limits)
	if errs == nil {
		errs = booking.FieldErrors{}
	}
	for field, codes := range dateErrs {
		errs[field] = append(codes, errs[field]...)
	}
	if len(errs) > 0 {
		utils.AppMetrics.BookingsRejected.Inc()
		utils.FieldErrorsJSON(ctx, iris.StatusBadRequest, errs)
		return
	}

	// Reject stays overlapping an existing booking's occupied nights.
	var nights []models.BookingNight
	storage.DB.Where("listing_id = ?", listing.ID).Order("date ASC").Find(&nights)
	dates := make([]time.Time, 0, len(nights))
	for _, n := range nights {
		dates = append(dates, n.Date)
	}
	if booking.Overlaps(nightsToRanges(dates), checkIn, checkOut) {
		utils.AppMetrics.BookingsRejected.Inc()
		utils.FieldErrorsJSON(ctx, iris.StatusBadRequest, map[string][]string{
			"non_field_errors": {"These dates are already booked."},
		})
		return
	}

	quote := priceStay(&listing, checkIn, checkOut)

	language := input.Language
	if language != "el" {
		language = "en"
	}

	b := models.Booking{
		ListingID:        listing.ID,
		UserID:           input.User,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		CheckIn:          booking.DateOnly(checkIn),
		CheckOut:         booking.DateOnly(checkOut),
		Adults:           input.Adults,
		Children:         input.Children,
		Message:          input.Message,
		Language:         language,
		Token:            uuid.NewString(),
		TotalNights:      quote.Nights,
		Subtotal:         *quote.Subtotal,
		VAT:              *quote.VAT,
		MunicipalityTax:  *quote.MunicipalityTax,
		ClimateCrisisFee: *quote.ClimateCrisisFee,
		CleaningFee:      *quote.CleaningFee,
		ServiceFee:       *quote.ServiceFee,
		TotalPrice:       *quote.Total,
		Status:           models.BookingStatusPending,
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
		b.ReferenceNumber = fmt.Sprintf("AE-%06d", b.ID)
		if err := tx.Model(&b).Update("reference_number", b.ReferenceNumber).Error; err != nil {
			return err
		}
		for d := b.CheckIn; d.Before(b.CheckOut); d = d.AddDate(0, 0, 1) {
			night := models.BookingNight{
				BookingID: b.ID,
				ListingID: listing.ID,
				Date:      d,
				Price:     nightPrice(&listing, d),
			}
			if err := tx.Create(&night).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to create booking", ctx)
		return
	}

	utils.AppMetrics.BookingsCreated.Inc()
	Mailer.SendBookingRequest(&b, &listing)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(b)
}

// parseStayDates parses the YYYY-MM-DD stay dates, reporting unparseable
// values under the same field keys as the domain validation.
func parseStayDates(in, out string) (time.Time, time.Time, map[string][]string) {
	errs := map[string][]string{}
	var checkIn, checkOut time.Time
	var err error
	if in != "" {
		if checkIn, err = time.Parse(dateLayout, in); err != nil {
			errs["check_in"] = append(errs["check_in"], "invalid_date")
		}
	}
	if out != "" {
		if checkOut, err = time.Parse(dateLayout, out); err != nil {
			errs["check_out"] = append(errs["check_out"], "invalid_date")
		}
	}
	return checkIn, checkOut, errs
}

// priceStay builds the calendar for the stay window and prices it.
func priceStay(listing *models.Listing, checkIn, checkOut time.Time) booking.Quote {
	var overrides []models.PriceOverride
	storage.DB.Where("listing_id = ? AND date >= ? AND date < ?", listing.ID, checkIn, checkOut).Find(&overrides)

	var seasons []models.SeasonalPrice
	storage.DB.Where("listing_id = ? AND start_date < ? AND end_date > ?", listing.ID, checkOut, checkIn).Find(&seasons)

	days := buildDays(listing, overrides, seasons, nil, checkIn, checkOut)
	cal := booking.NewCalendar(days)
	return booking.Price(cal, listingRates(listing), checkIn, checkOut)
}

func nightPrice(listing *models.Listing, date time.Time) float64 {
	var overrides []models.PriceOverride
	storage.DB.Where("listing_id = ? AND date = ?", listing.ID, booking.DateOnly(date)).Find(&overrides)
	var seasons []models.SeasonalPrice
	storage.DB.Where("listing_id = ? AND start_date <= ? AND end_date > ?", listing.ID, date, date).Find(&seasons)
	return resolveNightlyRate(listing, overrides, seasons, date)
}

// listingRates converts the listing's stored percentages into the fractions
// the pricing code works with.
func listingRates(l *models.Listing) booking.Rates {
	return booking.Rates{
		VATRate:             l.VATRate / 100,
		MunicipalityTaxRate: l.MunicipalityTaxRate / 100,
		ServiceFeeRate:      l.ServiceFeeRate / 100,
		ClimateFeePerNight:  l.ClimateCrisisFeePerNight,
		CleaningFee:         l.CleaningFee,
	}
}

type bookingRangeOut struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// GetUnavailableDates serves
// GET /short-term-bookings/unavailable-dates/?listing={id}: booked nights
// merged into contiguous ranges, checkout exclusive.
func GetUnavailableDates(ctx iris.Context) {
	listingID := ctx.URLParam("listing")
	if listingID == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Missing 'listing' parameter", ctx)
		return
	}

	var nights []models.BookingNight
	if err := storage.DB.Where("listing_id = ?", listingID).Order("date ASC").Find(&nights).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to fetch booked nights", ctx)
		return
	}

	dates := make([]time.Time, 0, len(nights))
	for _, n := range nights {
		dates = append(dates, n.Date)
	}

	ranges := nightsToRanges(dates)
	out := make([]bookingRangeOut, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, bookingRangeOut{
			CheckIn:  r.CheckIn.Format(dateLayout),
			CheckOut: r.CheckOut.Format(dateLayout),
		})
	}
	ctx.JSON(out)
}

// GetBooking returns one booking by id.
func GetBooking(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid booking id", ctx)
		return
	}
	var b models.Booking
	if err := storage.DB.Preload("Listing").First(&b, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(b)
}

// ConfirmBooking lets the guest confirm via the token from their email.
func ConfirmBooking(ctx iris.Context) {
	token := ctx.Params().Get("token")

	var b models.Booking
	if err := storage.DB.Preload("Listing").Where("token = ?", token).First(&b).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if b.Confirmed {
		ctx.JSON(iris.Map{"status": b.Status, "confirmed": true})
		return
	}

	b.Confirmed = true
	if err := storage.DB.Model(&b).Update("confirmed", true).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to confirm booking", ctx)
		return
	}
	ctx.JSON(iris.Map{"status": b.Status, "confirmed": true})
}
