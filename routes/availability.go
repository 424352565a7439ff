package routes

import (
	"time"

	"acropolis-estates-server/booking"
	"acropolis-estates-server/models"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/kataras/iris/v12"
)

const dateLayout = "2006-01-02"

// resolveNightlyRate picks the rate for one night: a date override beats an
// in-season price beats the listing base price. Seasons are half-open
// [start, end).
func resolveNightlyRate(listing *models.Listing, overrides []models.PriceOverride, seasons []models.SeasonalPrice, date time.Time) float64 {
	d := booking.DateOnly(date)
	for _, o := range overrides {
		if booking.DateOnly(o.Date).Equal(d) {
			return o.Price
		}
	}
	for _, s := range seasons {
		start := booking.DateOnly(s.StartDate)
		end := booking.DateOnly(s.EndDate)
		if !d.Before(start) && d.Before(end) {
			return s.Price
		}
	}
	return listing.Price
}

// buildDays assembles the day-by-day availability window [start, end) for a
// listing. A day is available unless one of its nights is already booked.
func buildDays(listing *models.Listing, overrides []models.PriceOverride, seasons []models.SeasonalPrice, bookedDates map[string]bool, start, end time.Time) []booking.Day {
	var days []booking.Day
	for d := booking.DateOnly(start); d.Before(booking.DateOnly(end)); d = d.AddDate(0, 0, 1) {
		days = append(days, booking.Day{
			Date:      d,
			Available: !bookedDates[d.Format(dateLayout)],
			Price:     resolveNightlyRate(listing, overrides, seasons, d),
		})
	}
	return days
}

// nightsToRanges merges sorted booked nights back into contiguous
// {check_in, check_out} ranges, checkout exclusive.
func nightsToRanges(dates []time.Time) []booking.Range {
	var ranges []booking.Range
	var start, last time.Time
	for _, raw := range dates {
		d := booking.DateOnly(raw)
		if start.IsZero() {
			start, last = d, d
			continue
		}
		if d.Equal(last.AddDate(0, 0, 1)) {
			last = d
			continue
		}
		ranges = append(ranges, booking.Range{CheckIn: start, CheckOut: last.AddDate(0, 0, 1)})
		start, last = d, d
	}
	if !start.IsZero() {
		ranges = append(ranges, booking.Range{CheckIn: start, CheckOut: last.AddDate(0, 0, 1)})
	}
	return ranges
}

type availabilityDayOut struct {
	Date      string  `json:"date"`
	Available bool    `json:"available"`
	Price     float64 `json:"price"`
}

// GetListingAvailability serves
// GET /short-term-listings/{id}/availability/?start=YYYY-MM-DD&end=YYYY-MM-DD
// with one record per day of the half-open window.
func GetListingAvailability(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}

	start, err := time.Parse(dateLayout, ctx.URLParam("start"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid start date", ctx)
		return
	}
	end, err := time.Parse(dateLayout, ctx.URLParam("end"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid end date", ctx)
		return
	}
	if !end.After(start) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "end must be after start", ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var overrides []models.PriceOverride
	storage.DB.Where("listing_id = ? AND date >= ? AND date < ?", id, start, end).Find(&overrides)

	var seasons []models.SeasonalPrice
	storage.DB.Where("listing_id = ? AND start_date < ? AND end_date > ?", id, end, start).Find(&seasons)

	var nights []models.BookingNight
	storage.DB.Where("listing_id = ? AND date >= ? AND date < ?", id, start, end).Find(&nights)

	booked := make(map[string]bool, len(nights))
	for _, n := range nights {
		booked[booking.DateOnly(n.Date).Format(dateLayout)] = true
	}

	days := buildDays(&listing, overrides, seasons, booked, start, end)
	out := make([]availabilityDayOut, 0, len(days))
	for _, d := range days {
		out = append(out, availabilityDayOut{
			Date:      d.Date.Format(dateLayout),
			Available: d.Available,
			Price:     d.Price,
		})
	}
	ctx.JSON(out)
}
