package routes

import (
	"time"

	"acropolis-estates-server/models"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/kataras/iris/v12"
)

// validStatusTransitions is the booking lifecycle the office can drive.
// Guests only flip Confirmed via their token; status stays with the office.
var validStatusTransitions = map[string][]string{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusRejected, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCancelled, models.BookingStatusCompleted},
}

func statusTransitionAllowed(from, to string) bool {
	for _, s := range validStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AdminListBookings serves GET /api/admin/short-term-bookings/ with
// optional ?status= and ?listing= filters, newest first.
func AdminListBookings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Booking{})
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if listing := ctx.URLParam("listing"); listing != "" {
		query = query.Where("listing_id = ?", listing)
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Preload("Listing").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, bookings, page, perPage, total)
}

type UpdateBookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected cancelled completed"`
}

// AdminUpdateBookingStatus moves a booking through its lifecycle and emails
// the guest when the office confirms.
func AdminUpdateBookingStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid booking id", ctx)
		return
	}

	var input UpdateBookingStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var b models.Booking
	if err := storage.DB.Preload("Listing").First(&b, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if !statusTransitionAllowed(b.Status, input.Status) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request",
			"cannot change status from "+b.Status+" to "+input.Status, ctx)
		return
	}

	before := b
	updates := map[string]interface{}{"status": input.Status}
	if input.Status == models.BookingStatusConfirmed {
		updates["admin_confirmed"] = true
	}
	if err := storage.DB.Model(&b).Updates(updates).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to update booking", ctx)
		return
	}
	b.Status = input.Status

	// Rejected and cancelled stays release their nights.
	if input.Status == models.BookingStatusRejected || input.Status == models.BookingStatusCancelled {
		storage.DB.Where("booking_id = ?", b.ID).Delete(&models.BookingNight{})
	}

	if input.Status == models.BookingStatusConfirmed && b.Listing != nil {
		Mailer.SendBookingConfirmed(&b, b.Listing)
	}

	utils.Audit(ctx, "booking.status."+input.Status, "booking", b.ID, before, b)
	ctx.JSON(b)
}

type ApplyDiscountInput struct {
	Type   string  `json:"type" validate:"required,oneof=percentage fixed"`
	Value  float64 `json:"value" validate:"required,gt=0"`
	Reason string  `json:"reason"`
}

// AdminApplyDiscount discounts the subtotal and recomputes the stored
// totals. Taxes and fees that depend on the subtotal follow it down.
func AdminApplyDiscount(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid booking id", ctx)
		return
	}

	var input ApplyDiscountInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var b models.Booking
	if err := storage.DB.Preload("Listing").First(&b, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if b.Listing == nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	amount := input.Value
	if input.Type == "percentage" {
		if input.Value > 100 {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "percentage discount cannot exceed 100", ctx)
			return
		}
		amount = b.Subtotal * input.Value / 100
	}
	if amount > b.Subtotal {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "discount cannot exceed the subtotal", ctx)
		return
	}

	before := b
	discounted := b.Subtotal - amount
	rates := listingRates(b.Listing)

	b.HasDiscount = true
	b.DiscountType = input.Type
	b.DiscountValue = input.Value
	b.DiscountAmount = amount
	b.DiscountReason = input.Reason
	b.DiscountedSubtotal = discounted
	b.VAT = discounted * rates.VATRate
	b.MunicipalityTax = discounted * rates.MunicipalityTaxRate
	b.ServiceFee = discounted * rates.ServiceFeeRate
	b.TotalPrice = discounted + b.VAT + b.MunicipalityTax + b.ClimateCrisisFee + b.CleaningFee + b.ServiceFee

	if err := storage.DB.Save(&b).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to apply discount", ctx)
		return
	}

	utils.Audit(ctx, "booking.discount.apply", "booking", b.ID, before, b)
	ctx.JSON(b)
}

// AdminRemoveDiscount restores the undiscounted totals.
func AdminRemoveDiscount(ctx iris.Context) {
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
	if !b.HasDiscount {
		ctx.JSON(b)
		return
	}
	if b.Listing == nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	before := b
	rates := listingRates(b.Listing)

	b.HasDiscount = false
	b.DiscountType = ""
	b.DiscountValue = 0
	b.DiscountAmount = 0
	b.DiscountReason = ""
	b.DiscountedSubtotal = 0
	b.VAT = b.Subtotal * rates.VATRate
	b.MunicipalityTax = b.Subtotal * rates.MunicipalityTaxRate
	b.ServiceFee = b.Subtotal * rates.ServiceFeeRate
	b.TotalPrice = b.Subtotal + b.VAT + b.MunicipalityTax + b.ClimateCrisisFee + b.CleaningFee + b.ServiceFee

	if err := storage.DB.Save(&b).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to remove discount", ctx)
		return
	}

	utils.Audit(ctx, "booking.discount.remove", "booking", b.ID, before, b)
	ctx.JSON(b)
}

type bookingStatistics struct {
	TotalBookings     int64   `json:"total_bookings"`
	PendingBookings   int64   `json:"pending_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	TotalNights       int64   `json:"total_nights"`
	TotalRevenue      float64 `json:"total_revenue"`
	UpcomingCheckIns  int64   `json:"upcoming_check_ins"`
}

// AdminBookingStatistics aggregates headline numbers for the office
// dashboard. Revenue counts confirmed and completed stays only.
func AdminBookingStatistics(ctx iris.Context) {
	var stats bookingStatistics

	storage.DB.Model(&models.Booking{}).Count(&stats.TotalBookings)
	storage.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending).Count(&stats.PendingBookings)
	storage.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusConfirmed).Count(&stats.ConfirmedBookings)
	storage.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCompleted).Count(&stats.CompletedBookings)

	revenueStatuses := []string{models.BookingStatusConfirmed, models.BookingStatusCompleted}
	storage.DB.Model(&models.Booking{}).
		Where("status IN ?", revenueStatuses).
		Select("COALESCE(SUM(total_nights), 0)").
		Scan(&stats.TotalNights)
	storage.DB.Model(&models.Booking{}).
		Where("status IN ?", revenueStatuses).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&stats.TotalRevenue)

	storage.DB.Model(&models.Booking{}).
		Where("status = ? AND check_in >= ?", models.BookingStatusConfirmed, time.Now()).
		Count(&stats.UpcomingCheckIns)

	ctx.JSON(stats)
}

// AdminActivity returns the most recent audit log entries.
func AdminActivity(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var entries []models.AuditLog
	if err := storage.DB.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(entries)
}
