package routes

import (
	"encoding/json"
	"time"

	"acropolis-estates-server/booking"
	"acropolis-estates-server/models"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// GetListings serves the public catalogue: approved listings only.
func GetListings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Listing{}).Where("approved = ?", true)
	if municipality := ctx.URLParam("municipality"); municipality != "" {
		query = query.Where("municipality = ?", municipality)
	}

	var total int64
	query.Count(&total)

	var listings []models.Listing
	if err := query.Preload("Images").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&listings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, listings, page, perPage, total)
}

// GetListing serves a single approved listing with its images and rate
// configuration.
func GetListing(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.Preload("Images").
		Preload("PriceOverrides").
		Preload("SeasonalPrices").
		First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if listing.Approved == nil || !*listing.Approved {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(listing)
}

type ListingInput struct {
	OwnerID         *uint   `json:"listing_owner"`
	Title           string  `json:"title" validate:"required"`
	TitleGr         string  `json:"title_gr"`
	Description     string  `json:"description"`
	DescriptionGr   string  `json:"description_gr"`
	AddressNumber   int     `json:"address_number"`
	AddressStreet   string  `json:"address_street"`
	AddressStreetGr string  `json:"address_street_gr"`
	Municipality    string  `json:"municipality"`
	Postcode        string  `json:"postcode"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`

	FloorArea   int `json:"floor_area"`
	Bedrooms    int `json:"bedrooms"`
	Floor       int `json:"floor"`
	Kitchens    int `json:"kitchens"`
	Bathrooms   int `json:"bathrooms"`
	WC          int `json:"wc"`
	LivingRooms int `json:"living_rooms"`

	MaxGuests   int `json:"max_guests" validate:"required,gt=0"`
	MaxAdults   int `json:"max_adults" validate:"required,gt=0"`
	MaxChildren int `json:"max_children" validate:"gte=0"`

	Price    float64 `json:"price" validate:"required,gt=0"`
	Currency string  `json:"currency"`

	VATRate                  float64 `json:"vat_rate" validate:"gte=0,lte=100"`
	MunicipalityTaxRate      float64 `json:"municipality_tax_rate" validate:"gte=0,lte=100"`
	ClimateCrisisFeePerNight float64 `json:"climate_crisis_fee_per_night" validate:"gte=0"`
	CleaningFee              float64 `json:"cleaning_fee" validate:"gte=0"`
	ServiceFeeRate           float64 `json:"service_fee" validate:"gte=0,lte=100"`

	Amenities []string `json:"amenities"`
}

func (in *ListingInput) apply(l *models.Listing) error {
	l.OwnerID = in.OwnerID
	l.Title = in.Title
	l.TitleGr = in.TitleGr
	l.Description = in.Description
	l.DescriptionGr = in.DescriptionGr
	l.AddressNumber = in.AddressNumber
	l.AddressStreet = in.AddressStreet
	l.AddressStreetGr = in.AddressStreetGr
	l.Municipality = in.Municipality
	l.Postcode = in.Postcode
	l.Latitude = in.Latitude
	l.Longitude = in.Longitude
	l.FloorArea = in.FloorArea
	l.Bedrooms = in.Bedrooms
	l.Floor = in.Floor
	l.Kitchens = in.Kitchens
	l.Bathrooms = in.Bathrooms
	l.WC = in.WC
	l.LivingRooms = in.LivingRooms
	l.MaxGuests = in.MaxGuests
	l.MaxAdults = in.MaxAdults
	l.MaxChildren = in.MaxChildren
	l.Price = in.Price
	if in.Currency != "" {
		l.Currency = in.Currency
	}
	l.VATRate = in.VATRate
	l.MunicipalityTaxRate = in.MunicipalityTaxRate
	l.ClimateCrisisFeePerNight = in.ClimateCrisisFeePerNight
	l.CleaningFee = in.CleaningFee
	l.ServiceFeeRate = in.ServiceFeeRate

	amenities, err := json.Marshal(in.Amenities)
	if err != nil {
		return err
	}
	l.Amenities = datatypes.JSON(amenities)
	return nil
}

// AdminListListings lists every listing, approved or not, with optional
// ?approved= and ?owner= filters.
func AdminListListings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Listing{})
	if approved := ctx.URLParam("approved"); approved != "" {
		query = query.Where("approved = ?", approved == "true")
	}
	if owner := ctx.URLParam("owner"); owner != "" {
		query = query.Where("owner_id = ?", owner)
	}

	var total int64
	query.Count(&total)

	var listings []models.Listing
	if err := query.Preload("Images").Preload("Owner").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&listings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, listings, page, perPage, total)
}

// AdminCreateListing creates a listing owned by the calling agent.
// New listings start unapproved and stay off the public catalogue until a
// super admin approves them.
func AdminCreateListing(ctx iris.Context) {
	var input ListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.MaxGuests < input.MaxAdults+input.MaxChildren {
		utils.FieldErrorsJSON(ctx, iris.StatusBadRequest, map[string][]string{
			"max_guests": {"max_guests must cover max_adults plus max_children"},
		})
		return
	}

	var listing models.Listing
	if err := input.apply(&listing); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	token := utils.AccessTokenFromContext(ctx)
	if token != nil {
		listing.AgentID = token.ID
	}

	if err := storage.DB.Create(&listing).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to create listing", ctx)
		return
	}

	utils.Audit(ctx, "listing.create", "listing", listing.ID, nil, listing)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(listing)
}

// AdminGetListing returns a listing regardless of approval state.
func AdminGetListing(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}
	var listing models.Listing
	if err := storage.DB.Preload("Images").
		Preload("PriceOverrides").
		Preload("SeasonalPrices").
		Preload("Owner").
		First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(listing)
}

// AdminUpdateListing replaces the editable fields of a listing.
func AdminUpdateListing(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}

	var input ListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.MaxGuests < input.MaxAdults+input.MaxChildren {
		utils.FieldErrorsJSON(ctx, iris.StatusBadRequest, map[string][]string{
			"max_guests": {"max_guests must cover max_adults plus max_children"},
		})
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := listing
	if err := input.apply(&listing); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := storage.DB.Save(&listing).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to update listing", ctx)
		return
	}

	utils.Audit(ctx, "listing.update", "listing", listing.ID, before, listing)
	ctx.JSON(listing)
}

// AdminDeleteListing removes a listing and everything hanging off it.
func AdminDeleteListing(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}
	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	storage.DB.Where("listing_id = ?", id).Delete(&models.ListingImage{})
	storage.DB.Where("listing_id = ?", id).Delete(&models.PriceOverride{})
	storage.DB.Where("listing_id = ?", id).Delete(&models.SeasonalPrice{})
	if err := storage.DB.Delete(&listing).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to delete listing", ctx)
		return
	}

	utils.Audit(ctx, "listing.delete", "listing", listing.ID, listing, nil)
	ctx.StatusCode(iris.StatusNoContent)
}

type ApproveListingInput struct {
	Approved *bool `json:"approved" validate:"required"`
}

// AdminApproveListing flips the public visibility switch. Super admin only.
func AdminApproveListing(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}

	var input ApproveListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := listing
	if err := storage.DB.Model(&listing).Update("approved", *input.Approved).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to update listing", ctx)
		return
	}
	listing.Approved = input.Approved

	utils.Audit(ctx, "listing.approve", "listing", listing.ID, before, listing)
	ctx.JSON(listing)
}

type PriceOverrideInput struct {
	Date  string  `json:"date" validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

// AdminUpsertPriceOverride pins the nightly rate for one date. A second
// call for the same date replaces the earlier price.
func AdminUpsertPriceOverride(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}

	var input PriceOverrideInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		utils.FieldErrorsJSON(ctx, iris.StatusBadRequest, map[string][]string{
			"date": {"invalid_date"},
		})
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	date = booking.DateOnly(date)
	var override models.PriceOverride
	result := storage.DB.Where("listing_id = ? AND date = ?", listing.ID, date).First(&override)
	if result.Error != nil {
		override = models.PriceOverride{ListingID: listing.ID, Date: date, Price: input.Price}
		if err := storage.DB.Create(&override).Error; err != nil {
			utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to save price override", ctx)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
	} else {
		if err := storage.DB.Model(&override).Update("price", input.Price).Error; err != nil {
			utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to save price override", ctx)
			return
		}
		override.Price = input.Price
	}

	utils.Audit(ctx, "listing.price_override", "listing", listing.ID, nil, override)
	ctx.JSON(override)
}

// AdminDeletePriceOverride removes the override for one date, falling back
// to the seasonal or base rate.
func AdminDeletePriceOverride(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}
	dateParam := ctx.URLParam("date")
	date, err := time.Parse(dateLayout, dateParam)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Missing or invalid 'date' parameter", ctx)
		return
	}

	result := storage.DB.Where("listing_id = ? AND date = ?", id, booking.DateOnly(date)).Delete(&models.PriceOverride{})
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	utils.Audit(ctx, "listing.price_override.delete", "listing", id, dateParam, nil)
	ctx.StatusCode(iris.StatusNoContent)
}

type SeasonalPriceInput struct {
	StartDate string  `json:"start_date" validate:"required"`
	EndDate   string  `json:"end_date" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
}

// AdminCreateSeasonalPrice adds a seasonal rate covering [start, end).
// Overlapping seasons are rejected so every night resolves one way.
func AdminCreateSeasonalPrice(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}

	var input SeasonalPriceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	start, err1 := time.Parse(dateLayout, input.StartDate)
	end, err2 := time.Parse(dateLayout, input.EndDate)
	if err1 != nil || err2 != nil || !start.Before(end) {
		utils.FieldErrorsJSON(ctx, iris.StatusBadRequest, map[string][]string{
			"start_date": {"start_date and end_date must be valid dates with start before end"},
		})
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var overlapping int64
	storage.DB.Model(&models.SeasonalPrice{}).
		Where("listing_id = ? AND start_date < ? AND end_date > ?", listing.ID, end, start).
		Count(&overlapping)
	if overlapping > 0 {
		utils.FieldErrorsJSON(ctx, iris.StatusBadRequest, map[string][]string{
			"non_field_errors": {"This period overlaps an existing seasonal price."},
		})
		return
	}

	season := models.SeasonalPrice{
		ListingID: listing.ID,
		StartDate: booking.DateOnly(start),
		EndDate:   booking.DateOnly(end),
		Price:     input.Price,
	}
	if err := storage.DB.Create(&season).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to save seasonal price", ctx)
		return
	}

	utils.Audit(ctx, "listing.seasonal_price.create", "listing", listing.ID, nil, season)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(season)
}

// AdminDeleteSeasonalPrice removes one seasonal rate by id.
func AdminDeleteSeasonalPrice(ctx iris.Context) {
	seasonID, err := ctx.Params().GetUint("seasonID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid seasonal price id", ctx)
		return
	}

	var season models.SeasonalPrice
	if err := storage.DB.First(&season, seasonID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if err := storage.DB.Delete(&season).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to delete seasonal price", ctx)
		return
	}

	utils.Audit(ctx, "listing.seasonal_price.delete", "listing", season.ListingID, season, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
