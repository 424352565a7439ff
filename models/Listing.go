package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing is a short-term rental property with its own rate and tax
// configuration. Tax and fee rates are stored as percentages (13.25 for
// 13.25%) the way the admin enters them; the pricing code converts them to
// fractions.
type Listing struct {
	gorm.Model
	AgentID         uint    `json:"agent_id" gorm:"index"`
	OwnerID         *uint   `json:"listing_owner" gorm:"index"`
	Title           string  `json:"title"`
	TitleGr         string  `json:"title_gr"`
	Description     string  `json:"description" gorm:"type:text"`
	DescriptionGr   string  `json:"description_gr" gorm:"type:text"`
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

	MaxGuests   int `json:"max_guests" gorm:"default:1"`
	MaxAdults   int `json:"max_adults" gorm:"default:1"`
	MaxChildren int `json:"max_children" gorm:"default:0"`

	// Base nightly rate; PriceOverride and SeasonalPrice take precedence
	// per night.
	Price    float64 `json:"price"`
	Currency string  `json:"currency" gorm:"default:'EUR'"`

	VATRate                  float64 `json:"vat_rate"`
	MunicipalityTaxRate      float64 `json:"municipality_tax_rate"`
	ClimateCrisisFeePerNight float64 `json:"climate_crisis_fee_per_night"`
	CleaningFee              float64 `json:"cleaning_fee"`
	ServiceFeeRate           float64 `json:"service_fee"`

	Amenities datatypes.JSON `json:"amenities" gorm:"type:jsonb"`
	Approved  *bool          `json:"approved" gorm:"default:false;index"`

	Images         []ListingImage  `json:"images" gorm:"foreignKey:ListingID"`
	PriceOverrides []PriceOverride `json:"price_overrides" gorm:"foreignKey:ListingID"`
	SeasonalPrices []SeasonalPrice `json:"seasonal_prices" gorm:"foreignKey:ListingID"`
	Bookings       []Booking       `json:"bookings,omitempty" gorm:"foreignKey:ListingID"`
	Agent          *User           `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
	Owner          *Owner          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

type ListingImage struct {
	gorm.Model
	ListingID   uint   `json:"listing" gorm:"not null;index"`
	URL         string `json:"url"`
	IsFirst     bool   `json:"is_first" gorm:"default:false"`
	Order       int    `json:"order" gorm:"default:0"`
	Description string `json:"description"`
}

// PriceOverride pins the nightly rate of a single date, beating any seasonal
// price and the listing base price.
type PriceOverride struct {
	gorm.Model
	ListingID uint      `json:"listing" gorm:"not null;index"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	Price     float64   `json:"price" gorm:"not null"`
}

// SeasonalPrice sets the nightly rate for the half-open date span
// [StartDate, EndDate).
type SeasonalPrice struct {
	gorm.Model
	ListingID uint      `json:"listing" gorm:"not null;index"`
	StartDate time.Time `json:"start_date" gorm:"not null;index"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null"`
}
