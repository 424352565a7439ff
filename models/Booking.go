package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses. A booking starts pending, the guest confirms by token,
// the office confirms or rejects, and past stays get completed.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	gorm.Model
	ListingID uint  `json:"listing" gorm:"not null;index"`
	UserID    *uint `json:"user" gorm:"index"`

	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`

	CheckIn  time.Time `json:"check_in" gorm:"not null;index"`
	CheckOut time.Time `json:"check_out" gorm:"not null"`
	Adults   int       `json:"adults" gorm:"default:1"`
	Children int       `json:"children" gorm:"default:0"`
	Message  string    `json:"message" gorm:"type:text"`

	// en or el; picks the language of the guest emails.
	Language string `json:"language" gorm:"type:varchar(2);default:'en'"`

	Token           string `json:"token" gorm:"type:varchar(36);uniqueIndex"`
	ReferenceNumber string `json:"reference_number" gorm:"type:varchar(16);uniqueIndex"`

	// Price breakdown frozen at creation time, in listing currency.
	TotalNights      int     `json:"total_nights"`
	Subtotal         float64 `json:"subtotal"`
	VAT              float64 `json:"vat"`
	MunicipalityTax  float64 `json:"municipality_tax"`
	ClimateCrisisFee float64 `json:"climate_crisis_fee"`
	CleaningFee      float64 `json:"cleaning_fee"`
	ServiceFee       float64 `json:"service_fee"`
	TotalPrice       float64 `json:"total_price"`

	HasDiscount        bool    `json:"has_discount" gorm:"default:false"`
	DiscountType       string  `json:"discount_type" gorm:"type:varchar(20)"` // percentage, fixed
	DiscountValue      float64 `json:"discount_value"`
	DiscountAmount     float64 `json:"discount_amount"`
	DiscountReason     string  `json:"discount_reason"`
	DiscountedSubtotal float64 `json:"discounted_subtotal"`

	Status         string `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Confirmed      bool   `json:"confirmed" gorm:"default:false"`
	AdminConfirmed bool   `json:"admin_confirmed" gorm:"default:false"`

	Listing *Listing       `json:"listing_detail,omitempty" gorm:"foreignKey:ListingID"`
	Nights  []BookingNight `json:"nights,omitempty" gorm:"foreignKey:BookingID"`
}

// BookingNight is one occupied night of a booking. The unavailable-dates
// endpoint is assembled from these rows, which keeps it correct when a
// booking is shortened or cancelled (nights go with the booking).
type BookingNight struct {
	gorm.Model
	BookingID uint      `json:"booking" gorm:"not null;index"`
	ListingID uint      `json:"listing" gorm:"not null;index"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	Price     float64   `json:"price"`
}
