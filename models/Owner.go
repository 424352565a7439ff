package models

import "gorm.io/gorm"

// Owner is the property owner the brokerage manages a listing for. Owners
// are back-office records; they never log in.
type Owner struct {
	gorm.Model
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email" gorm:"index"`
	PhoneNumber string    `json:"phone_number"`
	Notes       string    `json:"notes" gorm:"type:text"`
	Listings    []Listing `json:"listings,omitempty" gorm:"foreignKey:OwnerID"`
}
