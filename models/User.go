package models

import "gorm.io/gorm"

// User is a staff account (agents and admins). Guests book without an
// account; a booking only carries an optional user id when a logged-in
// agent files it on a guest's behalf.
type User struct {
	gorm.Model
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-"`
	Role      string `json:"role" gorm:"type:varchar(20);default:agent;index"` // agent, admin, super_admin
}
