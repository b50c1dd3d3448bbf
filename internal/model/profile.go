package model

import (
	"time"
)

// Profile is the identity record this service reads from the surrounding
// application. Only the check-in code back-reference is ever written here.
type Profile struct {
	ID                   string     `db:"id" json:"id"`
	Role                 Role       `db:"role" json:"role"`
	DisplayName          *string    `db:"display_name" json:"displayName,omitempty"`
	TokenHash            *string    `db:"token_hash" json:"-"`
	CheckInCode          *string    `db:"check_in_code" json:"checkInCode,omitempty"`
	CheckInCodeCreatedAt *time.Time `db:"check_in_code_created_at" json:"checkInCodeCreatedAt,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}
