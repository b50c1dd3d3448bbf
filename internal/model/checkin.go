package model

import (
	"time"
)

// CheckInCode is a claim binding a code string to exactly one owner.
// Rows are never updated, reassigned or deleted.
type CheckInCode struct {
	Code     string    `db:"code" json:"code"`
	OwnerID  string    `db:"owner_id" json:"ownerId"`
	IssuedAt time.Time `db:"issued_at" json:"issuedAt"`
}
