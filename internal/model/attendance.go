package model

import (
	"encoding/json"
	"time"
)

// AttendanceRecord is one redemption event. Records are append-only; there is
// no update or delete path.
type AttendanceRecord struct {
	ID               string          `db:"id" json:"id"`
	OwnerID          string          `db:"owner_id" json:"ownerId"`
	OwnerRole        Role            `db:"owner_role" json:"ownerRole"`
	RedeemedCode     string          `db:"redeemed_code" json:"redeemedCode"`
	VenueID          string          `db:"venue_id" json:"venueId"`
	VenueRole        Role            `db:"venue_role" json:"venueRole"`
	RecordedAt       time.Time       `db:"recorded_at" json:"recordedAt"`
	RecordedBy       string          `db:"recorded_by" json:"recordedBy"`
	Meta             json.RawMessage `db:"meta" json:"meta,omitempty"`
	OwnerDisplayName *string         `db:"owner_display_name" json:"ownerDisplayName,omitempty"`
	VenueDisplayName *string         `db:"venue_display_name" json:"venueDisplayName,omitempty"`
}

// AttendanceMeta is the optional client-supplied annotation stored alongside a
// record. The scanned-at device time is auxiliary only and never used for
// ordering or cooldown decisions.
type AttendanceMeta struct {
	ScannedAt *time.Time `json:"scannedAt,omitempty"`
	Note      *string    `json:"note,omitempty"`
}

type CreateAttendanceParams struct {
	ID               string
	OwnerID          string
	OwnerRole        Role
	RedeemedCode     string
	VenueID          string
	VenueRole        Role
	RecordedBy       string
	Meta             json.RawMessage
	OwnerDisplayName *string
	VenueDisplayName *string
}

type AttendanceFilter struct {
	OwnerID   *string
	VenueID   *string
	TodayOnly bool
}
