package repository

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/forsa/checkin-server-go/internal/model"
)

type AttendanceRepository interface {
	Create(ctx context.Context, params model.CreateAttendanceParams) (*model.AttendanceRecord, error)
	// FindByOwnerAndVenue returns every record for the pair; the cooldown
	// guard filters by time in memory rather than relying on a composite
	// range index.
	FindByOwnerAndVenue(ctx context.Context, ownerID, venueID string) ([]model.AttendanceRecord, error)
	List(ctx context.Context, filter model.AttendanceFilter) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, params model.CreateAttendanceParams) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.GetContext(ctx, &rec, `
		INSERT INTO attendance_records (
			id, owner_id, owner_role, redeemed_code, venue_id, venue_role,
			recorded_at, recorded_by, meta, owner_display_name, venue_display_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, $8, $9, $10)
		RETURNING *
	`, params.ID, params.OwnerID, params.OwnerRole, params.RedeemedCode,
		params.VenueID, params.VenueRole, params.RecordedBy, params.Meta,
		params.OwnerDisplayName, params.VenueDisplayName)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) FindByOwnerAndVenue(ctx context.Context, ownerID, venueID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM attendance_records
		WHERE owner_id = $1 AND venue_id = $2
		ORDER BY recorded_at DESC
	`, ownerID, venueID)
	return records, err
}

func (r *attendanceRepo) List(ctx context.Context, filter model.AttendanceFilter) ([]model.AttendanceRecord, error) {
	query := `SELECT * FROM attendance_records WHERE 1=1`
	args := []interface{}{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += ` AND owner_id = $` + strconv.Itoa(len(args))
	}
	if filter.VenueID != nil {
		args = append(args, *filter.VenueID)
		query += ` AND venue_id = $` + strconv.Itoa(len(args))
	}
	if filter.TodayOnly {
		query += ` AND recorded_at >= date_trunc('day', NOW())`
	}
	query += ` ORDER BY recorded_at DESC`

	var records []model.AttendanceRecord
	err := r.db.SelectContext(ctx, &records, query, args...)
	return records, err
}
