package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/forsa/checkin-server-go/internal/model"
)

// CheckInCodeRepository is the reservation store: a claim table keyed by the
// code string itself. The primary key makes Reserve a per-key compare-and-set.
type CheckInCodeRepository interface {
	// Reserve claims code for ownerID. It returns false without modifying
	// state when the code is already taken.
	Reserve(ctx context.Context, tx *sqlx.Tx, code, ownerID string) (bool, error)
	FindByCode(ctx context.Context, code string) (*model.CheckInCode, error)
	FindByOwnerID(ctx context.Context, ownerID string) (*model.CheckInCode, error)
}

type checkInCodeRepo struct {
	db *sqlx.DB
}

func NewCheckInCodeRepository(db *sqlx.DB) CheckInCodeRepository {
	return &checkInCodeRepo{db: db}
}

func (r *checkInCodeRepo) Reserve(ctx context.Context, tx *sqlx.Tx, code, ownerID string) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO check_in_codes (code, owner_id)
		VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING
	`, code, ownerID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *checkInCodeRepo) FindByCode(ctx context.Context, code string) (*model.CheckInCode, error) {
	var c model.CheckInCode
	err := r.db.GetContext(ctx, &c, `
		SELECT * FROM check_in_codes WHERE code = $1
	`, code)
	return HandleNotFound(&c, err)
}

func (r *checkInCodeRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.CheckInCode, error) {
	var c model.CheckInCode
	err := r.db.GetContext(ctx, &c, `
		SELECT * FROM check_in_codes WHERE owner_id = $1
	`, ownerID)
	return HandleNotFound(&c, err)
}
