package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/forsa/checkin-server-go/internal/model"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Profile, error)
	// FindByIDForUpdate locks the profile row for the duration of tx so the
	// has-no-code check and the code assignment are atomic per owner.
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Profile, error)
	SetCheckInCode(ctx context.Context, tx *sqlx.Tx, id, code string, issuedAt time.Time) error
}

type profileRepo struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p, `
		SELECT * FROM profiles WHERE id = $1
	`, id)
	return HandleNotFound(&p, err)
}

func (r *profileRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p, `
		SELECT * FROM profiles WHERE token_hash = $1
	`, tokenHash)
	return HandleNotFound(&p, err)
}

func (r *profileRepo) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Profile, error) {
	var p model.Profile
	err := tx.GetContext(ctx, &p, `
		SELECT * FROM profiles WHERE id = $1 FOR UPDATE
	`, id)
	return HandleNotFound(&p, err)
}

func (r *profileRepo) SetCheckInCode(ctx context.Context, tx *sqlx.Tx, id, code string, issuedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE profiles SET
			check_in_code = $2,
			check_in_code_created_at = $3,
			updated_at = NOW()
		WHERE id = $1
	`, id, code, issuedAt)
	return err
}
