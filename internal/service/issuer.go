package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/forsa/checkin-server-go/internal/audit"
	"github.com/forsa/checkin-server-go/internal/database"
	apperrors "github.com/forsa/checkin-server-go/internal/errors"
	"github.com/forsa/checkin-server-go/internal/repository"
	"github.com/forsa/checkin-server-go/internal/util"
)

const maxReserveAttempts = 10

// CheckInCodeService issues redeemable codes, at most one per eligible owner.
type CheckInCodeService struct {
	tx          database.TxRunner
	profileRepo repository.ProfileRepository
	codeRepo    repository.CheckInCodeRepository
}

func NewCheckInCodeService(
	tx database.TxRunner,
	profileRepo repository.ProfileRepository,
	codeRepo repository.CheckInCodeRepository,
) *CheckInCodeService {
	return &CheckInCodeService{
		tx:          tx,
		profileRepo: profileRepo,
		codeRepo:    codeRepo,
	}
}

// EnsureCode returns the owner's check-in code, issuing one on first request.
// Owners whose role cannot hold a code get an empty string without error.
// Repeated calls for the same owner always return the same code.
func (s *CheckInCodeService) EnsureCode(ctx context.Context, ownerID string) (string, error) {
	profile, err := s.profileRepo.FindByID(ctx, ownerID)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if profile == nil {
		return "", apperrors.NotFound("Profile")
	}
	if !profile.Role.IsEligibleOwner() {
		return "", nil
	}
	if profile.CheckInCode != nil {
		return *profile.CheckInCode, nil
	}

	var code string
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.profileRepo.FindByIDForUpdate(ctx, tx, ownerID)
		if err != nil {
			return apperrors.Database(err)
		}
		if locked == nil {
			return apperrors.NotFound("Profile")
		}
		// A concurrent call may have won the race while we waited for the
		// lock; return its code instead of issuing a second one.
		if locked.CheckInCode != nil {
			code = *locked.CheckInCode
			return nil
		}

		reserved := false
		for attempts := 0; attempts < maxReserveAttempts; attempts++ {
			candidate := GenerateCheckInCode()
			ok, err := s.codeRepo.Reserve(ctx, tx, candidate, ownerID)
			if err != nil {
				return apperrors.Database(err)
			}
			if ok {
				code = candidate
				reserved = true
				break
			}
			log.Warn().
				Str("ownerId", ownerID).
				Int("attempt", attempts+1).
				Msg("check-in code collision, retrying")
		}
		if !reserved {
			return apperrors.IssuanceExhausted(maxReserveAttempts)
		}

		if err := s.profileRepo.SetCheckInCode(ctx, tx, ownerID, code, time.Now()); err != nil {
			return apperrors.Database(err)
		}

		log.Info().
			Str("ownerId", ownerID).
			Str("code", util.MaskCode(code)).
			Msg("check-in code issued")
		audit.Log(ctx, audit.Event{
			Type:    audit.EventCodeIssued,
			OwnerID: ownerID,
		})
		return nil
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeIssuanceExhausted {
			log.Error().
				Str("ownerId", ownerID).
				Int("attempts", maxReserveAttempts).
				Msg("check-in code issuance exhausted")
			audit.Log(ctx, audit.Event{
				Type:    audit.EventIssuanceExhausted,
				OwnerID: ownerID,
			})
		}
		return "", err
	}

	return code, nil
}

// GetCode returns the owner's existing code without issuing one.
func (s *CheckInCodeService) GetCode(ctx context.Context, ownerID string) (string, error) {
	profile, err := s.profileRepo.FindByID(ctx, ownerID)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if profile == nil {
		return "", apperrors.NotFound("Profile")
	}
	if profile.CheckInCode == nil {
		return "", nil
	}
	return *profile.CheckInCode, nil
}
