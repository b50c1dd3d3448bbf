package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/forsa/checkin-server-go/internal/audit"
	apperrors "github.com/forsa/checkin-server-go/internal/errors"
	"github.com/forsa/checkin-server-go/internal/model"
	"github.com/forsa/checkin-server-go/internal/repository"
	"github.com/forsa/checkin-server-go/internal/util"
)

// RedemptionService resolves presented codes and records attendance.
type RedemptionService struct {
	profileRepo    repository.ProfileRepository
	codeRepo       repository.CheckInCodeRepository
	attendanceRepo repository.AttendanceRepository
	actorCache     *ActorCache
	cooldownWindow time.Duration
}

func NewRedemptionService(
	profileRepo repository.ProfileRepository,
	codeRepo repository.CheckInCodeRepository,
	attendanceRepo repository.AttendanceRepository,
	actorCache *ActorCache,
	cooldownWindow time.Duration,
) *RedemptionService {
	return &RedemptionService{
		profileRepo:    profileRepo,
		codeRepo:       codeRepo,
		attendanceRepo: attendanceRepo,
		actorCache:     actorCache,
		cooldownWindow: cooldownWindow,
	}
}

// Redeem validates the presented input, authorizes the actor, enforces the
// cooldown and appends an attendance record with a server-assigned timestamp.
func (s *RedemptionService) Redeem(ctx context.Context, presentedInput, actorID string, meta *model.AttendanceMeta) (*model.AttendanceRecord, error) {
	code, err := NormalizeScannedCode(presentedInput)
	if err != nil {
		return nil, err
	}

	// Actor authorization runs before any code lookup so an unauthorized
	// caller learns nothing about code validity.
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsVenue() {
		log.Warn().
			Str("venueId", actorID).
			Str("role", string(actor.Role)).
			Msg("redemption attempted by non-venue actor")
		audit.Log(ctx, audit.Event{
			Type:    audit.EventRedeemDenied,
			VenueID: actorID,
			Details: map[string]interface{}{"reason": "unauthorized_actor"},
		})
		return nil, apperrors.UnauthorizedActor()
	}

	reservation, err := s.codeRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if reservation == nil {
		log.Warn().Str("code", util.MaskCode(code)).Str("venueId", actorID).Msg("unknown check-in code presented")
		return nil, apperrors.UnknownCode()
	}

	owner, err := s.profileRepo.FindByID(ctx, reservation.OwnerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	// Guards against stale or corrupted mappings: the owner must still hold
	// an eligible role at redemption time.
	if owner == nil || !owner.Role.IsEligibleOwner() {
		log.Warn().
			Str("code", util.MaskCode(code)).
			Str("ownerId", reservation.OwnerID).
			Msg("check-in code owner no longer eligible")
		audit.Log(ctx, audit.Event{
			Type:    audit.EventRedeemDenied,
			OwnerID: reservation.OwnerID,
			VenueID: actorID,
			Details: map[string]interface{}{"reason": "owner_ineligible"},
		})
		return nil, apperrors.OwnerIneligible()
	}

	if s.hasRecentRedemption(ctx, owner.ID, actorID) {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventRedeemDenied,
			OwnerID: owner.ID,
			VenueID: actorID,
			Details: map[string]interface{}{"reason": "cooldown_active"},
		})
		return nil, apperrors.DuplicateRedemption(int(s.cooldownWindow.Minutes()))
	}

	var metaJSON json.RawMessage
	if meta != nil {
		if data, err := json.Marshal(meta); err == nil {
			metaJSON = data
		}
	}

	record, err := s.attendanceRepo.Create(ctx, model.CreateAttendanceParams{
		ID:               uuid.New().String(),
		OwnerID:          owner.ID,
		OwnerRole:        owner.Role,
		RedeemedCode:     code,
		VenueID:          actorID,
		VenueRole:        actor.Role,
		RecordedBy:       actorID,
		Meta:             metaJSON,
		OwnerDisplayName: owner.DisplayName,
		VenueDisplayName: actor.DisplayName,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("recordId", record.ID).
		Str("ownerId", owner.ID).
		Str("venueId", actorID).
		Str("code", util.MaskCode(code)).
		Msg("check-in recorded")
	audit.Log(ctx, audit.Event{
		Type:    audit.EventRedeemSuccess,
		OwnerID: owner.ID,
		VenueID: actorID,
		Details: map[string]interface{}{"recordId": record.ID},
	})

	return record, nil
}

// ResolveOwner maps a code to its owning profile id.
func (s *RedemptionService) ResolveOwner(ctx context.Context, code string) (string, error) {
	reservation, err := s.codeRepo.FindByCode(ctx, code)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if reservation == nil {
		return "", apperrors.UnknownCode()
	}
	return reservation.OwnerID, nil
}

// ListAttendance returns records matching the filter, newest first.
func (s *RedemptionService) ListAttendance(ctx context.Context, filter model.AttendanceFilter) ([]model.AttendanceRecord, error) {
	records, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return records, nil
}

// resolveActor loads the actor's role and display name, consulting the
// short-TTL cache first. A cache miss or error falls through to the profile
// store, which remains authoritative.
func (s *RedemptionService) resolveActor(ctx context.Context, actorID string) (*CachedActor, error) {
	if cached := s.actorCache.Get(ctx, actorID); cached != nil {
		return cached, nil
	}

	profile, err := s.profileRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if profile == nil {
		return nil, apperrors.UnauthorizedActor()
	}

	actor := CachedActor{Role: profile.Role, DisplayName: profile.DisplayName}
	s.actorCache.Put(ctx, actorID, actor)
	return &actor, nil
}

// hasRecentRedemption is the cooldown guard. It fails open on repository
// errors: a degraded guard must not block a legitimate check-in, at the cost
// of possibly admitting a duplicate while the store is unhealthy.
func (s *RedemptionService) hasRecentRedemption(ctx context.Context, ownerID, venueID string) bool {
	records, err := s.attendanceRepo.FindByOwnerAndVenue(ctx, ownerID, venueID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("ownerId", ownerID).
			Str("venueId", venueID).
			Msg("cooldown check failed, allowing redemption")
		return false
	}

	cutoff := time.Now().Add(-s.cooldownWindow)
	for _, rec := range records {
		if !rec.RecordedAt.Before(cutoff) {
			return true
		}
	}
	return false
}
