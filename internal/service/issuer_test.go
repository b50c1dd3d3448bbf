package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/forsa/checkin-server-go/internal/errors"
	"github.com/forsa/checkin-server-go/internal/model"
)

func eligibleProfile(id string) *model.Profile {
	return &model.Profile{
		ID:        id,
		Role:      model.RolePlayer,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestEnsureCode(t *testing.T) {
	ctx := context.Background()
	codeFormat := regexp.MustCompile(`^FC-[0-9A-HJ-NP-Z]{10}$`)

	t.Run("issues a fresh code on first request", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		codeRepo := new(mockCheckInCodeRepo)
		tx := &fakeTxRunner{}

		profileRepo.On("FindByID", ctx, "owner-1").Return(eligibleProfile("owner-1"), nil)
		profileRepo.On("FindByIDForUpdate", ctx, mock.Anything, "owner-1").Return(eligibleProfile("owner-1"), nil)
		codeRepo.On("Reserve", ctx, mock.Anything, mock.Anything, "owner-1").Return(true, nil).Once()
		profileRepo.On("SetCheckInCode", ctx, mock.Anything, "owner-1", mock.Anything, mock.Anything).Return(nil)

		svc := NewCheckInCodeService(tx, profileRepo, codeRepo)
		code, err := svc.EnsureCode(ctx, "owner-1")

		require.NoError(t, err)
		assert.True(t, codeFormat.MatchString(code), "unexpected code format: %s", code)
		assert.Equal(t, 1, tx.calls)
		profileRepo.AssertExpectations(t)
		codeRepo.AssertExpectations(t)
	})

	t.Run("is idempotent once a code exists", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		codeRepo := new(mockCheckInCodeRepo)
		tx := &fakeTxRunner{}

		p := eligibleProfile("owner-1")
		p.CheckInCode = strPtr("FC-7K3PQ9XJM2")
		profileRepo.On("FindByID", ctx, "owner-1").Return(p, nil)

		svc := NewCheckInCodeService(tx, profileRepo, codeRepo)
		for i := 0; i < 3; i++ {
			code, err := svc.EnsureCode(ctx, "owner-1")
			require.NoError(t, err)
			assert.Equal(t, "FC-7K3PQ9XJM2", code)
		}

		assert.Equal(t, 0, tx.calls, "no transaction should run when a code exists")
		codeRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns empty for ineligible role without reserving", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		codeRepo := new(mockCheckInCodeRepo)
		tx := &fakeTxRunner{}

		p := eligibleProfile("venue-1")
		p.Role = model.RoleAcademy
		profileRepo.On("FindByID", ctx, "venue-1").Return(p, nil)

		svc := NewCheckInCodeService(tx, profileRepo, codeRepo)
		code, err := svc.EnsureCode(ctx, "venue-1")

		require.NoError(t, err)
		assert.Empty(t, code)
		assert.Equal(t, 0, tx.calls)
		codeRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails when owner does not exist", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		codeRepo := new(mockCheckInCodeRepo)
		tx := &fakeTxRunner{}

		profileRepo.On("FindByID", ctx, "ghost").Return(nil, nil)

		svc := NewCheckInCodeService(tx, profileRepo, codeRepo)
		_, err := svc.EnsureCode(ctx, "ghost")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("retries generation on reservation collision", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		codeRepo := new(mockCheckInCodeRepo)
		tx := &fakeTxRunner{}

		profileRepo.On("FindByID", ctx, "owner-1").Return(eligibleProfile("owner-1"), nil)
		profileRepo.On("FindByIDForUpdate", ctx, mock.Anything, "owner-1").Return(eligibleProfile("owner-1"), nil)
		codeRepo.On("Reserve", ctx, mock.Anything, mock.Anything, "owner-1").Return(false, nil).Twice()
		codeRepo.On("Reserve", ctx, mock.Anything, mock.Anything, "owner-1").Return(true, nil).Once()
		profileRepo.On("SetCheckInCode", ctx, mock.Anything, "owner-1", mock.Anything, mock.Anything).Return(nil)

		svc := NewCheckInCodeService(tx, profileRepo, codeRepo)
		code, err := svc.EnsureCode(ctx, "owner-1")

		require.NoError(t, err)
		assert.True(t, codeFormat.MatchString(code))
		codeRepo.AssertNumberOfCalls(t, "Reserve", 3)
	})

	t.Run("fails hard after exhausting the retry budget", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		codeRepo := new(mockCheckInCodeRepo)
		tx := &fakeTxRunner{}

		profileRepo.On("FindByID", ctx, "owner-1").Return(eligibleProfile("owner-1"), nil)
		profileRepo.On("FindByIDForUpdate", ctx, mock.Anything, "owner-1").Return(eligibleProfile("owner-1"), nil)
		codeRepo.On("Reserve", ctx, mock.Anything, mock.Anything, "owner-1").Return(false, nil)

		svc := NewCheckInCodeService(tx, profileRepo, codeRepo)
		_, err := svc.EnsureCode(ctx, "owner-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeIssuanceExhausted, apperrors.GetCode(err))
		codeRepo.AssertNumberOfCalls(t, "Reserve", 10)
		profileRepo.AssertNotCalled(t, "SetCheckInCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("race loser observes the winner's code under the row lock", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		codeRepo := new(mockCheckInCodeRepo)
		tx := &fakeTxRunner{}

		// The initial read sees no code, but by the time the lock is held a
		// concurrent call has assigned one.
		profileRepo.On("FindByID", ctx, "owner-1").Return(eligibleProfile("owner-1"), nil)
		winner := eligibleProfile("owner-1")
		winner.CheckInCode = strPtr("FC-ABCDEFGHJK")
		profileRepo.On("FindByIDForUpdate", ctx, mock.Anything, "owner-1").Return(winner, nil)

		svc := NewCheckInCodeService(tx, profileRepo, codeRepo)
		code, err := svc.EnsureCode(ctx, "owner-1")

		require.NoError(t, err)
		assert.Equal(t, "FC-ABCDEFGHJK", code)
		codeRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetCode(t *testing.T) {
	ctx := context.Background()

	t.Run("returns existing code", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		p := eligibleProfile("owner-1")
		p.CheckInCode = strPtr("FC-7K3PQ9XJM2")
		profileRepo.On("FindByID", ctx, "owner-1").Return(p, nil)

		svc := NewCheckInCodeService(&fakeTxRunner{}, profileRepo, new(mockCheckInCodeRepo))
		code, err := svc.GetCode(ctx, "owner-1")

		require.NoError(t, err)
		assert.Equal(t, "FC-7K3PQ9XJM2", code)
	})

	t.Run("returns empty when no code issued", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		profileRepo.On("FindByID", ctx, "owner-1").Return(eligibleProfile("owner-1"), nil)

		svc := NewCheckInCodeService(&fakeTxRunner{}, profileRepo, new(mockCheckInCodeRepo))
		code, err := svc.GetCode(ctx, "owner-1")

		require.NoError(t, err)
		assert.Empty(t, code)
	})

	t.Run("fails when profile missing", func(t *testing.T) {
		profileRepo := new(mockProfileRepo)
		profileRepo.On("FindByID", ctx, "ghost").Return(nil, nil)

		svc := NewCheckInCodeService(&fakeTxRunner{}, profileRepo, new(mockCheckInCodeRepo))
		_, err := svc.GetCode(ctx, "ghost")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}
