package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/forsa/checkin-server-go/internal/database"
	"github.com/forsa/checkin-server-go/internal/model"
)

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *mockProfileRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Profile, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *mockProfileRepo) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Profile, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *mockProfileRepo) SetCheckInCode(ctx context.Context, tx *sqlx.Tx, id, code string, issuedAt time.Time) error {
	args := m.Called(ctx, tx, id, code, issuedAt)
	return args.Error(0)
}

type mockCheckInCodeRepo struct {
	mock.Mock
}

func (m *mockCheckInCodeRepo) Reserve(ctx context.Context, tx *sqlx.Tx, code, ownerID string) (bool, error) {
	args := m.Called(ctx, tx, code, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCheckInCodeRepo) FindByCode(ctx context.Context, code string) (*model.CheckInCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckInCode), args.Error(1)
}

func (m *mockCheckInCodeRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.CheckInCode, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckInCode), args.Error(1)
}

type mockAttendanceRepo struct {
	mock.Mock
}

func (m *mockAttendanceRepo) Create(ctx context.Context, params model.CreateAttendanceParams) (*model.AttendanceRecord, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AttendanceRecord), args.Error(1)
}

func (m *mockAttendanceRepo) FindByOwnerAndVenue(ctx context.Context, ownerID, venueID string) ([]model.AttendanceRecord, error) {
	args := m.Called(ctx, ownerID, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AttendanceRecord), args.Error(1)
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter model.AttendanceFilter) ([]model.AttendanceRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AttendanceRecord), args.Error(1)
}

// fakeTxRunner runs the transaction function with a nil tx; the repositories
// inside are mocks, so no real transaction is needed.
type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	f.calls++
	return fn(nil)
}

func strPtr(s string) *string {
	return &s
}
