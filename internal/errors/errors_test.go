package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Profile not found")
		assert.Equal(t, "NOT_FOUND: Profile not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "code", "reason": "invalid format"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"Forbidden", func() *AppError { return Forbidden("test") }, ErrCodeForbidden},
		{"InvalidToken", func() *AppError { return InvalidToken("test") }, ErrCodeInvalidToken},
		{"UnauthorizedActor", func() *AppError { return UnauthorizedActor() }, ErrCodeUnauthorizedActor},
		{"NotFound", func() *AppError { return NotFound("Profile") }, ErrCodeNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("code", "invalid") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("code") }, ErrCodeMissingRequired},
		{"MalformedCode", func() *AppError { return MalformedCode() }, ErrCodeMalformedCode},
		{"UnknownCode", func() *AppError { return UnknownCode() }, ErrCodeUnknownCode},
		{"OwnerIneligible", func() *AppError { return OwnerIneligible() }, ErrCodeOwnerIneligible},
		{"DuplicateRedemption", func() *AppError { return DuplicateRedemption(5) }, ErrCodeDuplicateRedemption},
		{"IssuanceExhausted", func() *AppError { return IssuanceExhausted(10) }, ErrCodeIssuanceExhausted},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.constructor()
			assert.Equal(t, tt.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestOwnerIneligibleMessageMatchesUnknownCode(t *testing.T) {
	// Venue staff must not learn whether a code exists but is revoked.
	assert.Equal(t, UnknownCode().Message, OwnerIneligible().Message)
}

func TestErrorInspection(t *testing.T) {
	t.Run("IsAppError detects AppError", func(t *testing.T) {
		assert.True(t, IsAppError(UnknownCode()))
		assert.False(t, IsAppError(errors.New("plain")))
	})

	t.Run("IsAppError detects wrapped AppError", func(t *testing.T) {
		wrapped := fmt.Errorf("redeem: %w", DuplicateRedemption(5))
		assert.True(t, IsAppError(wrapped))
	})

	t.Run("GetCode returns code for AppError", func(t *testing.T) {
		assert.Equal(t, ErrCodeMalformedCode, GetCode(MalformedCode()))
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	})
}
