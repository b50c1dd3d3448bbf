package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/forsa/checkin-server-go/internal/errors"
	"github.com/forsa/checkin-server-go/internal/middleware"
	"github.com/forsa/checkin-server-go/internal/model"
	"github.com/forsa/checkin-server-go/internal/service"
)

type AttendanceHandler struct {
	redemptionService *service.RedemptionService
}

func NewAttendanceHandler(redemptionService *service.RedemptionService) *AttendanceHandler {
	return &AttendanceHandler{redemptionService: redemptionService}
}

type redeemRequest struct {
	Code string                `json:"code"`
	Meta *model.AttendanceMeta `json:"meta,omitempty"`
}

// POST /v1/checkin/redeem
func (h *AttendanceHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}
	if req.Code == "" {
		writeError(w, apperrors.MissingRequired("code"))
		return
	}

	record, err := h.redemptionService.Redeem(r.Context(), req.Code, profile.ID, req.Meta)
	if err != nil {
		if !apperrors.IsAppError(err) {
			log.Error().Err(err).Str("venueId", profile.ID).Msg("redeem failed")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// GET /v1/checkin/resolve/{code}
func (h *AttendanceHandler) ResolveOwner(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())
	if !profile.Role.IsVenue() && profile.Role != model.RoleAdmin {
		writeError(w, apperrors.UnauthorizedActor())
		return
	}

	code, err := service.NormalizeScannedCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	ownerID, err := h.redemptionService.ResolveOwner(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"ownerId": ownerID})
}

// GET /v1/checkin/attendance?ownerId=&venueId=&today=
func (h *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	filter := model.AttendanceFilter{
		TodayOnly: r.URL.Query().Get("today") == "true",
	}
	if v := r.URL.Query().Get("ownerId"); v != "" {
		filter.OwnerID = &v
	}
	if v := r.URL.Query().Get("venueId"); v != "" {
		filter.VenueID = &v
	}

	// Non-admin callers only see their own slice of history: venues their
	// venue, owners themselves.
	switch {
	case profile.Role == model.RoleAdmin:
	case profile.Role.IsVenue():
		filter.VenueID = &profile.ID
	default:
		filter.OwnerID = &profile.ID
	}

	records, err := h.redemptionService.ListAttendance(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list attendance")
		writeError(w, err)
		return
	}

	if records == nil {
		records = []model.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
