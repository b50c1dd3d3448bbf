package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/forsa/checkin-server-go/internal/middleware"
	"github.com/forsa/checkin-server-go/internal/service"
)

const qrImageSize = 256

type CheckInCodeHandler struct {
	codeService *service.CheckInCodeService
}

func NewCheckInCodeHandler(codeService *service.CheckInCodeService) *CheckInCodeHandler {
	return &CheckInCodeHandler{codeService: codeService}
}

func (h *CheckInCodeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.EnsureCode)
	r.Get("/", h.GetCode)
	r.Get("/qr", h.GetCodeQR)

	return r
}

type codeResponse struct {
	Code *string `json:"code"`
}

// POST /v1/checkin/code
func (h *CheckInCodeHandler) EnsureCode(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	code, err := h.codeService.EnsureCode(r.Context(), profile.ID)
	if err != nil {
		log.Error().Err(err).Str("ownerId", profile.ID).Msg("failed to ensure check-in code")
		writeError(w, err)
		return
	}

	// Roles outside player/guardian simply have no code.
	if code == "" {
		writeJSON(w, http.StatusOK, codeResponse{Code: nil})
		return
	}

	writeJSON(w, http.StatusOK, codeResponse{Code: &code})
}

// GET /v1/checkin/code
func (h *CheckInCodeHandler) GetCode(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	code, err := h.codeService.GetCode(r.Context(), profile.ID)
	if err != nil {
		log.Error().Err(err).Str("ownerId", profile.ID).Msg("failed to get check-in code")
		writeError(w, err)
		return
	}

	if code == "" {
		writeJSON(w, http.StatusOK, codeResponse{Code: nil})
		return
	}

	writeJSON(w, http.StatusOK, codeResponse{Code: &code})
}

// GET /v1/checkin/code/qr
func (h *CheckInCodeHandler) GetCodeQR(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r.Context())

	code, err := h.codeService.GetCode(r.Context(), profile.ID)
	if err != nil {
		log.Error().Err(err).Str("ownerId", profile.ID).Msg("failed to get check-in code")
		writeError(w, err)
		return
	}
	if code == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No check-in code issued"})
		return
	}

	png, err := qrcode.Encode(service.ScanPayload(code), qrcode.Medium, qrImageSize)
	if err != nil {
		log.Error().Err(err).Str("ownerId", profile.ID).Msg("failed to render QR code")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to render QR code"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"code":        code,
		"qrCodeImage": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}
