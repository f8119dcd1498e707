package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mrdatawolf/DM-Helper/middleware"
	"github.com/mrdatawolf/DM-Helper/services"
)

type ClaimHandler struct {
	claimService  services.ClaimService
	exportService services.ExportService
}

func NewClaimHandler(claimService services.ClaimService, exportService services.ExportService) *ClaimHandler {
	return &ClaimHandler{
		claimService:  claimService,
		exportService: exportService,
	}
}

// Allocate godoc
// @Summary Allocate claim points to an attribute
// @Tags claims
// @Accept json
// @Produce json
// @Param input body services.AllocateInput true "Allocation request"
// @Success 200 {object} models.AttributeClaim
// @Router /claims/allocate [post]
func (h *ClaimHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var input services.AllocateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claim, err := h.claimService.Allocate(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"claim": claim}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GrantPoints godoc
// @Summary Grant additional pool points to a character (DM only)
// @Tags claims
// @Accept json
// @Produce json
// @Param input body services.GrantInput true "Grant request"
// @Success 200 {object} models.ClaimPointPool
// @Router /claims/grant-points [post]
func (h *ClaimHandler) GrantPoints(w http.ResponseWriter, r *http.Request) {
	var input services.GrantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.claimService.GrantPoints(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Grants bypass the players' budget discipline, so record who issued one.
	if dmUserID, idErr := middleware.GetUserIDFromContext(r.Context()); idErr == nil {
		slog.Info("pool points granted",
			slog.Int("dm_user_id", dmUserID),
			slog.Int("character_id", input.CharacterID),
			slog.Int("points", input.Points))
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pool": pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPool godoc
// @Summary Get a character's claim point pool
// @Tags claims
// @Produce json
// @Param characterID path int true "Character ID"
// @Success 200 {object} models.ClaimPointPool
// @Router /claims/pool/{characterID} [get]
func (h *ClaimHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	characterID, err := getIntURLParam(r, "characterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.claimService.GetPool(r.Context(), characterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"pool":      pool,
		"available": pool.Available(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListClaims godoc
// @Summary List all claims made by a character
// @Tags claims
// @Produce json
// @Param characterID path int true "Character ID"
// @Success 200 {array} models.AttributeClaim
// @Router /claims/character/{characterID} [get]
func (h *ClaimHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	characterID, err := getIntURLParam(r, "characterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, err := h.claimService.ListClaims(r.Context(), characterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"claims": claims}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHistory godoc
// @Summary Get a character's claim history, most recent first
// @Tags claims
// @Produce json
// @Param characterID path int true "Character ID"
// @Success 200 {array} models.ClaimHistoryEntry
// @Router /claims/history/{characterID} [get]
func (h *ClaimHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	characterID, err := getIntURLParam(r, "characterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.claimService.GetHistory(r.Context(), characterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportHistory godoc
// @Summary Export a character's claim history to object storage (DM only)
// @Tags claims
// @Produce json
// @Param characterID path int true "Character ID"
// @Success 201 {object} storage.UploadResult
// @Router /claims/history/{characterID}/export [post]
func (h *ClaimHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	characterID, err := getIntURLParam(r, "characterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.exportService.ExportHistory(r.Context(), characterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if dmUserID, idErr := middleware.GetUserIDFromContext(r.Context()); idErr == nil {
		slog.Info("claim history exported",
			slog.Int("dm_user_id", dmUserID),
			slog.Int("character_id", characterID),
			slog.String("key", result.Key))
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"archive": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
