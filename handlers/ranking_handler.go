package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrdatawolf/DM-Helper/middleware"
	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/services"
)

type RankingHandler struct {
	rankingService    services.RankingService
	perceptionService services.PerceptionService
}

func NewRankingHandler(rankingService services.RankingService, perceptionService services.PerceptionService) *RankingHandler {
	return &RankingHandler{
		rankingService:    rankingService,
		perceptionService: perceptionService,
	}
}

// GetRanking godoc
// @Summary Current standings for one attribute, shaped by caller role
// @Tags rankings
// @Produce json
// @Param attribute path string true "Attribute name"
// @Success 200 {array} models.RankingEntry
// @Router /claims/rankings/{attribute} [get]
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	attribute := chi.URLParam(r, "attribute")

	entries, err := h.rankingService.RankAttribute(r.Context(), attribute)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user role")
		return
	}

	// The explicit shaping step: only DM callers get rank positions and
	// the best-claimant flag.
	var response jsonResponse
	if role == models.RoleDM {
		response = jsonResponse{"rankings": entries}
	} else {
		response = jsonResponse{"rankings": models.RedactRanking(entries)}
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetAllRankings godoc
// @Summary Standings for every claimed attribute (DM dashboard)
// @Tags rankings
// @Produce json
// @Success 200 {object} map[string][]models.DMRankingEntry
// @Router /claims/rankings [get]
func (h *RankingHandler) GetAllRankings(w http.ResponseWriter, r *http.Request) {
	all, err := h.rankingService.RankAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": all}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPerceivedRankings godoc
// @Summary What a character believes others have invested in an attribute
// @Tags rankings
// @Produce json
// @Param characterID path int true "Observer character ID"
// @Param attribute path string true "Attribute name"
// @Success 200 {object} models.PerceivedView
// @Router /claims/rankings/perceived/{characterID}/{attribute} [get]
func (h *RankingHandler) GetPerceivedRankings(w http.ResponseWriter, r *http.Request) {
	characterID, err := getIntURLParam(r, "characterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	attribute := chi.URLParam(r, "attribute")

	view, err := h.perceptionService.PerceivedRankings(r.Context(), characterID, attribute)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordPerception godoc
// @Summary Record what one character thinks another has invested
// @Tags rankings
// @Accept json
// @Produce json
// @Param input body services.PerceptionInput true "Perception"
// @Success 200 {object} models.PerceivedRanking
// @Router /claims/perception [post]
func (h *RankingHandler) RecordPerception(w http.ResponseWriter, r *http.Request) {
	var input services.PerceptionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	perception, err := h.perceptionService.RecordPerception(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"perception": perception}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
