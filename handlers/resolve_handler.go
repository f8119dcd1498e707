package handlers

import (
	"net/http"

	"github.com/mrdatawolf/DM-Helper/middleware"
	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/services"
)

type ResolveHandler struct {
	resolveService services.ResolveService
}

func NewResolveHandler(resolveService services.ResolveService) *ResolveHandler {
	return &ResolveHandler{resolveService: resolveService}
}

// ResolveRoll godoc
// @Summary Resolve a die roll against a character's attribute claim
// @Description Combines the supplied roll with the visible claim bonus and,
// @Description for the true best claimant, a hidden bonus. Player responses
// @Description never include the truth channel.
// @Tags claims
// @Accept json
// @Produce json
// @Param input body services.ResolveInput true "Roll to resolve"
// @Success 200 {object} models.RollResolution
// @Router /claims/resolve [post]
func (h *ResolveHandler) ResolveRoll(w http.ResponseWriter, r *http.Request) {
	var input services.ResolveInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	resolution, err := h.resolveService.ResolveRoll(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user role")
		return
	}

	// Shape by role: players must never learn whether the hidden bonus
	// applied, so they only get the redacted view.
	var response jsonResponse
	if role == models.RoleDM {
		response = jsonResponse{"resolution": resolution}
	} else {
		response = jsonResponse{"resolution": resolution.ForPlayer()}
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
