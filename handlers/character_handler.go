package handlers

import (
	"net/http"

	"github.com/mrdatawolf/DM-Helper/services"
)

type CharacterHandler struct {
	characterService services.CharacterService
}

func NewCharacterHandler(characterService services.CharacterService) *CharacterHandler {
	return &CharacterHandler{characterService: characterService}
}

// CreateCharacter godoc
// @Summary Register a character and seed its claim pool
// @Tags characters
// @Accept json
// @Produce json
// @Param input body services.CreateCharacterInput true "Character"
// @Success 201 {object} models.Character
// @Router /characters [post]
func (h *CharacterHandler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCharacterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	character, err := h.characterService.CreateCharacter(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"character": character}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CharacterHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := getIntURLParam(r, "characterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	character, err := h.characterService.GetCharacter(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"character": character}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CharacterHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := h.characterService.ListCharacters(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"characters": characters}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteCharacter removes a character; pools, claims, perceptions and
// history cascade with it.
func (h *CharacterHandler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := getIntURLParam(r, "characterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.characterService.DeleteCharacter(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
