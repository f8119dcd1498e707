package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/repositories"
)

// PerceptionInput records what the observer believes the target has
// invested in an attribute.
type PerceptionInput struct {
	ObserverCharacterID int    `json:"observer_character_id"`
	TargetCharacterID   int    `json:"target_character_id"`
	AttributeName       string `json:"attribute_name"`
	PerceivedPoints     int    `json:"perceived_points"`
	PerceptionNotes     string `json:"perception_notes"`
}

type PerceptionService interface {
	RecordPerception(ctx context.Context, input PerceptionInput) (*models.PerceivedRanking, error)
	// PerceivedRankings returns the observer's own actual investment plus
	// their beliefs about everyone else, sorted by perceived points.
	PerceivedRankings(ctx context.Context, observerID int, attribute string) (*models.PerceivedView, error)
}

type perceptionService struct {
	perceptionRepo repositories.PerceptionRepository
	claimRepo      repositories.ClaimRepository
}

func NewPerceptionService(perceptionRepo repositories.PerceptionRepository, claimRepo repositories.ClaimRepository) PerceptionService {
	return &perceptionService{perceptionRepo: perceptionRepo, claimRepo: claimRepo}
}

func (s *perceptionService) RecordPerception(ctx context.Context, input PerceptionInput) (*models.PerceivedRanking, error) {
	if input.ObserverCharacterID <= 0 || input.TargetCharacterID <= 0 {
		return nil, ErrCharacterNotFound
	}
	if input.ObserverCharacterID == input.TargetCharacterID {
		return nil, ErrSelfPerception
	}
	attribute := strings.TrimSpace(input.AttributeName)
	if attribute == "" {
		return nil, ErrAttributeNameRequired
	}
	if input.PerceivedPoints < 0 {
		return nil, ErrPerceivedPointsInvalid
	}

	perception := &models.PerceivedRanking{
		ObserverCharacterID: input.ObserverCharacterID,
		TargetCharacterID:   input.TargetCharacterID,
		AttributeName:       attribute,
		PerceivedPoints:     input.PerceivedPoints,
		PerceptionNotes:     input.PerceptionNotes,
	}
	if err := s.perceptionRepo.Upsert(ctx, nil, perception); err != nil {
		if errors.Is(err, repositories.ErrPerceptionCharacterInvalid) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to upsert perception: %w", err)
	}
	return perception, nil
}

func (s *perceptionService) PerceivedRankings(ctx context.Context, observerID int, attribute string) (*models.PerceivedView, error) {
	if observerID <= 0 {
		return nil, ErrCharacterNotFound
	}
	attribute = strings.TrimSpace(attribute)
	if attribute == "" {
		return nil, ErrAttributeNameRequired
	}

	perceived, err := s.perceptionRepo.ListByObserverAndAttribute(ctx, nil, observerID, attribute)
	if err != nil {
		return nil, fmt.Errorf("failed to list perceptions for character %d: %w", observerID, err)
	}

	ownPoints := 0
	claim, err := s.claimRepo.GetByCharacterAndAttribute(ctx, nil, observerID, attribute)
	if err != nil && !errors.Is(err, repositories.ErrClaimNotFound) {
		return nil, fmt.Errorf("failed to load own claim for character %d: %w", observerID, err)
	}
	if claim != nil {
		ownPoints = claim.PointsSpent
	}

	return &models.PerceivedView{
		OwnPoints:       ownPoints,
		PerceivedOthers: perceived,
	}, nil
}
