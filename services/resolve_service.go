package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/repositories"
)

// Bonus arithmetic: making any claim is worth a flat +1 regardless of how
// many points back it; actually being the best claimant adds a hidden +1
// the player never learns about directly.
const (
	claimBonus  = 1
	hiddenBonus = 1
)

// ResolveInput carries an externally rolled die result. The engine does no
// range validation: it is a pure integer combinator over whatever dice the
// table uses.
type ResolveInput struct {
	CharacterID   int    `json:"character_id"`
	AttributeName string `json:"attribute_name"`
	RollResult    int    `json:"roll_result"`
}

type ResolveService interface {
	ResolveRoll(ctx context.Context, input ResolveInput) (*models.RollResolution, error)
}

type resolveService struct {
	claimRepo repositories.ClaimRepository
	ranking   RankingService
}

func NewResolveService(claimRepo repositories.ClaimRepository, ranking RankingService) ResolveService {
	return &resolveService{claimRepo: claimRepo, ranking: ranking}
}

func (s *resolveService) ResolveRoll(ctx context.Context, input ResolveInput) (*models.RollResolution, error) {
	if input.CharacterID <= 0 {
		return nil, ErrCharacterNotFound
	}
	attribute := strings.TrimSpace(input.AttributeName)
	if attribute == "" {
		return nil, ErrAttributeNameRequired
	}

	claim, err := s.claimRepo.GetByCharacterAndAttribute(ctx, nil, input.CharacterID, attribute)
	if err != nil && !errors.Is(err, repositories.ErrClaimNotFound) {
		return nil, fmt.Errorf("failed to load claim for character %d: %w", input.CharacterID, err)
	}

	if claim == nil || claim.PointsSpent == 0 {
		return &models.RollResolution{
			BaseRoll:    input.RollResult,
			FinalResult: input.RollResult,
			Message:     "No claim bonus",
		}, nil
	}

	ranked, err := s.ranking.RankAttribute(ctx, attribute)
	if err != nil {
		return nil, fmt.Errorf("failed to rank attribute %q: %w", attribute, err)
	}
	isBest := len(ranked) > 0 && ranked[0].CharacterID == input.CharacterID

	total := claimBonus
	if isBest {
		total += hiddenBonus
	}

	return &models.RollResolution{
		BaseRoll:       input.RollResult,
		ClaimBonus:     claimBonus,
		TotalBonus:     total,
		FinalResult:    input.RollResult + total,
		Message:        "Claimed Best",
		IsActuallyBest: isBest,
	}, nil
}
