package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrdatawolf/DM-Helper/db"
	"github.com/mrdatawolf/DM-Helper/feed"
	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/repositories"
)

// AllocateInput is a player's request to stake points on an attribute.
type AllocateInput struct {
	CharacterID   int    `json:"character_id"`
	AttributeName string `json:"attribute_name"`
	PointsToAdd   int    `json:"points_to_add"`
	Justification string `json:"justification"`
}

// GrantInput is a DM-only request to raise a character's pool ceiling.
type GrantInput struct {
	CharacterID int    `json:"character_id"`
	Points      int    `json:"points"`
	Reason      string `json:"reason"`
}

type ClaimService interface {
	// Allocate spends pool points on a claim. Pool debit, claim upsert and
	// history append happen in one transaction: either all three land or
	// none do.
	Allocate(ctx context.Context, input AllocateInput) (*models.AttributeClaim, error)
	GrantPoints(ctx context.Context, input GrantInput) (*models.ClaimPointPool, error)
	GetPool(ctx context.Context, characterID int) (*models.ClaimPointPool, error)
	ListClaims(ctx context.Context, characterID int) ([]models.AttributeClaim, error)
	GetHistory(ctx context.Context, characterID int) ([]models.ClaimHistoryEntry, error)
}

// Broadcaster pushes a message to every feed subscriber of a room. The
// websocket hub satisfies this; a nil broadcaster disables the feed.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type claimService struct {
	txManager   db.TxManager
	poolRepo    repositories.PoolRepository
	claimRepo   repositories.ClaimRepository
	historyRepo repositories.HistoryRepository
	ranking     RankingService
	hub         Broadcaster
	logger      *slog.Logger
}

func NewClaimService(
	txManager db.TxManager,
	poolRepo repositories.PoolRepository,
	claimRepo repositories.ClaimRepository,
	historyRepo repositories.HistoryRepository,
	ranking RankingService,
	hub Broadcaster,
	logger *slog.Logger,
) ClaimService {
	return &claimService{
		txManager:   txManager,
		poolRepo:    poolRepo,
		claimRepo:   claimRepo,
		historyRepo: historyRepo,
		ranking:     ranking,
		hub:         hub,
		logger:      logger,
	}
}

func (s *claimService) Allocate(ctx context.Context, input AllocateInput) (*models.AttributeClaim, error) {
	input.AttributeName = strings.TrimSpace(input.AttributeName)
	if err := validateAllocateInput(input); err != nil {
		return nil, err
	}

	var claim *models.AttributeClaim
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Row lock on the pool serializes concurrent allocations for the
		// same character, so the spent counter never loses an increment.
		pool, err := s.poolRepo.GetByCharacterIDForUpdate(ctx, exec, input.CharacterID)
		if err != nil {
			if errors.Is(err, repositories.ErrPoolNotFound) {
				return ErrPoolNotFound
			}
			return fmt.Errorf("failed to load pool for character %d: %w", input.CharacterID, err)
		}

		if input.PointsToAdd > pool.Available() {
			return &InsufficientPointsError{Available: pool.Available(), Requested: input.PointsToAdd}
		}

		if err := s.poolRepo.AddSpent(ctx, exec, input.CharacterID, input.PointsToAdd); err != nil {
			return fmt.Errorf("failed to debit pool for character %d: %w", input.CharacterID, err)
		}

		claim, err = s.claimRepo.Upsert(ctx, exec, input.CharacterID, input.AttributeName, input.PointsToAdd, input.Justification)
		if err != nil {
			return fmt.Errorf("failed to upsert claim: %w", err)
		}

		entry := &models.ClaimHistoryEntry{
			CharacterID:   input.CharacterID,
			AttributeName: input.AttributeName,
			PointsChange:  input.PointsToAdd,
			Justification: input.Justification,
		}
		if err := s.historyRepo.Append(ctx, exec, entry); err != nil {
			return fmt.Errorf("failed to append history entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastRanking(ctx, input.AttributeName)
	return claim, nil
}

func (s *claimService) GrantPoints(ctx context.Context, input GrantInput) (*models.ClaimPointPool, error) {
	if input.CharacterID <= 0 {
		return nil, ErrCharacterNotFound
	}
	if input.Points <= 0 {
		return nil, ErrPointsNotPositive
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, ErrGrantReasonRequired
	}

	var pool *models.ClaimPointPool
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.poolRepo.GetByCharacterIDForUpdate(ctx, exec, input.CharacterID)
		if err != nil {
			if errors.Is(err, repositories.ErrPoolNotFound) {
				return ErrPoolNotFound
			}
			return fmt.Errorf("failed to load pool for character %d: %w", input.CharacterID, err)
		}

		if err := s.poolRepo.AddTotal(ctx, exec, input.CharacterID, input.Points); err != nil {
			return fmt.Errorf("failed to grant points to character %d: %w", input.CharacterID, err)
		}

		entry := &models.ClaimHistoryEntry{
			CharacterID:   input.CharacterID,
			AttributeName: models.PoolGrantAttribute,
			PointsChange:  input.Points,
			Justification: input.Reason,
		}
		if err := s.historyRepo.Append(ctx, exec, entry); err != nil {
			return fmt.Errorf("failed to append grant history entry: %w", err)
		}

		locked.TotalPoints += input.Points
		pool = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *claimService) GetPool(ctx context.Context, characterID int) (*models.ClaimPointPool, error) {
	pool, err := s.poolRepo.GetByCharacterID(ctx, nil, characterID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to load pool for character %d: %w", characterID, err)
	}
	return pool, nil
}

func (s *claimService) ListClaims(ctx context.Context, characterID int) ([]models.AttributeClaim, error) {
	claims, err := s.claimRepo.ListByCharacter(ctx, nil, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for character %d: %w", characterID, err)
	}
	return claims, nil
}

func (s *claimService) GetHistory(ctx context.Context, characterID int) ([]models.ClaimHistoryEntry, error) {
	entries, err := s.historyRepo.ListByCharacter(ctx, nil, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for character %d: %w", characterID, err)
	}
	return entries, nil
}

// broadcastRanking pushes the refreshed DM standings for an attribute to
// feed subscribers. Failures only log; the allocation already committed.
func (s *claimService) broadcastRanking(ctx context.Context, attribute string) {
	if s.hub == nil || s.ranking == nil {
		return
	}
	entries, err := s.ranking.RankAttribute(ctx, attribute)
	if err != nil {
		s.logger.Error("failed to compute ranking for feed broadcast",
			slog.String("attribute", attribute), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToRoom(feed.AttributeRoom(attribute), RankingUpdate{
		Type:          "RANKING_UPDATED",
		AttributeName: attribute,
		Rankings:      entries,
	})
}

// RankingUpdate is the feed message sent after a committed allocation.
type RankingUpdate struct {
	Type          string                  `json:"type"`
	AttributeName string                  `json:"attribute_name"`
	Rankings      []models.DMRankingEntry `json:"rankings"`
}

func validateAllocateInput(input AllocateInput) error {
	if input.CharacterID <= 0 {
		return ErrCharacterNotFound
	}
	attribute := strings.TrimSpace(input.AttributeName)
	if attribute == "" {
		return ErrAttributeNameRequired
	}
	if attribute == models.PoolGrantAttribute {
		return ErrSentinelAttribute
	}
	if input.PointsToAdd <= 0 {
		return ErrPointsNotPositive
	}
	if strings.TrimSpace(input.Justification) == "" {
		return ErrJustificationRequired
	}
	return nil
}
