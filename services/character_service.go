package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrdatawolf/DM-Helper/db"
	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/repositories"
)

type CreateCharacterInput struct {
	Name string `json:"name"`
}

type CharacterService interface {
	// CreateCharacter registers a character and seeds its claim pool with
	// the default allotment in the same transaction.
	CreateCharacter(ctx context.Context, input CreateCharacterInput) (*models.Character, error)
	GetCharacter(ctx context.Context, id int) (*models.Character, error)
	ListCharacters(ctx context.Context) ([]models.Character, error)
	DeleteCharacter(ctx context.Context, id int) error
}

type characterService struct {
	txManager     db.TxManager
	characterRepo repositories.CharacterRepository
	poolRepo      repositories.PoolRepository
}

func NewCharacterService(
	txManager db.TxManager,
	characterRepo repositories.CharacterRepository,
	poolRepo repositories.PoolRepository,
) CharacterService {
	return &characterService{
		txManager:     txManager,
		characterRepo: characterRepo,
		poolRepo:      poolRepo,
	}
}

func (s *characterService) CreateCharacter(ctx context.Context, input CreateCharacterInput) (*models.Character, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCharacterNameRequired
	}

	character := &models.Character{Name: name}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.characterRepo.Create(ctx, exec, character); err != nil {
			return fmt.Errorf("failed to create character: %w", err)
		}
		pool := &models.ClaimPointPool{
			CharacterID: character.ID,
			TotalPoints: models.DefaultPoolPoints,
			SpentPoints: 0,
		}
		if err := s.poolRepo.Create(ctx, exec, pool); err != nil {
			return fmt.Errorf("failed to initialize claim pool: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return character, nil
}

func (s *characterService) GetCharacter(ctx context.Context, id int) (*models.Character, error) {
	character, err := s.characterRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCharacterNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to load character %d: %w", id, err)
	}
	return character, nil
}

func (s *characterService) ListCharacters(ctx context.Context) ([]models.Character, error) {
	characters, err := s.characterRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

func (s *characterService) DeleteCharacter(ctx context.Context, id int) error {
	err := s.characterRepo.Delete(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCharacterNotFound) {
			return ErrCharacterNotFound
		}
		return fmt.Errorf("failed to delete character %d: %w", id, err)
	}
	return nil
}
