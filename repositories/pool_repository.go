package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/lib/pq"
)

var (
	ErrPoolNotFound         = errors.New("claim point pool not found")
	ErrPoolCharacterInvalid = errors.New("pool character conflict or invalid")
)

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.ClaimPointPool) error
	GetByCharacterID(ctx context.Context, exec SQLExecutor, characterID int) (*models.ClaimPointPool, error)
	// GetByCharacterIDForUpdate takes a row lock so concurrent allocations
	// against the same pool serialize instead of losing increments.
	GetByCharacterIDForUpdate(ctx context.Context, exec SQLExecutor, characterID int) (*models.ClaimPointPool, error)
	AddSpent(ctx context.Context, exec SQLExecutor, characterID, amount int) error
	AddTotal(ctx context.Context, exec SQLExecutor, characterID, amount int) error
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, pool *models.ClaimPointPool) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO claim_point_pools (character_id, total_points, spent_points)
		VALUES ($1, $2, $3)`

	_, err := executor.ExecContext(ctx, query, pool.CharacterID, pool.TotalPoints, pool.SpentPoints)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "claim_point_pools_character_id_fkey" {
				return ErrPoolCharacterInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresPoolRepository) GetByCharacterID(ctx context.Context, exec SQLExecutor, characterID int) (*models.ClaimPointPool, error) {
	query := `
		SELECT character_id, total_points, spent_points
		FROM claim_point_pools
		WHERE character_id = $1`
	return r.scanPool(ctx, r.getExecutor(exec), query, characterID)
}

func (r *postgresPoolRepository) GetByCharacterIDForUpdate(ctx context.Context, exec SQLExecutor, characterID int) (*models.ClaimPointPool, error) {
	query := `
		SELECT character_id, total_points, spent_points
		FROM claim_point_pools
		WHERE character_id = $1
		FOR UPDATE`
	return r.scanPool(ctx, r.getExecutor(exec), query, characterID)
}

func (r *postgresPoolRepository) AddSpent(ctx context.Context, exec SQLExecutor, characterID, amount int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE claim_point_pools
		SET spent_points = spent_points + $1
		WHERE character_id = $2`

	result, err := executor.ExecContext(ctx, query, amount, characterID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) AddTotal(ctx context.Context, exec SQLExecutor, characterID, amount int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE claim_point_pools
		SET total_points = total_points + $1
		WHERE character_id = $2`

	result, err := executor.ExecContext(ctx, query, amount, characterID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) scanPool(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) (*models.ClaimPointPool, error) {
	pool := &models.ClaimPointPool{}
	err := executor.QueryRowContext(ctx, query, args...).
		Scan(&pool.CharacterID, &pool.TotalPoints, &pool.SpentPoints)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return pool, nil
}
