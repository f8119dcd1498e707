package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/lib/pq"
)

var (
	ErrClaimNotFound         = errors.New("attribute claim not found")
	ErrClaimCharacterInvalid = errors.New("claim character conflict or invalid")
)

type ClaimRepository interface {
	GetByCharacterAndAttribute(ctx context.Context, exec SQLExecutor, characterID int, attribute string) (*models.AttributeClaim, error)
	// Upsert accumulates pointsToAdd onto the claim for (characterID,
	// attribute), creating the row on first allocation, and replaces the
	// justification. Returns the post-upsert claim.
	Upsert(ctx context.Context, exec SQLExecutor, characterID int, attribute string, pointsToAdd int, justification string) (*models.AttributeClaim, error)
	ListByCharacter(ctx context.Context, exec SQLExecutor, characterID int) ([]models.AttributeClaim, error)
	// ListRankingRows returns claims for an attribute joined with character
	// names, as the raw material for ranking views.
	ListRankingRows(ctx context.Context, exec SQLExecutor, attribute string) ([]models.RankingEntry, error)
	ListAttributes(ctx context.Context, exec SQLExecutor) ([]string, error)
}

type postgresClaimRepository struct {
	db *sql.DB
}

func NewPostgresClaimRepository(db *sql.DB) ClaimRepository {
	return &postgresClaimRepository{db: db}
}

func (r *postgresClaimRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresClaimRepository) GetByCharacterAndAttribute(ctx context.Context, exec SQLExecutor, characterID int, attribute string) (*models.AttributeClaim, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, character_id, attribute_name, points_spent, justification, claimed_at, updated_at
		FROM attribute_claims
		WHERE character_id = $1 AND attribute_name = $2`

	return r.scanClaimRow(executor.QueryRowContext(ctx, query, characterID, attribute))
}

func (r *postgresClaimRepository) Upsert(ctx context.Context, exec SQLExecutor, characterID int, attribute string, pointsToAdd int, justification string) (*models.AttributeClaim, error) {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO attribute_claims (character_id, attribute_name, points_spent, justification)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT attribute_claims_character_attribute_key
		DO UPDATE SET
			points_spent = attribute_claims.points_spent + EXCLUDED.points_spent,
			justification = EXCLUDED.justification,
			updated_at = now()
		RETURNING id, character_id, attribute_name, points_spent, justification, claimed_at, updated_at`

	claim, err := r.scanClaimRow(executor.QueryRowContext(ctx, query, characterID, attribute, pointsToAdd, justification))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "attribute_claims_character_id_fkey" {
				return nil, ErrClaimCharacterInvalid
			}
		}
		return nil, err
	}
	return claim, nil
}

func (r *postgresClaimRepository) ListByCharacter(ctx context.Context, exec SQLExecutor, characterID int) ([]models.AttributeClaim, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, character_id, attribute_name, points_spent, justification, claimed_at, updated_at
		FROM attribute_claims
		WHERE character_id = $1
		ORDER BY attribute_name ASC`

	return r.listClaims(ctx, executor, query, characterID)
}

func (r *postgresClaimRepository) ListRankingRows(ctx context.Context, exec SQLExecutor, attribute string) ([]models.RankingEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ac.character_id, c.name, ac.attribute_name, ac.points_spent, ac.justification, ac.updated_at
		FROM attribute_claims ac
		JOIN characters c ON ac.character_id = c.id
		WHERE ac.attribute_name = $1
		ORDER BY ac.points_spent DESC, ac.updated_at ASC, ac.character_id ASC`

	rows, err := executor.QueryContext(ctx, query, attribute)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.RankingEntry, 0)
	for rows.Next() {
		var entry models.RankingEntry
		scanErr := rows.Scan(
			&entry.CharacterID,
			&entry.CharacterName,
			&entry.AttributeName,
			&entry.PointsSpent,
			&entry.Justification,
			&entry.UpdatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresClaimRepository) ListAttributes(ctx context.Context, exec SQLExecutor) ([]string, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT DISTINCT attribute_name
		FROM attribute_claims
		ORDER BY attribute_name ASC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attributes := make([]string, 0)
	for rows.Next() {
		var name string
		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, scanErr
		}
		attributes = append(attributes, name)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return attributes, nil
}

func (r *postgresClaimRepository) listClaims(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.AttributeClaim, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]models.AttributeClaim, 0)
	for rows.Next() {
		var claim models.AttributeClaim
		scanErr := rows.Scan(
			&claim.ID,
			&claim.CharacterID,
			&claim.AttributeName,
			&claim.PointsSpent,
			&claim.Justification,
			&claim.ClaimedAt,
			&claim.UpdatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		claims = append(claims, claim)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *postgresClaimRepository) scanClaimRow(row *sql.Row) (*models.AttributeClaim, error) {
	claim := &models.AttributeClaim{}
	err := row.Scan(
		&claim.ID,
		&claim.CharacterID,
		&claim.AttributeName,
		&claim.PointsSpent,
		&claim.Justification,
		&claim.ClaimedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return claim, nil
}
