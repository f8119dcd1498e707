package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/lib/pq"
)

var ErrPerceptionCharacterInvalid = errors.New("perception character conflict or invalid")

type PerceptionRepository interface {
	// Upsert replaces the observer's perception of the target for the
	// attribute; perceptions are opinions, not investments, so the latest
	// one wins outright.
	Upsert(ctx context.Context, exec SQLExecutor, perception *models.PerceivedRanking) error
	ListByObserverAndAttribute(ctx context.Context, exec SQLExecutor, observerID int, attribute string) ([]models.PerceivedRanking, error)
}

type postgresPerceptionRepository struct {
	db *sql.DB
}

func NewPostgresPerceptionRepository(db *sql.DB) PerceptionRepository {
	return &postgresPerceptionRepository{db: db}
}

func (r *postgresPerceptionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPerceptionRepository) Upsert(ctx context.Context, exec SQLExecutor, perception *models.PerceivedRanking) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO perceived_rankings
			(observer_character_id, target_character_id, attribute_name, perceived_points, perception_notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT perceived_rankings_observer_target_attribute_key
		DO UPDATE SET
			perceived_points = EXCLUDED.perceived_points,
			perception_notes = EXCLUDED.perception_notes,
			updated_at = now()
		RETURNING id, updated_at`

	err := executor.QueryRowContext(ctx, query,
		perception.ObserverCharacterID,
		perception.TargetCharacterID,
		perception.AttributeName,
		perception.PerceivedPoints,
		perception.PerceptionNotes,
	).Scan(&perception.ID, &perception.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return ErrPerceptionCharacterInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresPerceptionRepository) ListByObserverAndAttribute(ctx context.Context, exec SQLExecutor, observerID int, attribute string) ([]models.PerceivedRanking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
			pr.id, pr.observer_character_id, pr.target_character_id, c.name,
			pr.attribute_name, pr.perceived_points, pr.perception_notes, pr.updated_at
		FROM perceived_rankings pr
		JOIN characters c ON pr.target_character_id = c.id
		WHERE pr.observer_character_id = $1 AND pr.attribute_name = $2
		ORDER BY pr.perceived_points DESC`

	rows, err := executor.QueryContext(ctx, query, observerID, attribute)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perceptions := make([]models.PerceivedRanking, 0)
	for rows.Next() {
		var perception models.PerceivedRanking
		scanErr := rows.Scan(
			&perception.ID,
			&perception.ObserverCharacterID,
			&perception.TargetCharacterID,
			&perception.TargetCharacterName,
			&perception.AttributeName,
			&perception.PerceivedPoints,
			&perception.PerceptionNotes,
			&perception.UpdatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		perceptions = append(perceptions, perception)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return perceptions, nil
}
