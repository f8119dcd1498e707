package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/lib/pq"
)

var ErrHistoryCharacterInvalid = errors.New("history character conflict or invalid")

// HistoryRepository is the append-only audit ledger. There is deliberately
// no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry *models.ClaimHistoryEntry) error
	ListByCharacter(ctx context.Context, exec SQLExecutor, characterID int) ([]models.ClaimHistoryEntry, error)
}

type postgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) HistoryRepository {
	return &postgresHistoryRepository{db: db}
}

func (r *postgresHistoryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresHistoryRepository) Append(ctx context.Context, exec SQLExecutor, entry *models.ClaimHistoryEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO claim_history (character_id, attribute_name, points_change, justification)
		VALUES ($1, $2, $3, $4)
		RETURNING id, changed_at`

	err := executor.QueryRowContext(ctx, query,
		entry.CharacterID,
		entry.AttributeName,
		entry.PointsChange,
		entry.Justification,
	).Scan(&entry.ID, &entry.ChangedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "claim_history_character_id_fkey" {
				return ErrHistoryCharacterInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresHistoryRepository) ListByCharacter(ctx context.Context, exec SQLExecutor, characterID int) ([]models.ClaimHistoryEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, character_id, attribute_name, points_change, justification, changed_at
		FROM claim_history
		WHERE character_id = $1
		ORDER BY changed_at DESC, id DESC`

	rows, err := executor.QueryContext(ctx, query, characterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ClaimHistoryEntry, 0)
	for rows.Next() {
		var entry models.ClaimHistoryEntry
		scanErr := rows.Scan(
			&entry.ID,
			&entry.CharacterID,
			&entry.AttributeName,
			&entry.PointsChange,
			&entry.Justification,
			&entry.ChangedAt,
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
