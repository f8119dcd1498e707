package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mrdatawolf/DM-Helper/models"
)

var ErrCharacterNotFound = errors.New("character not found")

type CharacterRepository interface {
	Create(ctx context.Context, exec SQLExecutor, character *models.Character) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Character, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Character, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresCharacterRepository struct {
	db *sql.DB
}

func NewPostgresCharacterRepository(db *sql.DB) CharacterRepository {
	return &postgresCharacterRepository{db: db}
}

func (r *postgresCharacterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCharacterRepository) Create(ctx context.Context, exec SQLExecutor, character *models.Character) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO characters (name)
		VALUES ($1)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query, character.Name).
		Scan(&character.ID, &character.CreatedAt)
}

func (r *postgresCharacterRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Character, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, created_at
		FROM characters
		WHERE id = $1`

	var character models.Character
	err := executor.QueryRowContext(ctx, query, id).
		Scan(&character.ID, &character.Name, &character.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	return &character, nil
}

func (r *postgresCharacterRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Character, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, created_at
		FROM characters
		ORDER BY name ASC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	characters := make([]models.Character, 0)
	for rows.Next() {
		var character models.Character
		if scanErr := rows.Scan(&character.ID, &character.Name, &character.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		characters = append(characters, character)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return characters, nil
}

func (r *postgresCharacterRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	// Pools, claims, perceptions and history all cascade via FK.
	query := `DELETE FROM characters WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCharacterNotFound)
}
