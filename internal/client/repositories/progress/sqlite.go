package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
)

const columns = `id, user_id, word_id, is_learned, familiarity_level, last_practiced`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scan(row interface{ Scan(...any) error }) (models.UserWordProgress, error) {
	var p models.UserWordProgress
	err := row.Scan(&p.ID, &p.UserID, &p.WordID, &p.IsLearned, &p.FamiliarityLevel, &p.LastPracticed)
	return p, err
}

func (r *SQLiteRepository) Get(ctx context.Context, userID, wordID int64) (*models.UserWordProgress, error) {
	p, err := scan(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM user_words WHERE user_id = ? AND word_id = ?`, userID, wordID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress of user %d word %d: %w", userID, wordID, err)
	}
	return &p, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.UserWordProgress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM user_words WHERE user_id = ? ORDER BY last_practiced DESC, word_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress of user %d: %w", userID, err)
	}
	defer rows.Close()

	var result []models.UserWordProgress
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u models.ProgressUpdate) (models.UserWordProgress, error) {
	existing, err := r.Get(ctx, u.UserID, u.WordID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return models.UserWordProgress{}, err
	}

	next := u.Apply(existing)

	if existing == nil {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO user_words (user_id, word_id, is_learned, familiarity_level, last_practiced)
			VALUES (?, ?, ?, ?, ?)
		`, next.UserID, next.WordID, next.IsLearned, next.FamiliarityLevel, next.LastPracticed)
		if err != nil {
			return models.UserWordProgress{}, fmt.Errorf("failed to insert progress of user %d word %d: %w", u.UserID, u.WordID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return models.UserWordProgress{}, fmt.Errorf("failed to read progress id: %w", err)
		}
		next.ID = id
		return next, nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE user_words SET is_learned = ?, familiarity_level = ?, last_practiced = ?
		WHERE id = ?
	`, next.IsLearned, next.FamiliarityLevel, next.LastPracticed, next.ID)
	if err != nil {
		return models.UserWordProgress{}, fmt.Errorf("failed to update progress %d: %w", next.ID, err)
	}
	return next, nil
}

func (r *SQLiteRepository) Counts(ctx context.Context, userID int64) (int, int, error) {
	var reviewed, learned int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_learned THEN 1 ELSE 0 END), 0)
		FROM user_words WHERE user_id = ?
	`, userID).Scan(&reviewed, &learned)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count progress of user %d: %w", userID, err)
	}
	return reviewed, learned, nil
}
