package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertQuizResult(ctx context.Context, q models.QuizResult) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quiz_results (user_id, quiz_id, score, completion_time, date_taken)
		VALUES (?, ?, ?, ?, ?)
	`, q.UserID, q.QuizID, q.Score, q.CompletionTime, q.DateTaken)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quiz result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read quiz result id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) QuizResultsByUser(ctx context.Context, userID int64) ([]models.QuizResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, quiz_id, score, completion_time, date_taken
		FROM quiz_results WHERE user_id = ? ORDER BY date_taken DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz results of user %d: %w", userID, err)
	}
	defer rows.Close()

	var result []models.QuizResult
	for rows.Next() {
		var q models.QuizResult
		if err := rows.Scan(&q.ID, &q.UserID, &q.QuizID, &q.Score, &q.CompletionTime, &q.DateTaken); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result row: %w", err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz result rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) QuizSummary(ctx context.Context, userID int64) (int, float64, error) {
	var count int
	var avg float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(score), 0) FROM quiz_results WHERE user_id = ?
	`, userID).Scan(&count, &avg)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to summarize quiz results of user %d: %w", userID, err)
	}
	return count, avg, nil
}

func (r *SQLiteRepository) GameScore(ctx context.Context, userID int64, gameID string) (*models.GameScore, error) {
	var g models.GameScore
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, game_id, score, created_at
		FROM game_scores WHERE user_id = ? AND game_id = ?
	`, userID, gameID).Scan(&g.ID, &g.UserID, &g.GameID, &g.Score, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score of user %d in %q: %w", userID, gameID, err)
	}
	return &g, nil
}

func (r *SQLiteRepository) RecordIfHigher(ctx context.Context, g models.GameScore) (bool, error) {
	if err := g.Validate(); err != nil {
		return false, err
	}

	current, err := r.GameScore(ctx, g.UserID, g.GameID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO game_scores (user_id, game_id, score, created_at) VALUES (?, ?, ?, ?)
		`, g.UserID, g.GameID, g.Score, g.CreatedAt)
		if err != nil {
			return false, fmt.Errorf("failed to insert score of user %d in %q: %w", g.UserID, g.GameID, err)
		}
		return true, nil
	case err != nil:
		return false, err
	case g.Score <= current.Score:
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE game_scores SET score = ?, created_at = ? WHERE id = ?
	`, g.Score, g.CreatedAt, current.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update score %d: %w", current.ID, err)
	}
	return true, nil
}

func (r *SQLiteRepository) TopScores(ctx context.Context, gameID string, limit int) ([]models.HighScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.username, g.game_id, g.score, g.created_at
		FROM game_scores g
		JOIN users u ON u.id = g.user_id
		WHERE g.game_id = ?
		ORDER BY g.score DESC, g.created_at ASC
		LIMIT ?
	`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top scores of %q: %w", gameID, err)
	}
	defer rows.Close()

	var result []models.HighScore
	for rows.Next() {
		var h models.HighScore
		if err := rows.Scan(&h.Username, &h.GameID, &h.Score, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score rows: %w", err)
	}
	return result, nil
}
