package vocabulary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
)

const (
	wordColumns = `id, category_id, english, turkish, example_sentence, pronunciation, difficulty`
	quizColumns = `id, category_id, title, description, difficulty`
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, image FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var result []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Image); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}
	return result, nil
}

func scanWord(row interface{ Scan(...any) error }) (models.Word, error) {
	var w models.Word
	err := row.Scan(&w.ID, &w.CategoryID, &w.English, &w.Turkish, &w.ExampleSentence, &w.Pronunciation, &w.Difficulty)
	return w, err
}

func (r *SQLiteRepository) WordsByCategory(ctx context.Context, categoryID int64) ([]models.Word, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+wordColumns+` FROM words WHERE category_id = ? ORDER BY difficulty, english, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words of category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var result []models.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate word rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) WordByID(ctx context.Context, id int64) (*models.Word, error) {
	w, err := scanWord(r.db.QueryRowContext(ctx, `SELECT `+wordColumns+` FROM words WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word %d: %w", id, err)
	}
	return &w, nil
}

func scanQuiz(row interface{ Scan(...any) error }) (models.Quiz, error) {
	var q models.Quiz
	err := row.Scan(&q.ID, &q.CategoryID, &q.Title, &q.Description, &q.Difficulty)
	return q, err
}

func (r *SQLiteRepository) QuizzesByCategory(ctx context.Context, categoryID int64) ([]models.Quiz, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE category_id = ? ORDER BY difficulty, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes of category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var result []models.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz row: %w", err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) QuizByID(ctx context.Context, id int64) (*models.Quiz, error) {
	q, err := scanQuiz(r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz %d: %w", id, err)
	}
	return &q, nil
}

func (r *SQLiteRepository) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}
