// Package vocabulary reads categories, words and quizzes from the local
// database. The client never edits vocabulary; rows only change when a
// snapshot is imported.
package vocabulary

import (
	"context"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
)

type Repository interface {
	Categories(ctx context.Context) ([]models.Category, error)
	WordsByCategory(ctx context.Context, categoryID int64) ([]models.Word, error)
	// WordByID returns common.ErrNotFound when no such word exists.
	WordByID(ctx context.Context, id int64) (*models.Word, error)
	QuizzesByCategory(ctx context.Context, categoryID int64) ([]models.Quiz, error)
	QuizByID(ctx context.Context, id int64) (*models.Quiz, error)
	CountWords(ctx context.Context) (int, error)
}
