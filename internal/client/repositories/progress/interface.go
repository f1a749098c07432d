// Package progress stores per (user, word) review state.
package progress

import (
	"context"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
)

type Repository interface {
	// Get returns common.ErrNotFound when the word was never reviewed.
	Get(ctx context.Context, userID, wordID int64) (*models.UserWordProgress, error)

	ListByUser(ctx context.Context, userID int64) ([]models.UserWordProgress, error)

	// Upsert applies u to the existing row (or none) and stores the result.
	// Run it inside a transaction: the read and the write must not interleave
	// with another writer.
	Upsert(ctx context.Context, u models.ProgressUpdate) (models.UserWordProgress, error)

	// Counts returns how many words the user reviewed and how many are learned.
	Counts(ctx context.Context, userID int64) (reviewed, learned int, err error)
}
