// Package snapshots indexes the database blobs held in object storage.
package snapshots

import (
	"context"

	"github.com/dmitrijs2005/wordmaster/internal/server/models"
)

type Repository interface {
	// Create inserts the row and fills in ID and CreatedAt.
	Create(ctx context.Context, s *models.Snapshot) (*models.Snapshot, error)
	// Latest returns the newest snapshot or common.ErrNotFound.
	Latest(ctx context.Context) (*models.Snapshot, error)
	// ListExpired returns every snapshot older than the newest keep ones.
	ListExpired(ctx context.Context, keep int) ([]models.Snapshot, error)
	Delete(ctx context.Context, id int64) error
}
