package accounts

import (
	"context"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
)

// Repository describes account and profile storage. Lookups that find no
// row return common.ErrNotFound.
type Repository interface {
	// UpsertUser inserts the user or refreshes every column of the row with
	// the same id.
	UpsertUser(ctx context.Context, u models.User) error

	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByUsername matches the username case-insensitively.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	GetProfileByUser(ctx context.Context, userID int64) (*models.Profile, error)

	// EnsureProfile creates a default profile for userID if none exists and
	// returns the stored one.
	EnsureProfile(ctx context.Context, userID int64) (*models.Profile, error)

	UpdateProfile(ctx context.Context, p models.Profile) error
}
