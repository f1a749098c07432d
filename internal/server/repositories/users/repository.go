// Package users stores server accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/wordmaster/internal/server/models"
)

type Repository interface {
	// Create inserts the account and fills in ID and DateJoined.
	// A taken username yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin matches the username case-insensitively.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}
