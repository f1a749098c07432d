package localstore

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/common"
)

var (
	// ErrSchema means the local tables could not be created.
	ErrSchema = errors.New("cannot initialize local data")
	// ErrNotReady is returned by accessors called before EnsureSchema.
	ErrNotReady = errors.New("local store is not initialized")
	// ErrStorage wraps read/write failures of the local database.
	ErrStorage = errors.New("local storage failure")
	// ErrImportConsistency means a snapshot was rejected before import.
	ErrImportConsistency = errors.New("snapshot does not match the local schema")
)

// storageErr tags driver failures with ErrStorage. Not-found and validation
// errors pass through untagged so callers can tell them apart.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrNotFound) || errors.Is(err, models.ErrInvalidRecord) ||
		errors.Is(err, ErrNotReady) || errors.Is(err, ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
