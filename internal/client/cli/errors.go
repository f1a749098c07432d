package cli

import (
	"errors"

	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/client/localstore"
	"github.com/dmitrijs2005/wordmaster/internal/client/services"
	"github.com/dmitrijs2005/wordmaster/internal/common"
)

// describeError turns an error into a line for the user, telling network
// problems apart from local storage problems.
func describeError(err error) string {
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		return "a sync is already running"
	case errors.Is(err, client.ErrNoCredential):
		return "this is an offline session; login while the server is reachable to sync"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, client.ErrUnauthorized):
		return "the server rejected the session, please login again"
	case errors.Is(err, client.ErrUnavailable):
		return "network problem: " + err.Error()
	case errors.Is(err, client.ErrBadResponse), errors.Is(err, client.ErrRejected), errors.Is(err, client.ErrNotFound):
		return "server problem: " + err.Error()
	case errors.Is(err, localstore.ErrImportConsistency):
		return "server data does not match this version: " + err.Error()
	case errors.Is(err, localstore.ErrSchema), errors.Is(err, localstore.ErrStorage), errors.Is(err, localstore.ErrNotReady):
		return "local storage problem: " + err.Error()
	}
	return err.Error()
}
