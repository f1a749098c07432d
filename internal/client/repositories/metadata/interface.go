package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyLastUpdate   = "last_update"
	KeySessionToken = "session_token"
	KeySessionUser  = "session_user_id"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// GetInt64 reports ok=false when the key is absent.
	GetInt64(ctx context.Context, key string) (v int64, ok bool, err error)
	SetInt64(ctx context.Context, key string, v int64) error
}
