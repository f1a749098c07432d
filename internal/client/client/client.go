package client

import (
	"context"

	"github.com/dmitrijs2005/wordmaster/internal/api"
)

// Client is the transport used by the client services.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)

	// SetToken installs the session credential sent with database calls.
	SetToken(token string)
	Token() string

	// LastUpdate returns the server watermark in Unix seconds.
	LastUpdate(ctx context.Context) (int64, error)
	DownloadSnapshot(ctx context.Context) ([]byte, error)
	// UploadSnapshot returns the server watermark after the upload.
	UploadSnapshot(ctx context.Context, blob []byte) (int64, error)
}
