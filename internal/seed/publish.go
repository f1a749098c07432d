package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/client/snapshot"
	"github.com/dmitrijs2005/wordmaster/internal/filex"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
)

// Publisher is the part of the sync transport the seed tool needs.
type Publisher interface {
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, r api.RegisterRequest) (*api.AuthResponse, error)
	SetToken(token string)
	UploadSnapshot(ctx context.Context, blob []byte) (int64, error)
}

// Publish authenticates and uploads blob, returning the server watermark.
// With register set, an account that cannot log in is created first.
func Publish(ctx context.Context, p Publisher, username, password string, register bool, blob []byte) (int64, error) {
	auth, err := p.Login(ctx, username, password)
	if err != nil && register && errors.Is(err, client.ErrUnauthorized) {
		auth, err = p.Register(ctx, api.RegisterRequest{Username: username, Password: password})
	}
	if err != nil {
		return 0, fmt.Errorf("authenticate as %q: %w", username, err)
	}
	p.SetToken(auth.Token)

	ts, err := p.UploadSnapshot(ctx, blob)
	if err != nil {
		return 0, err
	}
	return ts, nil
}

// Run reads the workbook and either writes the encoded snapshot to
// c.Output or publishes it to the server.
func Run(ctx context.Context, c *Config, log logging.Logger) error {
	doc, err := ReadWorkbook(c.Workbook, models.UnixTime(time.Now().Unix()))
	if err != nil {
		return err
	}
	log.Info(ctx, "workbook read", "file", c.Workbook,
		"categories", len(doc.Categories), "words", len(doc.Words), "quizzes", len(doc.Quizzes))

	blob, err := snapshot.Encode(doc)
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := filex.WriteFileAtomic(c.Output, blob, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.Info(ctx, "snapshot written", "file", c.Output, "bytes", len(blob))
		return nil
	}

	hc, err := client.NewHTTPClient(c.ServerURL, c.Timeout)
	if err != nil {
		return err
	}
	defer hc.Close()

	ts, err := Publish(ctx, hc, c.Username, c.Password, c.Register, blob)
	if err != nil {
		return err
	}
	log.Info(ctx, "snapshot published", "server", c.ServerURL, "bytes", len(blob),
		"last_update", time.Unix(ts, 0).UTC().Format(time.RFC3339))
	return nil
}
