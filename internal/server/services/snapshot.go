package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/client/snapshot"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/dmitrijs2005/wordmaster/internal/server/blobstore"
	"github.com/dmitrijs2005/wordmaster/internal/server/models"
	"github.com/dmitrijs2005/wordmaster/internal/server/repositories/repomanager"
)

// ErrPayloadTooLarge is returned by Upload for blobs over the size limit.
var ErrPayloadTooLarge = errors.New("snapshot too large")

// SnapshotService keeps the server's copy of the database: an index row per
// upload in PostgreSQL and the blob itself in object storage. The newest
// upload is the current state.
type SnapshotService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	log         logging.Logger
	maxBytes    int64
	now         func() time.Time
}

func NewSnapshotService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, maxBytes int64, log logging.Logger) *SnapshotService {
	return &SnapshotService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		log:         log,
		maxBytes:    maxBytes,
		now:         time.Now,
	}
}

// LastUpdate returns when the newest snapshot was stored, or the Unix epoch
// when nothing was ever uploaded.
func (s *SnapshotService) LastUpdate(ctx context.Context) (time.Time, error) {
	latest, err := s.repomanager.Snapshots(s.db).Latest(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return time.Unix(0, 0).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return latest.CreatedAt.UTC(), nil
}

// Download returns the newest blob and its timestamp, or common.ErrNotFound.
func (s *SnapshotService) Download(ctx context.Context) ([]byte, time.Time, error) {
	latest, err := s.repomanager.Snapshots(s.db).Latest(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, time.Time{}, err
		}
		return nil, time.Time{}, fmt.Errorf("latest snapshot: %w", err)
	}

	blob, err := s.blobs.Get(ctx, latest.ObjectKey)
	if err != nil {
		// a missing object behind an index row is a server fault, not a 404
		return nil, time.Time{}, fmt.Errorf("%w: blob %s: %w", common.ErrInternal, latest.ObjectKey, err)
	}
	return blob, latest.CreatedAt.UTC(), nil
}

// Upload validates blob as a snapshot, stores it and makes it the current
// state. The returned time is the new last_update. Malformed blobs wrap
// common.ErrValidation; nothing is stored for them.
func (s *SnapshotService) Upload(ctx context.Context, userID int64, blob []byte) (time.Time, error) {
	if len(blob) == 0 {
		return time.Time{}, fmt.Errorf("%w: empty snapshot", common.ErrValidation)
	}
	if s.maxBytes > 0 && int64(len(blob)) > s.maxBytes {
		return time.Time{}, ErrPayloadTooLarge
	}
	doc, err := snapshot.Decode(blob)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	sum := sha256.Sum256(blob)
	key := blobstore.NewKey(s.now())
	if err := s.blobs.Put(ctx, key, blob); err != nil {
		return time.Time{}, fmt.Errorf("store blob: %w", err)
	}

	row, err := s.repomanager.Snapshots(s.db).Create(ctx, &models.Snapshot{
		ObjectKey:  key,
		Size:       int64(len(blob)),
		Checksum:   hex.EncodeToString(sum[:]),
		UploadedBy: &userID,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.log.Warn(ctx, "orphan blob left behind", "key", key, "error", delErr)
		}
		return time.Time{}, fmt.Errorf("index snapshot: %w", err)
	}

	s.log.Info(ctx, "snapshot uploaded",
		"snapshot_id", row.ID, "user_id", userID, "bytes", row.Size, "rows", doc.Rows())
	return row.CreatedAt.UTC(), nil
}

// Prune drops every snapshot but the newest keep ones and returns how many
// were removed. Index rows go first inside one transaction; blobs are
// deleted after the commit, so a failure there only leaves unreachable
// objects.
func (s *SnapshotService) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("%w: keep must be positive", common.ErrValidation)
	}

	var expired []models.Snapshot
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Snapshots(tx)

		var err error
		expired, err = repo.ListExpired(ctx, keep)
		if err != nil {
			return err
		}
		for _, e := range expired {
			if err := repo.Delete(ctx, e.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}

	for _, e := range expired {
		if err := s.blobs.Delete(ctx, e.ObjectKey); err != nil && !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "delete expired blob", "key", e.ObjectKey, "error", err)
		}
	}
	if len(expired) > 0 {
		s.log.Info(ctx, "snapshots pruned", "removed", len(expired), "kept", keep)
	}
	return len(expired), nil
}
