package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/wordmaster/internal/logging"
)

// ErrSyncInProgress is returned when Sync is called while another sync runs.
var ErrSyncInProgress = errors.New("sync already in progress")

// Action says which way a sync moved data.
type Action string

const (
	ActionDownloaded Action = "downloaded"
	ActionUploaded   Action = "uploaded"
	ActionNone       Action = "none"
)

type SyncResult struct {
	Action    Action `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

// State is the coordinator's position in one sync run.
type State int32

const (
	StateIdle State = iota
	StateComparing
	StatePulling
	StatePushing
	StateNoOp
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComparing:
		return "comparing"
	case StatePulling:
		return "pulling"
	case StatePushing:
		return "pushing"
	case StateNoOp:
		return "no-op"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Remote is the server side of a sync.
type Remote interface {
	LastUpdate(ctx context.Context) (int64, error)
	DownloadSnapshot(ctx context.Context) ([]byte, error)
	UploadSnapshot(ctx context.Context, blob []byte) (int64, error)
}

// Local is the device side of a sync.
type Local interface {
	Watermark(ctx context.Context) (int64, bool, error)
	ExportAll(ctx context.Context) ([]byte, error)
	// Replace swaps every row for the snapshot and sets the watermark in
	// one transaction.
	Replace(ctx context.Context, blob []byte, watermark int64) error
}

type SyncService interface {
	Sync(ctx context.Context) (SyncResult, error)
	State() State
}

type syncService struct {
	remote Remote
	local  Local
	log    logging.Logger

	mu    sync.Mutex
	state atomic.Int32
}

func NewSyncService(remote Remote, local Local, log logging.Logger) SyncService {
	return &syncService{remote: remote, local: local, log: log}
}

func (s *syncService) State() State {
	return State(s.state.Load())
}

func (s *syncService) set(st State) {
	s.state.Store(int32(st))
}

// Sync compares the server and local watermarks and moves the whole
// database towards the newer side. Nothing is changed locally unless the
// pull completes; the watermark is only written together with the rows.
func (s *syncService) Sync(ctx context.Context) (SyncResult, error) {
	if !s.mu.TryLock() {
		return SyncResult{}, ErrSyncInProgress
	}
	defer s.mu.Unlock()
	defer s.set(StateIdle)

	s.set(StateComparing)

	remote, err := s.remote.LastUpdate(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch remote watermark: %w", err)
	}

	local, _, err := s.local.Watermark(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("read local watermark: %w", err)
	}

	s.log.Debug(ctx, "comparing watermarks", "remote", remote, "local", local)

	switch {
	case remote > local:
		s.set(StatePulling)
		return s.pull(ctx, remote)
	case local > remote:
		s.set(StatePushing)
		return s.push(ctx, local)
	default:
		s.set(StateNoOp)
		return SyncResult{Action: ActionNone, Timestamp: remote}, nil
	}
}

func (s *syncService) pull(ctx context.Context, remote int64) (SyncResult, error) {
	blob, err := s.remote.DownloadSnapshot(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("download snapshot: %w", err)
	}
	if err := s.local.Replace(ctx, blob, remote); err != nil {
		return SyncResult{}, fmt.Errorf("import snapshot: %w", err)
	}
	s.log.Info(ctx, "local database replaced from server", "bytes", len(blob), "watermark", remote)
	return SyncResult{Action: ActionDownloaded, Timestamp: remote}, nil
}

func (s *syncService) push(ctx context.Context, local int64) (SyncResult, error) {
	blob, err := s.local.ExportAll(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("export snapshot: %w", err)
	}
	serverTS, err := s.remote.UploadSnapshot(ctx, blob)
	if err != nil {
		return SyncResult{}, fmt.Errorf("upload snapshot: %w", err)
	}
	// The local watermark stays as is; the server's new value is only logged.
	s.log.Info(ctx, "local database uploaded", "bytes", len(blob), "watermark", local, "server_last_update", serverTS)
	return SyncResult{Action: ActionUploaded, Timestamp: local}, nil
}
