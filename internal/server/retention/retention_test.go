package retention

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPruner struct {
	calls atomic.Int32
	keep  atomic.Int32
	err   error
}

func (p *countingPruner) Prune(_ context.Context, keep int) (int, error) {
	p.calls.Add(1)
	p.keep.Store(int32(keep))
	return 0, p.err
}

func TestJob_RunsImmediatelyAndRepeats(t *testing.T) {
	p := &countingPruner{}
	j := New(p, 3, 50*time.Millisecond, logging.NewNop())

	require.NoError(t, j.Start())
	t.Cleanup(j.Stop)

	assert.Eventually(t, func() bool { return p.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(3), p.keep.Load())
}

func TestJob_ErrorsDoNotStopSchedule(t *testing.T) {
	p := &countingPruner{err: errors.New("pg down")}
	j := New(p, 1, 30*time.Millisecond, logging.NewNop())

	require.NoError(t, j.Start())
	t.Cleanup(j.Stop)

	assert.Eventually(t, func() bool { return p.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestJob_StopHaltsRuns(t *testing.T) {
	p := &countingPruner{}
	j := New(p, 1, 20*time.Millisecond, logging.NewNop())

	require.NoError(t, j.Start())
	assert.Eventually(t, func() bool { return p.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	j.Stop()
	time.Sleep(30 * time.Millisecond)

	after := p.calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, p.calls.Load())
}
