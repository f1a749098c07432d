package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/client/localstore"
	"github.com/dmitrijs2005/wordmaster/internal/client/services"
	"github.com/dmitrijs2005/wordmaster/internal/common"
)

func TestGetStatus(t *testing.T) {
	a := newTestApp()
	assert.Equal(t, "", a.getStatus())

	a.setSession(demoSession())
	assert.Equal(t, "(demo )", a.getStatus())

	a.setMode(ModeOffline)
	assert.Equal(t, "(demo offline)", a.getStatus())
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	f := &fakeAuth{pingErr: client.ErrUnavailable}
	a := newTestApp()
	a.authService = f

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.getMode() == ModeOffline }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	f.pingErr = nil
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
	require.Eventually(t, func() bool { return a.getMode() == ModeOnline }, time.Second, 5*time.Millisecond)
}

func TestSync_ReportsDirection(t *testing.T) {
	out := captureOutput(t)
	auth := &fakeAuth{}
	s := &fakeSync{res: services.SyncResult{Action: services.ActionDownloaded, Timestamp: 1700000000}}
	a := newTestApp()
	a.authService, a.syncService = auth, s
	a.setSession(demoSession())

	require.NoError(t, a.Sync(context.Background()))
	require.Equal(t, 1, auth.mirrored)
	require.Contains(t, out(), "Downloaded server data")

	s.res = services.SyncResult{Action: services.ActionUploaded, Timestamp: 1700000001}
	require.NoError(t, a.Sync(context.Background()))
	require.Contains(t, out(), "Uploaded local data")
	require.Equal(t, 1, auth.mirrored)

	s.res = services.SyncResult{Action: services.ActionNone}
	require.NoError(t, a.Sync(context.Background()))
	require.Contains(t, out(), "Already up to date")
}

func TestSync_Error(t *testing.T) {
	captureOutput(t)
	a := newTestApp()
	a.syncService = &fakeSync{err: services.ErrSyncInProgress}

	require.ErrorIs(t, a.Sync(context.Background()), services.ErrSyncInProgress)
}

func TestStatus(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp()
	a.store = fakeWatermark{ts: 1700000000}

	require.NoError(t, a.Status(context.Background()))
	text := out()
	require.Contains(t, text, "not logged in")
	require.Contains(t, text, "unknown")
	require.Contains(t, text, formatWatermark(1700000000))
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{services.ErrSyncInProgress, "already running"},
		{&client.TransportError{Op: "fetch last update", Err: client.ErrNoCredential}, "offline session"},
		{fmt.Errorf("login: %w", common.ErrInvalidCredentials), "invalid username or password"},
		{&client.TransportError{Op: "x", StatusCode: 401, Err: client.ErrUnauthorized}, "login again"},
		{&client.TransportError{Op: "x", Err: client.ErrUnavailable}, "network problem"},
		{&client.TransportError{Op: "x", Err: client.ErrBadResponse}, "server problem"},
		{fmt.Errorf("import: %w", localstore.ErrImportConsistency), "does not match"},
		{fmt.Errorf("x: %w", localstore.ErrStorage), "local storage problem"},
		{errors.New("plain"), "plain"},
	}
	for _, tc := range tests {
		assert.Contains(t, describeError(tc.err), tc.want)
	}
}

func TestRenderTable(t *testing.T) {
	got := renderTable([]string{"A", "Long header"}, [][]string{{"wide value", "x"}, {"y"}})
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	require.Contains(t, got, "Long header")
	require.Contains(t, got, "wide value")
}

func TestFormatWatermark(t *testing.T) {
	require.Equal(t, "never", formatWatermark(0))
	require.Equal(t, time.Unix(1700000000, 0).Local().Format("2006-01-02 15:04:05"), formatWatermark(1700000000))
}
