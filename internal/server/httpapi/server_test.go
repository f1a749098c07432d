package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	srv       *httptest.Server
	users     *fakeUsers
	snapshots *fakeSnapshots
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	f := &fixture{users: newFakeUsers(), snapshots: &fakeSnapshots{}, logs: logs}
	s := NewHTTPServer("127.0.0.1:0", logging.NewNop(), zap.New(core), f.users, f.snapshots, opts)
	f.srv = httptest.NewServer(s.Routes())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, token)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var e api.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &e), string(data))
	return e.Error
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t, Options{})

	resp, data := f.do(t, http.MethodGet, api.PathHealth, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
	assert.Len(t, resp.Header.Get(common.RequestIDHeader), 36)

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+api.PathHealth, nil)
	req.Header.Set(common.RequestIDHeader, "abc-1")
	resp2, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, "abc-1", resp2.Header.Get(common.RequestIDHeader))

	entries := f.logs.FilterMessage("HTTP request").AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-1", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(200), entries[1].ContextMap()["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, Options{})

	resp, data := f.do(t, http.MethodPost, api.PathRegister, "", api.RegisterRequest{Username: "alice", Password: "secret1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var auth api.AuthResponse
	require.NoError(t, json.Unmarshal(data, &auth))
	assert.Equal(t, "alice", auth.User.Username)
	assert.NotEmpty(t, auth.Token)

	resp, data = f.do(t, http.MethodPost, api.PathRegister, "", api.RegisterRequest{Username: "alice", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "username already taken", errorMessage(t, data))

	resp, _ = f.do(t, http.MethodPost, api.PathRegister, "", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, api.PathRegister, "", `{"username":"bob","password":"secret1"} {}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = f.do(t, http.MethodPost, api.PathLogin, "", api.LoginRequest{Username: "demo", Password: "demo123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &auth))
	assert.Equal(t, "tok-1", auth.Token)

	resp, data = f.do(t, http.MethodPost, api.PathLogin, "", api.LoginRequest{Username: "demo", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, common.ErrInvalidCredentials.Error(), errorMessage(t, data))

	resp, _ = f.do(t, http.MethodPost, api.PathLogin, "", api.LoginRequest{Username: "demo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, api.PathLogin, "", `{"username":"`+strings.Repeat("x", authBodyLimit+1)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestDatabaseRoutesRequireToken(t *testing.T) {
	f := newFixture(t, Options{})

	for _, path := range []string{api.PathLastUpdate, api.PathDownload} {
		resp, data := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.NotEmpty(t, errorMessage(t, data))
	}

	resp, _ := f.do(t, http.MethodPost, api.PathUpload, "", api.UploadRequest{Database: "eA=="})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, data := f.do(t, http.MethodGet, api.PathLastUpdate, "Token expired", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, common.ErrTokenExpired.Error(), errorMessage(t, data))

	resp, _ = f.do(t, http.MethodGet, api.PathLastUpdate, "Token forged", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, api.PathLastUpdate, "Basic tok-1", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, api.PathLastUpdate, "Token db-down", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, api.PathLastUpdate, "Bearer tok-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSnapshotFlow(t *testing.T) {
	f := newFixture(t, Options{MaxUploadBytes: 1 << 20})
	const tok = "Token tok-1"

	resp, data := f.do(t, http.MethodGet, api.PathLastUpdate, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"last_update":"1970-01-01T00:00:00Z"}`, string(data))

	resp, data = f.do(t, http.MethodGet, api.PathDownload, tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", errorMessage(t, data))

	blob := []byte{0x1f, 0x8b, 0, 1, 2, 3}
	resp, data = f.do(t, http.MethodPost, api.PathUpload, tok, api.UploadRequest{Database: base64.StdEncoding.EncodeToString(blob)})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"last_update":"2023-11-14T22:13:20Z"}`, string(data))
	assert.Equal(t, int64(1), f.snapshots.uploader)

	resp, data = f.do(t, http.MethodGet, api.PathDownload, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, blob, data)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))

	resp, _ = f.do(t, http.MethodPost, api.PathUpload, tok, api.UploadRequest{Database: "%%%"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, api.PathUpload, tok, api.UploadRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, api.PathUpload, tok, api.UploadRequest{Database: base64.StdEncoding.EncodeToString([]byte("garbage"))})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.snapshots.err = errors.New("pg down")
	resp, data = f.do(t, http.MethodGet, api.PathLastUpdate, tok, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal error", errorMessage(t, data), "internal details stay private")
}

func TestUploadTooLarge(t *testing.T) {
	f := newFixture(t, Options{MaxUploadBytes: 16})

	big := base64.StdEncoding.EncodeToString(make([]byte, 4096))
	resp, data := f.do(t, http.MethodPost, api.PathUpload, "Token tok-1", api.UploadRequest{Database: big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "snapshot too large", errorMessage(t, data))
	assert.Nil(t, f.snapshots.blob)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, Options{RateLimit: 2})

	for i := 0; i < 2; i++ {
		resp, _ := f.do(t, http.MethodPost, api.PathLogin, "", api.LoginRequest{Username: "demo", Password: "demo123"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, data := f.do(t, http.MethodPost, api.PathLogin, "", api.LoginRequest{Username: "demo", Password: "demo123"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too many requests", errorMessage(t, data))

	resp, _ = f.do(t, http.MethodGet, api.PathLastUpdate, "Token tok-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are not limited")
}

func TestPanicIsRecovered(t *testing.T) {
	f := newFixture(t, Options{})
	f.snapshots.panicMsg = "boom"

	resp, data := f.do(t, http.MethodGet, api.PathDownload, "Token tok-1", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", errorMessage(t, data))

	require.Len(t, f.logs.FilterMessage("panic recovered").AllUntimed(), 1)
	access := f.logs.FilterMessage("HTTP request").AllUntimed()
	require.Len(t, access, 1)
	assert.Equal(t, int64(500), access[0].ContextMap()["status"])
}

func TestUnknownRoutes(t *testing.T) {
	f := newFixture(t, Options{})

	resp, data := f.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", errorMessage(t, data))

	resp, _ = f.do(t, http.MethodDelete, api.PathHealth, "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestClientAgainstServer(t *testing.T) {
	f := newFixture(t, Options{MaxUploadBytes: 1 << 20})
	ctx := context.Background()

	c, err := client.NewHTTPClient(f.srv.URL, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(ctx))

	_, err = c.LastUpdate(ctx)
	require.ErrorIs(t, err, client.ErrNoCredential)

	_, err = c.Login(ctx, "demo", "wrong")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	auth, err := c.Login(ctx, "demo", "demo123")
	require.NoError(t, err)
	c.SetToken(auth.Token)

	wm, err := c.LastUpdate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), wm)

	_, err = c.DownloadSnapshot(ctx)
	require.ErrorIs(t, err, client.ErrNotFound)

	blob := bytes.Repeat([]byte{0x1f, 0x8b, 7}, 1000)
	up, err := c.UploadSnapshot(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), up)

	wm, err = c.LastUpdate(ctx)
	require.NoError(t, err)
	assert.Equal(t, up, wm)

	got, err := c.DownloadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewHTTPServer("127.0.0.1:0", logging.NewNop(), zap.NewNop(), newFakeUsers(), &fakeSnapshots{}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewHTTPServer("127.0.0.1:99999", logging.NewNop(), zap.NewNop(), newFakeUsers(), &fakeSnapshots{}, Options{})
	require.Error(t, srv.Run(context.Background()))
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{common.ErrValidation, http.StatusBadRequest},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrUnauthorized, http.StatusUnauthorized},
		{common.ErrNotFound, http.StatusNotFound},
		{common.ErrAlreadyExists, http.StatusConflict},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		status, msg := mapError(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		assert.NotEmpty(t, msg)
	}
}
