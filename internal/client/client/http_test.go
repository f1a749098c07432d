package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wordmaster/internal/api"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*HTTPClient, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, &hits
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.com", 0)
	require.Error(t, err)
	_, err = NewHTTPClient("://bad", 0)
	require.Error(t, err)

	c, err := NewHTTPClient("http://example.com/", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, c.timeout)
	require.Equal(t, "http://example.com", c.baseURL)
}

func TestLastUpdate_SendsTokenAndParses(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, api.PathLastUpdate, r.URL.Path)
		assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, api.LastUpdateResponse{LastUpdate: "2023-11-14T22:13:20.750Z"})
	})
	c.SetToken("abc")

	ts, err := c.LastUpdate(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), ts, "sub-second part is dropped")
}

func TestDatabaseCalls_WithoutTokenSendNothing(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	_, err := c.LastUpdate(ctx)
	require.ErrorIs(t, err, ErrNoCredential)
	_, err = c.DownloadSnapshot(ctx)
	require.ErrorIs(t, err, ErrNoCredential)
	_, err = c.UploadSnapshot(ctx, []byte{1})
	require.ErrorIs(t, err, ErrNoCredential)

	require.Zero(t, hits.Load())
}

func TestDownloadSnapshot_LargePayloadIntact(t *testing.T) {
	payload := make([]byte, 5<<20)
	_, err := rand.Read(payload)
	require.NoError(t, err)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.PathDownload, r.URL.Path)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	})
	c.SetToken("abc")

	got, err := c.DownloadSnapshot(context.Background())
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, got))
}

func TestUploadSnapshot_SendsBase64(t *testing.T) {
	blob := []byte{0x1f, 0x8b, 0x00, 0xff, 0x10}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, api.PathUpload, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.UploadRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		raw, err := base64.StdEncoding.DecodeString(req.Database)
		assert.NoError(t, err)
		assert.Equal(t, blob, raw)

		writeJSON(w, http.StatusOK, api.LastUpdateResponse{LastUpdate: "2023-11-14T22:13:21Z"})
	})
	c.SetToken("abc")

	ts, err := c.UploadSnapshot(context.Background(), blob)
	require.NoError(t, err)
	require.Equal(t, int64(1700000001), ts)

	_, err = c.UploadSnapshot(context.Background(), nil)
	require.Error(t, err)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrUnavailable},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusBadRequest, ErrRejected},
		{http.StatusRequestEntityTooLarge, ErrRejected},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.code), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.code, api.ErrorResponse{Error: "nope"})
			})
			c.SetToken("abc")

			_, err := c.DownloadSnapshot(context.Background())
			require.ErrorIs(t, err, tc.want)

			var te *TransportError
			require.True(t, errors.As(err, &te))
			require.Equal(t, tc.code, te.StatusCode)
			require.Equal(t, "download snapshot", te.Op)
			require.Contains(t, err.Error(), "nope")
		})
	}
}

func TestMalformedResponses(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.PathLastUpdate:
			writeJSON(w, http.StatusOK, api.LastUpdateResponse{LastUpdate: "whenever"})
		case api.PathLogin:
			_, _ = w.Write([]byte("{not json"))
		case api.PathDownload:
			w.WriteHeader(http.StatusOK)
		}
	})
	c.SetToken("abc")
	ctx := context.Background()

	_, err := c.LastUpdate(ctx)
	require.ErrorIs(t, err, ErrBadResponse)

	_, err = c.Login(ctx, "demo", "pw")
	require.ErrorIs(t, err, ErrBadResponse)

	_, err = c.DownloadSnapshot(ctx)
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	c.SetToken("abc")

	start := time.Now()
	_, err = c.LastUpdate(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.Less(t, time.Since(start), time.Second)
}

func TestServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, time.Second)
	require.NoError(t, err)

	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestLoginAndRegister(t *testing.T) {
	joined := time.Unix(1600000000, 0).UTC()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case api.PathLogin:
			var req api.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != "demo123" {
				writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "invalid username or password"})
				return
			}
			writeJSON(w, http.StatusOK, api.AuthResponse{Token: "jwt", User: api.User{ID: 1, Username: req.Username, DateJoined: joined}})
		case api.PathRegister:
			writeJSON(w, http.StatusConflict, api.ErrorResponse{Error: "already exists"})
		}
	})
	ctx := context.Background()

	resp, err := c.Login(ctx, "demo", "demo123")
	require.NoError(t, err)
	require.Equal(t, "jwt", resp.Token)
	require.Equal(t, int64(1), resp.User.ID)
	require.True(t, joined.Equal(resp.User.DateJoined))

	_, err = c.Login(ctx, "demo", "bad")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Register(ctx, api.RegisterRequest{Username: "demo", Password: "secret1"})
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "already exists")
}
