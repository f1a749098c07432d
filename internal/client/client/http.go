package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/timex"
)

// DefaultTimeout bounds every call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the server at baseURL
// (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// call performs one request and returns the body of a 2xx response.
// in may be nil, []byte (sent as is) or a value marshaled to JSON.
func (c *HTTPClient) call(ctx context.Context, op, method, path string, in any, auth bool) ([]byte, error) {
	var token string
	if auth {
		if token = c.Token(); token == "" {
			return nil, ErrNoCredential
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set(common.AuthorizationHeader, common.AuthorizationValue(token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e api.ErrorResponse
		msg := string(data)
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: statusError(resp.StatusCode, msg)}
	}
	return data, nil
}

func decode[T any](op string, data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("%w: %w", ErrBadResponse, err)}
	}
	return &v, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "ping", http.MethodGet, api.PathHealth, nil, false)
	return err
}

func (c *HTTPClient) Register(ctx context.Context, r api.RegisterRequest) (*api.AuthResponse, error) {
	data, err := c.call(ctx, "register", http.MethodPost, api.PathRegister, r, false)
	if err != nil {
		return nil, err
	}
	return decodeAuth("register", data)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	data, err := c.call(ctx, "login", http.MethodPost, api.PathLogin,
		api.LoginRequest{Username: username, Password: password}, false)
	if err != nil {
		return nil, err
	}
	return decodeAuth("login", data)
}

func decodeAuth(op string, data []byte) (*api.AuthResponse, error) {
	resp, err := decode[api.AuthResponse](op, data)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User.ID <= 0 {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("%w: missing token or user", ErrBadResponse)}
	}
	return resp, nil
}

func parseWatermark(op, raw string) (int64, error) {
	t, err := timex.ParseTimestamp(raw)
	if err != nil {
		return 0, &TransportError{Op: op, Err: fmt.Errorf("%w: %w", ErrBadResponse, err)}
	}
	return t.Unix(), nil
}

func (c *HTTPClient) LastUpdate(ctx context.Context) (int64, error) {
	const op = "fetch last update"
	data, err := c.call(ctx, op, http.MethodGet, api.PathLastUpdate, nil, true)
	if err != nil {
		return 0, err
	}
	resp, err := decode[api.LastUpdateResponse](op, data)
	if err != nil {
		return 0, err
	}
	return parseWatermark(op, resp.LastUpdate)
}

func (c *HTTPClient) DownloadSnapshot(ctx context.Context) ([]byte, error) {
	const op = "download snapshot"
	data, err := c.call(ctx, op, http.MethodGet, api.PathDownload, nil, true)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("%w: empty snapshot", ErrBadResponse)}
	}
	return data, nil
}

func (c *HTTPClient) UploadSnapshot(ctx context.Context, blob []byte) (int64, error) {
	const op = "upload snapshot"
	if len(blob) == 0 {
		return 0, &TransportError{Op: op, Err: errors.New("empty snapshot")}
	}
	data, err := c.call(ctx, op, http.MethodPost, api.PathUpload,
		api.UploadRequest{Database: base64.StdEncoding.EncodeToString(blob)}, true)
	if err != nil {
		return 0, err
	}
	resp, err := decode[api.LastUpdateResponse](op, data)
	if err != nil {
		return 0, err
	}
	return parseWatermark(op, resp.LastUpdate)
}
