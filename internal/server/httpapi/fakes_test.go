package httpapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/common"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]string
	ids   map[string]int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users: map[string]string{"demo": "demo123"},
		ids:   map[string]int64{"demo": 1},
	}
}

func (f *fakeUsers) Register(_ context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Username == "" || len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if _, ok := f.users[req.Username]; ok {
		return nil, common.ErrAlreadyExists
	}
	id := int64(len(f.users) + 1)
	f.users[req.Username] = req.Password
	f.ids[req.Username] = id
	return &api.AuthResponse{Token: fmt.Sprintf("tok-%d", id), User: api.User{ID: id, Username: req.Username, IsActive: true}}, nil
}

func (f *fakeUsers) Login(_ context.Context, username, password string) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.users[username]; !ok || p != password {
		return nil, common.ErrInvalidCredentials
	}
	id := f.ids[username]
	return &api.AuthResponse{Token: fmt.Sprintf("tok-%d", id), User: api.User{ID: id, Username: username, IsActive: true}}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (int64, error) {
	switch {
	case token == "expired":
		return 0, common.ErrTokenExpired
	case token == "db-down":
		return 0, fmt.Errorf("error searching user: connection refused")
	case strings.HasPrefix(token, "tok-"):
		var id int64
		if _, err := fmt.Sscanf(token, "tok-%d", &id); err == nil {
			return id, nil
		}
	}
	return 0, common.ErrInvalidToken
}

type fakeSnapshots struct {
	mu       sync.Mutex
	blob     []byte
	ts       time.Time
	uploader int64
	maxBytes int
	err      error
	panicMsg string
}

func (f *fakeSnapshots) LastUpdate(context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return time.Time{}, f.err
	}
	if f.blob == nil {
		return time.Unix(0, 0).UTC(), nil
	}
	return f.ts, nil
}

func (f *fakeSnapshots) Download(context.Context) ([]byte, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, time.Time{}, f.err
	}
	if f.blob == nil {
		return nil, time.Time{}, common.ErrNotFound
	}
	return f.blob, f.ts, nil
}

func (f *fakeSnapshots) Upload(_ context.Context, userID int64, blob []byte) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return time.Time{}, f.err
	}
	if string(blob) == "garbage" {
		return time.Time{}, fmt.Errorf("%w: malformed snapshot", common.ErrValidation)
	}
	if f.ts.IsZero() {
		f.ts = time.Unix(1700000000, 0).UTC()
	} else {
		f.ts = f.ts.Add(time.Second)
	}
	f.blob = append([]byte(nil), blob...)
	f.uploader = userID
	return f.ts, nil
}
