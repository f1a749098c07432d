package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
)

type fakeAuthClient struct {
	users    map[string]string
	down     bool
	token    string
	pings    int
	closed   bool
	nextID   int64
	lastReq  api.RegisterRequest
	register error
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{users: map[string]string{"demo": "demo123"}, nextID: 7}
}

func (f *fakeAuthClient) Ping(context.Context) error {
	f.pings++
	if f.down {
		return client.ErrUnavailable
	}
	return nil
}

func (f *fakeAuthClient) Close() error { f.closed = true; return nil }

func (f *fakeAuthClient) SetToken(token string) { f.token = token }

func (f *fakeAuthClient) response(username string) *api.AuthResponse {
	return &api.AuthResponse{
		Token: "tok-" + username,
		User: api.User{
			ID: f.nextID, Username: username, FirstName: "Demo", IsActive: true,
			DateJoined: time.Unix(1600000000, 0),
		},
	}
}

func (f *fakeAuthClient) Login(_ context.Context, username, password string) (*api.AuthResponse, error) {
	if f.down {
		return nil, &client.TransportError{Op: "login", Err: client.ErrUnavailable}
	}
	if pw, ok := f.users[username]; !ok || pw != password {
		return nil, &client.TransportError{Op: "login", StatusCode: 401, Err: client.ErrUnauthorized}
	}
	return f.response(username), nil
}

func (f *fakeAuthClient) Register(_ context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	f.lastReq = req
	if f.register != nil {
		return nil, f.register
	}
	f.users[req.Username] = req.Password
	return f.response(req.Username), nil
}

func TestOnlineLogin_MirrorsAccountAndSavesSession(t *testing.T) {
	ctx := context.Background()
	store := newLocal(t)
	c := newFakeAuthClient()
	svc := NewAuthService(c, store, logging.NewNop())

	sess, err := svc.OnlineLogin(ctx, "demo", []byte("demo123"))
	require.NoError(t, err)
	require.True(t, sess.Online)
	require.Equal(t, int64(7), sess.User.ID)
	require.NotNil(t, sess.Profile)
	require.Equal(t, int64(1), sess.Profile.Level)
	require.Equal(t, "tok-demo", c.token)

	token, userID, ok, err := store.Session(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-demo", token)
	require.Equal(t, int64(7), userID)

	u, err := store.User(ctx, 7)
	require.NoError(t, err)
	require.True(t, common.CheckCredential(u.Password, []byte("demo123")))
	require.NotContains(t, u.Password, "demo123")
}

func TestOnlineLogin_WrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeAuthClient(), newLocal(t), logging.NewNop())

	_, err := svc.OnlineLogin(context.Background(), "demo", []byte("nope"))
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestOfflineLogin_AfterOnlineLogin(t *testing.T) {
	ctx := context.Background()
	store := newLocal(t)
	c := newFakeAuthClient()
	svc := NewAuthService(c, store, logging.NewNop())

	_, err := svc.OnlineLogin(ctx, "demo", []byte("demo123"))
	require.NoError(t, err)

	c.down = true
	_, err = svc.OnlineLogin(ctx, "demo", []byte("demo123"))
	require.ErrorIs(t, err, client.ErrUnavailable)

	sess, err := svc.OfflineLogin(ctx, "DEMO", []byte("demo123"))
	require.NoError(t, err)
	require.False(t, sess.Online)
	require.Equal(t, "demo", sess.User.Username)
	require.Empty(t, c.token)

	_, err = svc.OfflineLogin(ctx, "demo", []byte("wrong"))
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	token, _, ok, err := store.Session(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, token)
}

func TestOfflineLogin_UnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeAuthClient(), newLocal(t), logging.NewNop())
	_, err := svc.OfflineLogin(context.Background(), "ghost", []byte("x"))
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_LogsIn(t *testing.T) {
	ctx := context.Background()
	c := newFakeAuthClient()
	svc := NewAuthService(c, newLocal(t), logging.NewNop())

	req := api.RegisterRequest{Username: "alice", Password: "secret1", Email: "a@example.com"}
	sess, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "alice", sess.User.Username)
	require.Equal(t, "tok-alice", c.token)
	require.Equal(t, req, c.lastReq)

	c.register = &client.TransportError{Op: "register", StatusCode: 409, Err: client.ErrRejected}
	_, err = svc.Register(ctx, api.RegisterRequest{Username: "bob", Password: "secret1"})
	require.ErrorIs(t, err, client.ErrRejected)
}

func TestRestoreAndLogout(t *testing.T) {
	ctx := context.Background()
	store := newLocal(t)
	c := newFakeAuthClient()
	svc := NewAuthService(c, store, logging.NewNop())

	_, err := svc.Restore(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	_, err = svc.OnlineLogin(ctx, "demo", []byte("demo123"))
	require.NoError(t, err)

	// a new process starts with a fresh transport
	c2 := newFakeAuthClient()
	sess, err := NewAuthService(c2, store, logging.NewNop()).Restore(ctx)
	require.NoError(t, err)
	require.True(t, sess.Online)
	require.Equal(t, "tok-demo", c2.token)

	require.NoError(t, svc.Logout(ctx))
	require.Empty(t, c.token)
	_, err = svc.Restore(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	// the mirrored account survives logout
	_, err = svc.OfflineLogin(ctx, "demo", []byte("demo123"))
	require.NoError(t, err)
}

func TestEnsureMirrored_AfterPullDroppedUser(t *testing.T) {
	ctx := context.Background()
	store := newLocal(t)
	svc := NewAuthService(newFakeAuthClient(), store, logging.NewNop())

	sess, err := svc.OnlineLogin(ctx, "demo", []byte("demo123"))
	require.NoError(t, err)

	require.NoError(t, store.Replace(ctx, vocabularyBlob(t, "apple"), 100))
	_, err = store.User(ctx, sess.User.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, svc.EnsureMirrored(ctx, sess))
	_, err = svc.OfflineLogin(ctx, "demo", []byte("demo123"))
	require.NoError(t, err)

	require.NoError(t, svc.EnsureMirrored(ctx, sess))
}

func TestPingAndClose(t *testing.T) {
	ctx := context.Background()
	c := newFakeAuthClient()
	svc := NewAuthService(c, newLocal(t), logging.NewNop())

	require.NoError(t, svc.Ping(ctx))
	c.down = true
	require.ErrorIs(t, svc.Ping(ctx), client.ErrUnavailable)
	require.Equal(t, 2, c.pings)

	require.NoError(t, svc.Close(ctx))
	require.True(t, c.closed)
}
