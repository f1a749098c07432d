// Package services contains the application services of the wordmaster
// client: authentication, learning activity and database sync.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
)

// ErrNoSession means no login was saved on this device.
var ErrNoSession = errors.New("no saved session")

// AuthClient is the part of the transport used for accounts.
type AuthClient interface {
	Ping(ctx context.Context) error
	Close() error
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
	SetToken(token string)
}

// AuthStore is the part of the local store used for accounts.
type AuthStore interface {
	MirrorUser(ctx context.Context, u models.User) (*models.Profile, error)
	Login(ctx context.Context, username string, password []byte) (*models.User, error)
	User(ctx context.Context, id int64) (*models.User, error)
	ProfileByUser(ctx context.Context, userID int64) (*models.Profile, error)
	Session(ctx context.Context) (token string, userID int64, ok bool, err error)
	SaveSession(ctx context.Context, token string, userID int64) error
	ClearSession(ctx context.Context) error
}

// Session is the logged in user. Online is false for offline logins, which
// cannot sync until the next online login.
type Session struct {
	User    models.User
	Profile *models.Profile
	Online  bool
}

// AuthService defines authentication operations for the CLI.
//
//   - OnlineLogin authenticates against the server and mirrors the account
//     locally so that later logins work offline.
//   - OfflineLogin checks credentials against the mirrored account.
//   - Register creates the account on the server and logs in.
//   - Restore resumes the session saved by a previous run.
type AuthService interface {
	OnlineLogin(ctx context.Context, username string, password []byte) (*Session, error)
	OfflineLogin(ctx context.Context, username string, password []byte) (*Session, error)
	Register(ctx context.Context, req api.RegisterRequest) (*Session, error)
	Restore(ctx context.Context) (*Session, error)
	EnsureMirrored(ctx context.Context, s *Session) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client AuthClient
	store  AuthStore
	log    logging.Logger
}

func NewAuthService(c AuthClient, store AuthStore, log logging.Logger) AuthService {
	return &authService{client: c, store: store, log: log}
}

func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) (*Session, error) {
	resp, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return nil, fmt.Errorf("login error: %w: %w", common.ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("login error: %w", err)
	}
	return a.establish(ctx, resp, password)
}

func (a *authService) Register(ctx context.Context, req api.RegisterRequest) (*Session, error) {
	resp, err := a.client.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return a.establish(ctx, resp, []byte(req.Password))
}

// establish mirrors the server account and saves the session.
func (a *authService) establish(ctx context.Context, resp *api.AuthResponse, password []byte) (*Session, error) {
	digest, err := common.CredentialDigest(password)
	if err != nil {
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}
	u := models.User{
		ID:         resp.User.ID,
		Username:   resp.User.Username,
		Password:   digest,
		FirstName:  resp.User.FirstName,
		LastName:   resp.User.LastName,
		Email:      resp.User.Email,
		IsStaff:    resp.User.IsStaff,
		IsActive:   resp.User.IsActive,
		DateJoined: models.NewUnixTime(resp.User.DateJoined),
	}

	profile, err := a.store.MirrorUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}
	if err := a.store.SaveSession(ctx, resp.Token, u.ID); err != nil {
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}
	a.client.SetToken(resp.Token)

	a.log.Info(ctx, "logged in", "user", u.Username, "mode", "online")
	return &Session{User: u, Profile: profile, Online: true}, nil
}

func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) (*Session, error) {
	u, err := a.store.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	profile, err := a.store.ProfileByUser(ctx, u.ID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if err := a.store.SaveSession(ctx, "", u.ID); err != nil {
		return nil, err
	}
	a.client.SetToken("")

	a.log.Info(ctx, "logged in", "user", u.Username, "mode", "offline")
	return &Session{User: *u, Profile: profile}, nil
}

func (a *authService) Restore(ctx context.Context) (*Session, error) {
	token, userID, ok, err := a.store.Session(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSession
	}

	u, err := a.store.User(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	profile, err := a.store.ProfileByUser(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	a.client.SetToken(token)
	return &Session{User: *u, Profile: profile, Online: token != ""}, nil
}

// EnsureMirrored puts the session user back into the local store when a
// pulled snapshot did not contain it.
func (a *authService) EnsureMirrored(ctx context.Context, s *Session) error {
	_, err := a.store.User(ctx, s.User.ID)
	if err == nil || !errors.Is(err, common.ErrNotFound) {
		return err
	}
	profile, err := a.store.MirrorUser(ctx, s.User)
	if err != nil {
		return err
	}
	s.Profile = profile
	return nil
}

// Logout forgets the saved session. The mirrored account stays so that
// offline login keeps working.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetToken("")
	return a.store.ClearSession(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
