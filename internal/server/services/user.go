// Package services contains server-side business logic: accounts and
// session tokens (UserService) and the snapshot index plus its blobs
// (SnapshotService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/dmitrijs2005/wordmaster/internal/server/auth"
	"github.com/dmitrijs2005/wordmaster/internal/server/config"
	"github.com/dmitrijs2005/wordmaster/internal/server/models"
	"github.com/dmitrijs2005/wordmaster/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// dummyHash is compared against when the account does not exist, so a
// failed login costs the same whether or not the username is taken.
var dummyHash, _ = auth.HashPassword("wordmaster-dummy-password")

// UserService handles registration, login and token verification.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	log                   logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		log:                   log,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates an active account and logs it in. Invalid input wraps
// common.ErrValidation, a taken username is common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return s.issue(u)
}

// Login verifies the password and returns a fresh token. Unknown users,
// wrong passwords and inactive accounts all yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = auth.CheckPassword(dummyHash, password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate resolves a session token to an active account id.
func (s *UserService) Authenticate(ctx context.Context, token string) (int64, error) {
	id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return 0, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, common.ErrUnauthorized
		}
		return 0, fmt.Errorf("error searching user: %w", err)
	}
	if !user.IsActive {
		return 0, common.ErrUnauthorized
	}
	return user.ID, nil
}

func (s *UserService) issue(u *models.User) (*api.AuthResponse, error) {
	token, err := auth.GenerateToken(u.ID, u.Username, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return &api.AuthResponse{Token: token, User: toAPIUser(u)}, nil
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		IsStaff:    u.IsStaff,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined.UTC(),
	}
}
