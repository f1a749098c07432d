// Package api holds the JSON bodies exchanged between the client and the
// sync server, plus the route paths both sides agree on.
package api

import "time"

const (
	PathHealth     = "/healthz"
	PathRegister   = "/auth/register"
	PathLogin      = "/auth/login"
	PathLastUpdate = "/database/last-update"
	PathDownload   = "/database/download"
	PathUpload     = "/database/upload"
)

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// User is the public view of an account.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	IsStaff    bool      `json:"is_staff"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LastUpdateResponse carries an ISO8601 timestamp.
type LastUpdateResponse struct {
	LastUpdate string `json:"last_update"`
}

// UploadRequest carries the snapshot as standard base64.
type UploadRequest struct {
	Database string `json:"database" validate:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
