package models

import "time"

// User is a server account. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
}
