// Package models holds the rows persisted by the sync server.
package models
