// Package snapshot defines the transportable form of the whole local
// database: a versioned JSON document with one array per table, gzip
// compressed. Decode validates every row and every reference so a bad
// payload is rejected before the local tables are touched.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
)

const (
	// Format identifies wordmaster snapshots.
	Format = "wordmaster-snapshot"
	// Version is bumped whenever the table layout changes.
	Version = 1
)

// ErrMalformed is wrapped by every Decode and Validate failure.
var ErrMalformed = errors.New("malformed snapshot")

// Document is the full content of the snapshot tables. The metadata table
// is deliberately absent.
type Document struct {
	Format      string                    `json:"format"`
	Version     int                       `json:"version"`
	ExportedAt  models.UnixTime           `json:"exported_at"`
	Users       []models.User             `json:"users"`
	Profiles    []models.Profile          `json:"profiles"`
	Categories  []models.Category         `json:"categories"`
	Words       []models.Word             `json:"words"`
	Quizzes     []models.Quiz             `json:"quizzes"`
	UserWords   []models.UserWordProgress `json:"user_words"`
	QuizResults []models.QuizResult       `json:"quiz_results"`
	GameScores  []models.GameScore        `json:"game_scores"`
}

// New returns an empty document stamped with the current format.
func New(exportedAt models.UnixTime) *Document {
	return &Document{Format: Format, Version: Version, ExportedAt: exportedAt}
}

// Rows returns the total number of rows across all tables.
func (d *Document) Rows() int {
	return len(d.Users) + len(d.Profiles) + len(d.Categories) + len(d.Words) +
		len(d.Quizzes) + len(d.UserWords) + len(d.QuizResults) + len(d.GameScores)
}

// Encode serializes d as gzip-compressed JSON.
func Encode(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(d); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses and validates a blob produced by Encode.
func Decode(blob []byte) (*Document, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
