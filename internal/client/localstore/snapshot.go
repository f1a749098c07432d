package localstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/wordmaster/internal/client/snapshot"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
)

// table maps one snapshot array to its SQL table.
type table struct {
	name    string
	columns []string
	dest    func(d *snapshot.Document) any
	rows    func(d *snapshot.Document) []any
}

func rowsOf[T any](s []T) []any {
	out := make([]any, len(s))
	for i := range s {
		out[i] = s[i]
	}
	return out
}

// tables is in dependency order: parents before children.
var tables = []table{
	{
		name:    "users",
		columns: []string{"id", "username", "password", "first_name", "last_name", "email", "is_staff", "is_active", "date_joined"},
		dest:    func(d *snapshot.Document) any { return &d.Users },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.Users) },
	},
	{
		name:    "profiles",
		columns: []string{"id", "user_id", "bio", "profile_pic", "points", "level", "experience_points"},
		dest:    func(d *snapshot.Document) any { return &d.Profiles },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.Profiles) },
	},
	{
		name:    "categories",
		columns: []string{"id", "name", "description", "image"},
		dest:    func(d *snapshot.Document) any { return &d.Categories },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.Categories) },
	},
	{
		name:    "words",
		columns: []string{"id", "category_id", "english", "turkish", "example_sentence", "pronunciation", "difficulty"},
		dest:    func(d *snapshot.Document) any { return &d.Words },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.Words) },
	},
	{
		name:    "quizzes",
		columns: []string{"id", "category_id", "title", "description", "difficulty"},
		dest:    func(d *snapshot.Document) any { return &d.Quizzes },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.Quizzes) },
	},
	{
		name:    "user_words",
		columns: []string{"id", "user_id", "word_id", "is_learned", "familiarity_level", "last_practiced"},
		dest:    func(d *snapshot.Document) any { return &d.UserWords },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.UserWords) },
	},
	{
		name:    "quiz_results",
		columns: []string{"id", "user_id", "quiz_id", "score", "completion_time", "date_taken"},
		dest:    func(d *snapshot.Document) any { return &d.QuizResults },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.QuizResults) },
	},
	{
		name:    "game_scores",
		columns: []string{"id", "user_id", "game_id", "score", "created_at"},
		dest:    func(d *snapshot.Document) any { return &d.GameScores },
		rows:    func(d *snapshot.Document) []any { return rowsOf(d.GameScores) },
	},
}

func (t table) selectQuery() string {
	return "SELECT " + strings.Join(t.columns, ", ") + " FROM " + t.name + " ORDER BY id"
}

func (t table) insertQuery() string {
	return "INSERT INTO " + t.name + " (" + strings.Join(t.columns, ", ") + ") VALUES (:" +
		strings.Join(t.columns, ", :") + ")"
}

// ExportAll serializes every snapshot table into one blob. The watermark
// and session are not included.
func (s *Store) ExportAll(ctx context.Context) ([]byte, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}

	doc := snapshot.New(models.NewUnixTime(s.now()))
	err := dbx.WithTxx(ctx, s.x, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		for _, t := range tables {
			if err := tx.SelectContext(ctx, t.dest(doc), t.selectQuery()); err != nil {
				return fmt.Errorf("read %s: %w", t.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("export", err)
	}

	blob, err := snapshot.Encode(doc)
	if err != nil {
		return nil, storageErr("export", err)
	}
	s.log.Debug(ctx, "local store exported", "rows", doc.Rows(), "bytes", len(blob))
	return blob, nil
}

// ImportAll replaces every snapshot table with the content of blob. The
// blob is fully decoded and validated first; a rejected blob leaves the
// store untouched and returns ErrImportConsistency.
func (s *Store) ImportAll(ctx context.Context, blob []byte) error {
	return s.replace(ctx, blob, nil)
}

// Replace is ImportAll plus setting the watermark in the same transaction.
func (s *Store) Replace(ctx context.Context, blob []byte, watermark int64) error {
	return s.replace(ctx, blob, &watermark)
}

func (s *Store) replace(ctx context.Context, blob []byte, watermark *int64) error {
	if err := s.checkReady(); err != nil {
		return err
	}

	doc, err := snapshot.Decode(blob)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImportConsistency, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = dbx.WithTxx(ctx, s.x, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+tables[i].name); err != nil {
				return fmt.Errorf("clear %s: %w", tables[i].name, err)
			}
		}
		for _, t := range tables {
			query := t.insertQuery()
			for _, row := range t.rows(doc) {
				if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
					return fmt.Errorf("insert into %s: %w", t.name, err)
				}
			}
		}
		if watermark != nil {
			return metadata.NewSQLiteRepository(tx).SetInt64(ctx, metadata.KeyLastUpdate, *watermark)
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "snapshot import failed", "error", err)
		return storageErr("import", err)
	}

	s.log.Info(ctx, "local store replaced", "rows", doc.Rows())
	return nil
}
