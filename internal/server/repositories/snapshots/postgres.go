package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
	"github.com/dmitrijs2005/wordmaster/internal/server/models"
)

const snapshotColumns = `id, object_key, size, checksum, uploaded_by, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Snapshot) (*models.Snapshot, error) {
	query :=
		`INSERT INTO snapshots (object_key, size, checksum, uploaded_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	var uploadedBy sql.NullInt64
	if s.UploadedBy != nil {
		uploadedBy = sql.NullInt64{Int64: *s.UploadedBy, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, s.ObjectKey, s.Size, s.Checksum, uploadedBy).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Latest(ctx context.Context) (*models.Snapshot, error) {
	query :=
		`SELECT ` + snapshotColumns + ` FROM snapshots
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`

	s, err := scanSnapshot(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ListExpired(ctx context.Context, keep int) ([]models.Snapshot, error) {
	query :=
		`SELECT ` + snapshotColumns + ` FROM snapshots
		 ORDER BY created_at DESC, id DESC
		 OFFSET $1`

	rows, err := r.db.QueryContext(ctx, query, keep)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*models.Snapshot, error) {
	var (
		s          models.Snapshot
		uploadedBy sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.ObjectKey, &s.Size, &s.Checksum, &uploadedBy, &s.CreatedAt); err != nil {
		return nil, err
	}
	if uploadedBy.Valid {
		id := uploadedBy.Int64
		s.UploadedBy = &id
	}
	return &s, nil
}
