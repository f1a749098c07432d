package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
)

const (
	userColumns    = `id, username, password, first_name, last_name, email, is_staff, is_active, date_joined`
	profileColumns = `id, user_id, bio, profile_pic, points, level, experience_points`
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) UpsertUser(ctx context.Context, u models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username    = excluded.username,
			password    = excluded.password,
			first_name  = excluded.first_name,
			last_name   = excluded.last_name,
			email       = excluded.email,
			is_staff    = excluded.is_staff,
			is_active   = excluded.is_active,
			date_joined = excluded.date_joined
	`, u.ID, u.Username, u.Password, u.FirstName, u.LastName, u.Email, u.IsStaff, u.IsActive, u.DateJoined)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.FirstName, &u.LastName,
		&u.Email, &u.IsStaff, &u.IsActive, &u.DateJoined)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	return u, nil
}

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Bio, &p.ProfilePic, &p.Points, &p.Level, &p.ExperiencePoints)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepository) GetProfileByUser(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile of user %d: %w", userID, err)
	}
	return p, nil
}

func (r *SQLiteRepository) EnsureProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile of user %d: %w", userID, err)
	}
	return r.GetProfileByUser(ctx, userID)
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, p models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET bio = ?, profile_pic = ?, points = ?, level = ?, experience_points = ?
		WHERE id = ? AND user_id = ?
	`, p.Bio, p.ProfilePic, p.Points, p.Level, p.ExperiencePoints, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile %d: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
