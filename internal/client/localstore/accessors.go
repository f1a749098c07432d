package localstore

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/wordmaster/internal/client/repositories/progress"
	"github.com/dmitrijs2005/wordmaster/internal/client/repositories/scores"
	"github.com/dmitrijs2005/wordmaster/internal/client/repositories/vocabulary"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
)

// MirrorUser stores an account received from the server and makes sure it
// has a profile. It does not move the watermark.
func (s *Store) MirrorUser(ctx context.Context, u models.User) (*models.Profile, error) {
	var p *models.Profile
	err := s.write(ctx, "mirror user", func(ctx context.Context, tx dbx.DBTX) error {
		repo := accounts.NewSQLiteRepository(tx)
		if err := repo.UpsertUser(ctx, u); err != nil {
			return err
		}
		var err error
		p, err = repo.EnsureProfile(ctx, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Login looks up an active user by username and stored credential digest.
// A miss is reported as common.ErrInvalidCredentials.
// Login checks password against the mirrored account. Unknown, inactive
// and mismatching accounts all report common.ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	u, err := accounts.NewSQLiteRepository(s.db).GetUserByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageErr("login", err)
	}
	if !u.IsActive || !common.CheckCredential(u.Password, password) {
		return nil, common.ErrInvalidCredentials
	}
	return u, nil
}

func (s *Store) User(ctx context.Context, id int64) (*models.User, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	u, err := accounts.NewSQLiteRepository(s.db).GetUserByID(ctx, id)
	return u, storageErr("get user", err)
}

func (s *Store) ProfileByUser(ctx context.Context, userID int64) (*models.Profile, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	p, err := accounts.NewSQLiteRepository(s.db).GetProfileByUser(ctx, userID)
	return p, storageErr("get profile", err)
}

// AddPoints credits earned points to the user's profile and recomputes the
// level.
func (s *Store) AddPoints(ctx context.Context, userID int64, earned int64) (*models.Profile, error) {
	var out models.Profile
	err := s.write(ctx, "add points", func(ctx context.Context, tx dbx.DBTX) error {
		repo := accounts.NewSQLiteRepository(tx)
		p, err := repo.EnsureProfile(ctx, userID)
		if err != nil {
			return err
		}
		out = p.WithPoints(earned)
		if err := repo.UpdateProfile(ctx, out); err != nil {
			return err
		}
		return touch(ctx, tx, s.now())
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	c, err := vocabulary.NewSQLiteRepository(s.db).Categories(ctx)
	return c, storageErr("list categories", err)
}

func (s *Store) WordsByCategory(ctx context.Context, categoryID int64) ([]models.Word, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	w, err := vocabulary.NewSQLiteRepository(s.db).WordsByCategory(ctx, categoryID)
	return w, storageErr("list words", err)
}

func (s *Store) Word(ctx context.Context, id int64) (*models.Word, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	w, err := vocabulary.NewSQLiteRepository(s.db).WordByID(ctx, id)
	return w, storageErr("get word", err)
}

func (s *Store) QuizzesByCategory(ctx context.Context, categoryID int64) ([]models.Quiz, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	q, err := vocabulary.NewSQLiteRepository(s.db).QuizzesByCategory(ctx, categoryID)
	return q, storageErr("list quizzes", err)
}

func (s *Store) Quiz(ctx context.Context, id int64) (*models.Quiz, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	q, err := vocabulary.NewSQLiteRepository(s.db).QuizByID(ctx, id)
	return q, storageErr("get quiz", err)
}

func (s *Store) ProgressByUser(ctx context.Context, userID int64) ([]models.UserWordProgress, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	p, err := progress.NewSQLiteRepository(s.db).ListByUser(ctx, userID)
	return p, storageErr("list progress", err)
}

func (s *Store) Progress(ctx context.Context, userID, wordID int64) (*models.UserWordProgress, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	p, err := progress.NewSQLiteRepository(s.db).Get(ctx, userID, wordID)
	return p, storageErr("get progress", err)
}

// UpsertUserWordProgress applies u to the (user, word) row, creating it on
// first review. Familiarity is clamped to [0,5], never lowered by a correct
// answer, and a level of 4 or more marks the word learned.
func (s *Store) UpsertUserWordProgress(ctx context.Context, u models.ProgressUpdate) (models.UserWordProgress, error) {
	var out models.UserWordProgress
	err := s.write(ctx, "upsert progress", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if out, err = progress.NewSQLiteRepository(tx).Upsert(ctx, u); err != nil {
			return err
		}
		return touch(ctx, tx, s.now())
	})
	return out, err
}

// RecordGameScoreIfHigher stores score for (user, game) only when it beats
// the stored best and reports whether a write happened.
func (s *Store) RecordGameScoreIfHigher(ctx context.Context, userID int64, gameID string, score int) (bool, error) {
	now := s.now()
	g, err := models.NewGameScore(userID, gameID, score, now)
	if err != nil {
		return false, err
	}

	var wrote bool
	err = s.write(ctx, "record game score", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if wrote, err = scores.NewSQLiteRepository(tx).RecordIfHigher(ctx, g); err != nil || !wrote {
			return err
		}
		return touch(ctx, tx, now)
	})
	return wrote, err
}

// RecordQuizResult appends a completed quiz attempt.
func (s *Store) RecordQuizResult(ctx context.Context, r models.QuizResult) (int64, error) {
	var id int64
	err := s.write(ctx, "record quiz result", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if id, err = scores.NewSQLiteRepository(tx).InsertQuizResult(ctx, r); err != nil {
			return err
		}
		return touch(ctx, tx, s.now())
	})
	return id, err
}

func (s *Store) QuizResultsByUser(ctx context.Context, userID int64) ([]models.QuizResult, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	r, err := scores.NewSQLiteRepository(s.db).QuizResultsByUser(ctx, userID)
	return r, storageErr("list quiz results", err)
}

func (s *Store) GameScore(ctx context.Context, userID int64, gameID string) (*models.GameScore, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	g, err := scores.NewSQLiteRepository(s.db).GameScore(ctx, userID, gameID)
	return g, storageErr("get game score", err)
}

func (s *Store) TopGameScores(ctx context.Context, gameID string, limit int) ([]models.HighScore, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	h, err := scores.NewSQLiteRepository(s.db).TopScores(ctx, gameID, limit)
	return h, storageErr("list top scores", err)
}

// Stats gathers the learning summary of a user. A missing profile counts
// as zero points at level 1.
func (s *Store) Stats(ctx context.Context, userID int64) (models.Stats, error) {
	if err := s.checkReady(); err != nil {
		return models.Stats{}, err
	}
	st := models.Stats{Level: 1}

	p, err := accounts.NewSQLiteRepository(s.db).GetProfileByUser(ctx, userID)
	switch {
	case err == nil:
		st.Points, st.Level = p.Points, p.Level
	case !errors.Is(err, common.ErrNotFound):
		return models.Stats{}, storageErr("stats", err)
	}

	if st.WordsReviewed, st.WordsLearned, err = progress.NewSQLiteRepository(s.db).Counts(ctx, userID); err != nil {
		return models.Stats{}, storageErr("stats", err)
	}
	if st.QuizzesTaken, st.AverageQuizScore, err = scores.NewSQLiteRepository(s.db).QuizSummary(ctx, userID); err != nil {
		return models.Stats{}, storageErr("stats", err)
	}
	return st, nil
}
