package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
)

// LearningStore is the part of the local store used while studying.
type LearningStore interface {
	Categories(ctx context.Context) ([]models.Category, error)
	WordsByCategory(ctx context.Context, categoryID int64) ([]models.Word, error)
	QuizzesByCategory(ctx context.Context, categoryID int64) ([]models.Quiz, error)
	Quiz(ctx context.Context, id int64) (*models.Quiz, error)
	Progress(ctx context.Context, userID, wordID int64) (*models.UserWordProgress, error)
	UpsertUserWordProgress(ctx context.Context, u models.ProgressUpdate) (models.UserWordProgress, error)
	RecordGameScoreIfHigher(ctx context.Context, userID int64, gameID string, score int) (bool, error)
	AddPoints(ctx context.Context, userID int64, earned int64) (*models.Profile, error)
	RecordQuizResult(ctx context.Context, r models.QuizResult) (int64, error)
	TopGameScores(ctx context.Context, gameID string, limit int) ([]models.HighScore, error)
	Stats(ctx context.Context, userID int64) (models.Stats, error)
}

// GameOutcome is what finishing a game changed.
type GameOutcome struct {
	NewHighScore bool
	Profile      *models.Profile
	LevelUp      bool
}

type LearningService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Words(ctx context.Context, categoryID int64) ([]models.Word, error)
	Quizzes(ctx context.Context, categoryID int64) ([]models.Quiz, error)
	ReviewWord(ctx context.Context, userID, wordID int64, correct bool) (models.UserWordProgress, error)
	FinishGame(ctx context.Context, userID int64, gameID string, score int, previousLevel int64) (GameOutcome, error)
	FinishQuiz(ctx context.Context, userID, quizID int64, score int, took time.Duration) (int64, error)
	HighScores(ctx context.Context, gameID string, limit int) ([]models.HighScore, error)
	Stats(ctx context.Context, userID int64) (models.Stats, error)
}

type learningService struct {
	store LearningStore
	log   logging.Logger
	now   func() time.Time
}

func NewLearningService(store LearningStore, log logging.Logger) LearningService {
	return &learningService{store: store, log: log, now: time.Now}
}

func (s *learningService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories(ctx)
}

func (s *learningService) Words(ctx context.Context, categoryID int64) ([]models.Word, error) {
	return s.store.WordsByCategory(ctx, categoryID)
}

func (s *learningService) Quizzes(ctx context.Context, categoryID int64) ([]models.Quiz, error) {
	return s.store.QuizzesByCategory(ctx, categoryID)
}

// ReviewWord moves familiarity one step up on a correct answer and one step
// down on a wrong one.
func (s *learningService) ReviewWord(ctx context.Context, userID, wordID int64, correct bool) (models.UserWordProgress, error) {
	var (
		level   int
		learned bool
	)
	current, err := s.store.Progress(ctx, userID, wordID)
	switch {
	case err == nil:
		level, learned = current.FamiliarityLevel, current.IsLearned
	case !errors.Is(err, common.ErrNotFound):
		return models.UserWordProgress{}, fmt.Errorf("error reading progress: %w", err)
	}

	if correct {
		level++
	} else {
		level--
		learned = false
	}

	u, err := models.NewProgressUpdate(userID, wordID, learned, level, s.now())
	if err != nil {
		return models.UserWordProgress{}, err
	}
	u.Correct = correct

	p, err := s.store.UpsertUserWordProgress(ctx, u)
	if err != nil {
		return models.UserWordProgress{}, fmt.Errorf("error saving progress: %w", err)
	}
	return p, nil
}

// FinishGame records the score if it is a personal best and credits it as
// points to the profile.
func (s *learningService) FinishGame(ctx context.Context, userID int64, gameID string, score int, previousLevel int64) (GameOutcome, error) {
	best, err := s.store.RecordGameScoreIfHigher(ctx, userID, gameID, score)
	if err != nil {
		return GameOutcome{}, fmt.Errorf("error saving score: %w", err)
	}
	p, err := s.store.AddPoints(ctx, userID, int64(score))
	if err != nil {
		return GameOutcome{}, fmt.Errorf("error saving points: %w", err)
	}

	s.log.Debug(ctx, "game finished", "game", gameID, "score", score, "best", best, "level", p.Level)
	return GameOutcome{NewHighScore: best, Profile: p, LevelUp: p.Level > previousLevel}, nil
}

func (s *learningService) FinishQuiz(ctx context.Context, userID, quizID int64, score int, took time.Duration) (int64, error) {
	if _, err := s.store.Quiz(ctx, quizID); err != nil {
		return 0, fmt.Errorf("error reading quiz: %w", err)
	}
	r, err := models.NewQuizResult(userID, quizID, score, took, s.now())
	if err != nil {
		return 0, err
	}
	id, err := s.store.RecordQuizResult(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("error saving quiz result: %w", err)
	}
	return id, nil
}

func (s *learningService) HighScores(ctx context.Context, gameID string, limit int) ([]models.HighScore, error) {
	return s.store.TopGameScores(ctx, gameID, limit)
}

func (s *learningService) Stats(ctx context.Context, userID int64) (models.Stats, error) {
	return s.store.Stats(ctx, userID)
}
