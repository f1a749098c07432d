// Package scores stores quiz results and per-game high scores.
//
// Quiz results are append-only. Game scores keep one row per (user, game)
// that is only replaced by a strictly greater score.
package scores

import (
	"context"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
)

type Repository interface {
	InsertQuizResult(ctx context.Context, r models.QuizResult) (int64, error)
	QuizResultsByUser(ctx context.Context, userID int64) ([]models.QuizResult, error)
	// QuizSummary returns the attempt count and the mean score.
	QuizSummary(ctx context.Context, userID int64) (count int, average float64, err error)

	// GameScore returns common.ErrNotFound when the user never played gameID.
	GameScore(ctx context.Context, userID int64, gameID string) (*models.GameScore, error)
	// RecordIfHigher writes g only when it beats the stored score and
	// reports whether it did. Run it inside a transaction.
	RecordIfHigher(ctx context.Context, g models.GameScore) (bool, error)
	TopScores(ctx context.Context, gameID string, limit int) ([]models.HighScore, error)
}
