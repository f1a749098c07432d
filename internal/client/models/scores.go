package models

import "time"

// QuizResult is one completed quiz attempt. Rows are append-only.
type QuizResult struct {
	ID             int64    `db:"id" json:"id" validate:"gte=0"`
	UserID         int64    `db:"user_id" json:"user_id" validate:"gt=0"`
	QuizID         int64    `db:"quiz_id" json:"quiz_id" validate:"gt=0"`
	Score          int      `db:"score" json:"score" validate:"gte=0"`
	CompletionTime int64    `db:"completion_time" json:"completion_time" validate:"gte=0"`
	DateTaken      UnixTime `db:"date_taken" json:"date_taken"`
}

func (r QuizResult) Validate() error { return validateRecord("quiz_result", r) }

// NewQuizResult builds a result for insertion; the ID is assigned by the store.
func NewQuizResult(userID, quizID int64, score int, took time.Duration, at time.Time) (QuizResult, error) {
	r := QuizResult{
		UserID:         userID,
		QuizID:         quizID,
		Score:          score,
		CompletionTime: int64(took / time.Second),
		DateTaken:      NewUnixTime(at),
	}
	if err := r.Validate(); err != nil {
		return QuizResult{}, err
	}
	return r, nil
}

// GameScore is the best score of a user in one game.
type GameScore struct {
	ID        int64    `db:"id" json:"id" validate:"gte=0"`
	UserID    int64    `db:"user_id" json:"user_id" validate:"gt=0"`
	GameID    string   `db:"game_id" json:"game_id" validate:"required,max=64"`
	Score     int      `db:"score" json:"score" validate:"gte=0"`
	CreatedAt UnixTime `db:"created_at" json:"created_at"`
}

func (g GameScore) Validate() error { return validateRecord("game_score", g) }

func NewGameScore(userID int64, gameID string, score int, at time.Time) (GameScore, error) {
	g := GameScore{UserID: userID, GameID: gameID, Score: score, CreatedAt: NewUnixTime(at)}
	if err := g.Validate(); err != nil {
		return GameScore{}, err
	}
	return g, nil
}

// HighScore is a leaderboard line.
type HighScore struct {
	Username  string   `db:"username"`
	GameID    string   `db:"game_id"`
	Score     int      `db:"score"`
	CreatedAt UnixTime `db:"created_at"`
}

// Stats summarizes a user's learning progress.
type Stats struct {
	Points           int64
	Level            int64
	WordsReviewed    int
	WordsLearned     int
	QuizzesTaken     int
	AverageQuizScore float64
}

// WordsInProgress counts reviewed words not yet learned.
func (s Stats) WordsInProgress() int {
	return s.WordsReviewed - s.WordsLearned
}
