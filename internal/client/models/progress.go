package models

import "time"

const (
	// MaxFamiliarity is the upper clamp for familiarity levels.
	MaxFamiliarity = 5
	// LearnedThreshold is the familiarity at which a word counts as learned.
	LearnedThreshold = 4
)

// UserWordProgress is the per (user, word) review state.
type UserWordProgress struct {
	ID               int64    `db:"id" json:"id" validate:"gt=0"`
	UserID           int64    `db:"user_id" json:"user_id" validate:"gt=0"`
	WordID           int64    `db:"word_id" json:"word_id" validate:"gt=0"`
	IsLearned        bool     `db:"is_learned" json:"is_learned"`
	FamiliarityLevel int      `db:"familiarity_level" json:"familiarity_level" validate:"min=0,max=5"`
	LastPracticed    UnixTime `db:"last_practiced" json:"last_practiced"`
}

func (p UserWordProgress) Validate() error { return validateRecord("user_word", p) }

// ProgressUpdate is a request to change one progress row. Correct marks a
// correct-answer event: the stored familiarity is then never lowered.
type ProgressUpdate struct {
	UserID           int64 `validate:"gt=0"`
	WordID           int64 `validate:"gt=0"`
	IsLearned        bool
	FamiliarityLevel int
	Correct          bool
	PracticedAt      time.Time
}

// NewProgressUpdate validates the identifiers and clamps the level.
func NewProgressUpdate(userID, wordID int64, isLearned bool, level int, practicedAt time.Time) (ProgressUpdate, error) {
	u := ProgressUpdate{
		UserID:           userID,
		WordID:           wordID,
		IsLearned:        isLearned,
		FamiliarityLevel: ClampFamiliarity(level),
		PracticedAt:      practicedAt,
	}
	if err := validateRecord("progress_update", u); err != nil {
		return ProgressUpdate{}, err
	}
	return u, nil
}

// ClampFamiliarity bounds level to [0, MaxFamiliarity].
func ClampFamiliarity(level int) int {
	return min(max(level, 0), MaxFamiliarity)
}

// Apply computes the row to store for u. existing is nil when the pair has
// never been reviewed; its ID is preserved otherwise.
func (u ProgressUpdate) Apply(existing *UserWordProgress) UserWordProgress {
	level := ClampFamiliarity(u.FamiliarityLevel)
	out := UserWordProgress{
		UserID:        u.UserID,
		WordID:        u.WordID,
		LastPracticed: NewUnixTime(u.PracticedAt),
	}
	if existing != nil {
		out.ID = existing.ID
		if u.Correct && existing.FamiliarityLevel > level {
			level = existing.FamiliarityLevel
		}
	}
	out.FamiliarityLevel = level
	out.IsLearned = u.IsLearned || level >= LearnedThreshold
	return out
}
