package snapshot

import (
	"fmt"
	"strings"
)

type pair struct {
	a int64
	b string
}

// Validate checks the header, every row, id uniqueness, natural keys and
// foreign references.
func (d *Document) Validate() error {
	if d.Format != Format {
		return fmt.Errorf("%w: unexpected format %q", ErrMalformed, d.Format)
	}
	if d.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformed, d.Version)
	}

	users := make(map[int64]struct{}, len(d.Users))
	usernames := make(map[string]struct{}, len(d.Users))
	for _, u := range d.Users {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if err := unique(users, u.ID, "user"); err != nil {
			return err
		}
		name := strings.ToLower(u.Username)
		if _, ok := usernames[name]; ok {
			return fmt.Errorf("%w: duplicate username %q", ErrMalformed, u.Username)
		}
		usernames[name] = struct{}{}
	}

	profiles := make(map[int64]struct{}, len(d.Profiles))
	profileOwners := make(map[int64]struct{}, len(d.Profiles))
	for _, p := range d.Profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if err := unique(profiles, p.ID, "profile"); err != nil {
			return err
		}
		if err := ref(users, p.UserID, "profile", p.ID, "user"); err != nil {
			return err
		}
		if err := unique(profileOwners, p.UserID, "profile owner"); err != nil {
			return err
		}
	}

	categories := make(map[int64]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if err := unique(categories, c.ID, "category"); err != nil {
			return err
		}
	}

	words := make(map[int64]struct{}, len(d.Words))
	for _, w := range d.Words {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if err := unique(words, w.ID, "word"); err != nil {
			return err
		}
		if err := ref(categories, w.CategoryID, "word", w.ID, "category"); err != nil {
			return err
		}
	}

	quizzes := make(map[int64]struct{}, len(d.Quizzes))
	for _, q := range d.Quizzes {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if err := unique(quizzes, q.ID, "quiz"); err != nil {
			return err
		}
		if err := ref(categories, q.CategoryID, "quiz", q.ID, "category"); err != nil {
			return err
		}
	}

	progress := make(map[int64]struct{}, len(d.UserWords))
	progressKeys := make(map[[2]int64]struct{}, len(d.UserWords))
	for _, p := range d.UserWords {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if err := unique(progress, p.ID, "user_word"); err != nil {
			return err
		}
		if err := ref(users, p.UserID, "user_word", p.ID, "user"); err != nil {
			return err
		}
		if err := ref(words, p.WordID, "user_word", p.ID, "word"); err != nil {
			return err
		}
		key := [2]int64{p.UserID, p.WordID}
		if _, ok := progressKeys[key]; ok {
			return fmt.Errorf("%w: duplicate user_word for user %d word %d", ErrMalformed, p.UserID, p.WordID)
		}
		progressKeys[key] = struct{}{}
	}

	results := make(map[int64]struct{}, len(d.QuizResults))
	for _, r := range d.QuizResults {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if r.ID <= 0 {
			return fmt.Errorf("%w: quiz_result without id", ErrMalformed)
		}
		if err := unique(results, r.ID, "quiz_result"); err != nil {
			return err
		}
		if err := ref(users, r.UserID, "quiz_result", r.ID, "user"); err != nil {
			return err
		}
		if err := ref(quizzes, r.QuizID, "quiz_result", r.ID, "quiz"); err != nil {
			return err
		}
	}

	scores := make(map[int64]struct{}, len(d.GameScores))
	scoreKeys := make(map[pair]struct{}, len(d.GameScores))
	for _, g := range d.GameScores {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if g.ID <= 0 {
			return fmt.Errorf("%w: game_score without id", ErrMalformed)
		}
		if err := unique(scores, g.ID, "game_score"); err != nil {
			return err
		}
		if err := ref(users, g.UserID, "game_score", g.ID, "user"); err != nil {
			return err
		}
		key := pair{g.UserID, g.GameID}
		if _, ok := scoreKeys[key]; ok {
			return fmt.Errorf("%w: duplicate game_score for user %d game %q", ErrMalformed, g.UserID, g.GameID)
		}
		scoreKeys[key] = struct{}{}
	}

	return nil
}

func unique(seen map[int64]struct{}, id int64, kind string) error {
	if _, ok := seen[id]; ok {
		return fmt.Errorf("%w: duplicate %s id %d", ErrMalformed, kind, id)
	}
	seen[id] = struct{}{}
	return nil
}

func ref(targets map[int64]struct{}, id int64, kind string, rowID int64, target string) error {
	if _, ok := targets[id]; !ok {
		return fmt.Errorf("%w: %s %d references missing %s %d", ErrMalformed, kind, rowID, target, id)
	}
	return nil
}
