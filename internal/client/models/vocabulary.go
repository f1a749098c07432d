package models

// Difficulty tiers used to stratify question selection.
const (
	DifficultyEasy   = 1
	DifficultyMedium = 2
	DifficultyHard   = 3
)

type Category struct {
	ID          int64  `db:"id" json:"id" validate:"gt=0"`
	Name        string `db:"name" json:"name" validate:"required,max=100"`
	Description string `db:"description" json:"description"`
	Image       string `db:"image" json:"image"`
}

func (c Category) Validate() error { return validateRecord("category", c) }

type Word struct {
	ID              int64  `db:"id" json:"id" validate:"gt=0"`
	CategoryID      int64  `db:"category_id" json:"category_id" validate:"gt=0"`
	English         string `db:"english" json:"english" validate:"required,max=100"`
	Turkish         string `db:"turkish" json:"turkish" validate:"required,max=100"`
	ExampleSentence string `db:"example_sentence" json:"example_sentence"`
	Pronunciation   string `db:"pronunciation" json:"pronunciation"`
	Difficulty      int    `db:"difficulty" json:"difficulty" validate:"min=1,max=3"`
}

func (w Word) Validate() error { return validateRecord("word", w) }

type Quiz struct {
	ID          int64  `db:"id" json:"id" validate:"gt=0"`
	CategoryID  int64  `db:"category_id" json:"category_id" validate:"gt=0"`
	Title       string `db:"title" json:"title" validate:"required,max=200"`
	Description string `db:"description" json:"description"`
	Difficulty  int    `db:"difficulty" json:"difficulty" validate:"min=1,max=3"`
}

func (q Quiz) Validate() error { return validateRecord("quiz", q) }
