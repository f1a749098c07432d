package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
)

const (
	// TranslateGame is the game id of the translation game.
	TranslateGame  = "translate"
	gameRounds     = 10
	pointsPerRound = 10
	quizQuestions  = 10
	quizOptions    = 4
)

func parseID(args []string, i int, what string) (int64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s id", what)
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, args[i])
	}
	return id, nil
}

func (a *App) userID() int64 {
	if s := a.currentSession(); s != nil {
		return s.User.ID
	}
	return 0
}

func (a *App) categoryWords(ctx context.Context, args []string) ([]models.Word, error) {
	id, err := parseID(args, 0, "category")
	if err != nil {
		return nil, err
	}
	words, err := a.learningService.Words(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.New("no words in this category, try 'sync' first")
	}
	return words, nil
}

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.learningService.Categories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		printlnFn("No categories yet, try 'sync' first")
		return nil
	}
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Description})
	}
	printlnFn(renderTable([]string{"ID", "Name", "Description"}, rows))
	return nil
}

func (a *App) Words(ctx context.Context, args []string) error {
	words, err := a.categoryWords(ctx, args)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(words))
	for _, w := range words {
		rows = append(rows, []string{w.English, w.Turkish, strings.Repeat("*", w.Difficulty), w.ExampleSentence})
	}
	printlnFn(renderTable([]string{"English", "Turkish", "Level", "Example"}, rows))
	return nil
}

func isCorrect(answer, want string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(want))
}

// Review walks through a category word by word. An empty answer stops.
func (a *App) Review(ctx context.Context, args []string) error {
	words, err := a.categoryWords(ctx, args)
	if err != nil {
		return err
	}

	reviewed := 0
	for _, w := range words {
		answer, err := getSimpleText(a.reader, fmt.Sprintf("%s → Turkish? (empty line to stop)", w.English), a.out)
		if err != nil {
			return err
		}
		if answer == "" {
			break
		}
		correct := isCorrect(answer, w.Turkish)
		p, err := a.learningService.ReviewWord(ctx, a.userID(), w.ID, correct)
		if err != nil {
			return err
		}
		reviewed++

		line := fmt.Sprintf("familiarity %d/%d", p.FamiliarityLevel, models.MaxFamiliarity)
		if p.IsLearned {
			line += ", learned"
		}
		if correct {
			printlnFn(okStyle.Render("Correct!") + " " + mutedStyle.Render(line))
		} else {
			printlnFn(errStyle.Render("Wrong, it is "+w.Turkish) + " " + mutedStyle.Render(line))
		}
	}
	printlnFn(fmt.Sprintf("Reviewed %d word(s)", reviewed))
	return nil
}

// Game asks up to ten random words of a category. Every correct answer is
// worth ten points.
func (a *App) Game(ctx context.Context, args []string) error {
	words, err := a.categoryWords(ctx, args)
	if err != nil {
		return err
	}
	words = slices.Clone(words)
	a.shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	words = words[:min(gameRounds, len(words))]

	score := 0
	for i, w := range words {
		answer, err := getSimpleText(a.reader, fmt.Sprintf("[%d/%d] %s → Turkish?", i+1, len(words), w.English), a.out)
		if err != nil {
			return err
		}
		if isCorrect(answer, w.Turkish) {
			score += pointsPerRound
			printlnFn(okStyle.Render("Correct!"))
		} else {
			printlnFn(errStyle.Render("Wrong, it is " + w.Turkish))
		}
	}

	s := a.currentSession()
	prevLevel := int64(1)
	if s.Profile != nil {
		prevLevel = s.Profile.Level
	}
	out, err := a.learningService.FinishGame(ctx, s.User.ID, TranslateGame, score, prevLevel)
	if err != nil {
		return err
	}
	a.mu.Lock()
	s.Profile = out.Profile
	a.mu.Unlock()

	printlnFn(titleStyle.Render(fmt.Sprintf("Score: %d", score)))
	if out.NewHighScore {
		printlnFn(okStyle.Render("New personal best!"))
	}
	if out.LevelUp {
		printlnFn(okStyle.Render(fmt.Sprintf("Level up! You are now level %d", out.Profile.Level)))
	}
	return nil
}

// Quiz runs a multiple choice quiz built from the category's words. The
// optional second argument picks a quiz of the category by id.
func (a *App) Quiz(ctx context.Context, args []string) error {
	catID, err := parseID(args, 0, "category")
	if err != nil {
		return err
	}
	quizzes, err := a.learningService.Quizzes(ctx, catID)
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		return errors.New("no quizzes in this category")
	}
	quiz := quizzes[0]
	if len(args) > 1 {
		id, err := parseID(args, 1, "quiz")
		if err != nil {
			return err
		}
		i := slices.IndexFunc(quizzes, func(q models.Quiz) bool { return q.ID == id })
		if i < 0 {
			return fmt.Errorf("quiz %d is not in category %d", id, catID)
		}
		quiz = quizzes[i]
	}

	words, err := a.learningService.Words(ctx, catID)
	if err != nil {
		return err
	}
	if len(words) < 2 {
		return errors.New("not enough words for a quiz")
	}

	printlnFn(titleStyle.Render(quiz.Title))
	start := a.now()

	questions := slices.Clone(words)
	a.shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
	questions = questions[:min(quizQuestions, len(questions))]

	correct := 0
	for i, w := range questions {
		options := a.quizOptions(words, w)
		lines := []string{fmt.Sprintf("[%d/%d] %s", i+1, len(questions), w.English)}
		for n, o := range options {
			lines = append(lines, fmt.Sprintf("  %d) %s", n+1, o))
		}
		answer, err := getSimpleText(a.reader, strings.Join(lines, "\n"), a.out)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) && options[n-1] == w.Turkish {
			correct++
			printlnFn(okStyle.Render("Correct!"))
		} else {
			printlnFn(errStyle.Render("Wrong, it is " + w.Turkish))
		}
	}

	score := correct * 100 / len(questions)
	if _, err := a.learningService.FinishQuiz(ctx, a.userID(), quiz.ID, score, a.now().Sub(start)); err != nil {
		return err
	}
	printlnFn(titleStyle.Render(fmt.Sprintf("Quiz finished: %d/%d correct, score %d", correct, len(questions), score)))
	return nil
}

// quizOptions returns the right translation of w and up to three others in
// shuffled order.
func (a *App) quizOptions(words []models.Word, w models.Word) []string {
	others := make([]string, 0, len(words))
	for _, o := range words {
		if o.ID != w.ID && o.Turkish != w.Turkish && !slices.Contains(others, o.Turkish) {
			others = append(others, o.Turkish)
		}
	}
	a.shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	options := append([]string{w.Turkish}, others[:min(quizOptions-1, len(others))]...)
	a.shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}
