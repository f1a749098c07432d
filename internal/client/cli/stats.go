package cli

import (
	"context"
	"fmt"
	"strconv"
)

func (a *App) Stats(ctx context.Context) error {
	st, err := a.learningService.Stats(ctx, a.userID())
	if err != nil {
		return err
	}
	rows := [][]string{
		{"Level", strconv.FormatInt(st.Level, 10)},
		{"Points", strconv.FormatInt(st.Points, 10)},
		{"Words learned", strconv.Itoa(st.WordsLearned)},
		{"Words in progress", strconv.Itoa(st.WordsInProgress())},
		{"Quizzes taken", strconv.Itoa(st.QuizzesTaken)},
		{"Average quiz score", fmt.Sprintf("%.1f", st.AverageQuizScore)},
	}
	printlnFn(renderTable([]string{"Statistic", "Value"}, rows))
	return nil
}

// Scores prints the top ten of a game, the translation game by default.
func (a *App) Scores(ctx context.Context, args []string) error {
	gameID := TranslateGame
	if len(args) > 0 {
		gameID = args[0]
	}
	top, err := a.learningService.HighScores(ctx, gameID, 10)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		printlnFn("No scores yet for " + gameID)
		return nil
	}
	rows := make([][]string, 0, len(top))
	for i, h := range top {
		rows = append(rows, []string{strconv.Itoa(i + 1), h.Username, strconv.Itoa(h.Score), h.CreatedAt.Time().Local().Format("2006-01-02")})
	}
	printlnFn(renderTable([]string{"#", "Player", "Score", "Date"}, rows))
	return nil
}

// Status shows who is logged in, the connectivity and the last sync.
func (a *App) Status(ctx context.Context) error {
	user := "not logged in"
	session := ""
	if s := a.currentSession(); s != nil {
		user = s.User.Username
		session = "offline"
		if s.Online {
			session = "online"
		}
	}
	mode := string(a.getMode())
	if mode == "" {
		mode = "unknown"
	}

	wm, _, err := a.store.Watermark(ctx)
	if err != nil {
		return err
	}

	rows := [][]string{
		{"User", user},
		{"Server", mode},
		{"Last sync", formatWatermark(wm)},
	}
	if session != "" {
		rows = append(rows, []string{"Session", session})
	}
	printlnFn(renderTable([]string{"", ""}, rows))
	return nil
}
