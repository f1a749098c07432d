package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/client/config"
	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/client/services"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
)

// captureOutput replaces printlnFn and returns a function yielding
// everything printed so far.
func captureOutput(t *testing.T) func() string {
	t.Helper()
	var (
		mu  sync.Mutex
		buf strings.Builder
	)
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return buf.WriteString(fmt.Sprintln(args...))
	}
	t.Cleanup(func() { printlnFn = orig })
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return buf.String()
	}
}

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func demoSession() *services.Session {
	return &services.Session{
		User:    models.User{ID: 1, Username: "demo", FirstName: "Demo"},
		Profile: &models.Profile{ID: 1, UserID: 1, Points: 90, Level: 1},
		Online:  true,
	}
}

func newTestApp(input ...string) *App {
	return &App{
		log:     logging.NewNop(),
		reader:  readerFromLines(input...),
		out:     io.Discard,
		shuffle: func(int, func(i, j int)) {},
		now:     func() time.Time { return time.Unix(1700000000, 0) },
	}
}

type fakeAuth struct {
	onlineSess  *services.Session
	onlineErr   error
	offlineSess *services.Session
	offlineErr  error
	regReq      api.RegisterRequest
	regErr      error
	restoreSess *services.Session
	restoreErr  error
	mirrored    int
	logoutCalls int
	pingErr     error

	onlineUser, offlineUser string
	onlinePass              []byte
}

func (f *fakeAuth) OnlineLogin(_ context.Context, u string, p []byte) (*services.Session, error) {
	f.onlineUser, f.onlinePass = u, append([]byte(nil), p...)
	return f.onlineSess, f.onlineErr
}

func (f *fakeAuth) OfflineLogin(_ context.Context, u string, _ []byte) (*services.Session, error) {
	f.offlineUser = u
	return f.offlineSess, f.offlineErr
}

func (f *fakeAuth) Register(_ context.Context, req api.RegisterRequest) (*services.Session, error) {
	f.regReq = req
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &services.Session{User: models.User{ID: 2, Username: req.Username}, Online: true}, nil
}

func (f *fakeAuth) Restore(context.Context) (*services.Session, error) {
	return f.restoreSess, f.restoreErr
}

func (f *fakeAuth) EnsureMirrored(context.Context, *services.Session) error {
	f.mirrored++
	return nil
}

func (f *fakeAuth) Logout(context.Context) error { f.logoutCalls++; return nil }
func (f *fakeAuth) Ping(context.Context) error   { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error  { return nil }

type fakeLearning struct {
	services.LearningService

	cats     []models.Category
	words    []models.Word
	quizzes  []models.Quiz
	reviews  []bool
	game     GameCall
	quizCall QuizCall
	stats    models.Stats
	top      []models.HighScore
}

type GameCall struct {
	GameID    string
	Score     int
	PrevLevel int64
}

type QuizCall struct {
	QuizID int64
	Score  int
	Took   time.Duration
}

func (f *fakeLearning) Categories(context.Context) ([]models.Category, error) { return f.cats, nil }
func (f *fakeLearning) Words(context.Context, int64) ([]models.Word, error)   { return f.words, nil }
func (f *fakeLearning) Quizzes(context.Context, int64) ([]models.Quiz, error) { return f.quizzes, nil }

func (f *fakeLearning) ReviewWord(_ context.Context, userID, wordID int64, correct bool) (models.UserWordProgress, error) {
	f.reviews = append(f.reviews, correct)
	level := 0
	if correct {
		level = 1
	}
	return models.UserWordProgress{UserID: userID, WordID: wordID, FamiliarityLevel: level}, nil
}

func (f *fakeLearning) FinishGame(_ context.Context, userID int64, gameID string, score int, prev int64) (services.GameOutcome, error) {
	f.game = GameCall{GameID: gameID, Score: score, PrevLevel: prev}
	p := models.Profile{ID: 1, UserID: userID, Points: 90, Level: 1}.WithPoints(int64(score))
	return services.GameOutcome{NewHighScore: true, Profile: &p, LevelUp: p.Level > prev}, nil
}

func (f *fakeLearning) FinishQuiz(_ context.Context, _ int64, quizID int64, score int, took time.Duration) (int64, error) {
	f.quizCall = QuizCall{QuizID: quizID, Score: score, Took: took}
	return 1, nil
}

func (f *fakeLearning) HighScores(context.Context, string, int) ([]models.HighScore, error) {
	return f.top, nil
}

func (f *fakeLearning) Stats(context.Context, int64) (models.Stats, error) { return f.stats, nil }

type fakeSync struct {
	res   services.SyncResult
	err   error
	calls int
}

func (f *fakeSync) Sync(context.Context) (services.SyncResult, error) {
	f.calls++
	return f.res, f.err
}

func (f *fakeSync) State() services.State { return services.StateIdle }

type fakeWatermark struct {
	ts int64
}

func (f fakeWatermark) Watermark(context.Context) (int64, bool, error) {
	return f.ts, f.ts > 0, nil
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.OnlineCheckInterval = time.Hour
	return c
}
