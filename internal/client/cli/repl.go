package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Sync(ctx context.Context) error
	Categories(ctx context.Context) error
	Words(ctx context.Context, args []string) error
	Review(ctx context.Context, args []string) error
	Game(ctx context.Context, args []string) error
	Quiz(ctx context.Context, args []string) error
	Scores(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Status(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, status, exit"
	helpLoggedIn  = "Available commands: categories, words <cat>, review <cat>, game <cat>, quiz <cat> [quiz], " +
		"scores [game], stats, sync, status, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help, register, login, status, exit | quit
//
//	Logged in:
//	  - categories           list vocabulary categories
//	  - words <cat>          list the words of a category
//	  - review <cat>         flashcard review that updates familiarity
//	  - game <cat>           timed translation game, earns points
//	  - quiz <cat> [quiz]    multiple choice quiz
//	  - scores [game]        high score table
//	  - stats                learning statistics
//	  - sync                 synchronize with the server
//	  - status, logout, exit | quit
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("wm %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if err := dispatch(ctx, a, cmd, args); err != nil {
			if errors.Is(err, errExit) {
				printlnFn("Bye!")
				return
			}
			printlnFn(errStyle.Render("Error: " + describeError(err)))
		}
	}
}

var (
	errExit       = errors.New("exit")
	errNeedsLogin = errors.New("please login first")
)

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "status":
		return a.Status(ctx)
	case "exit", "quit":
		return errExit
	}

	handlers := map[string]func() error{
		"logout":     func() error { return a.Logout(ctx) },
		"sync":       func() error { return a.Sync(ctx) },
		"categories": func() error { return a.Categories(ctx) },
		"words":      func() error { return a.Words(ctx, args) },
		"review":     func() error { return a.Review(ctx, args) },
		"game":       func() error { return a.Game(ctx, args) },
		"quiz":       func() error { return a.Quiz(ctx, args) },
		"scores":     func() error { return a.Scores(ctx, args) },
		"stats":      func() error { return a.Stats(ctx) },
	}
	h, ok := handlers[cmd]
	if !ok {
		printlnFn("Unknown command:", cmd)
		return nil
	}
	if !a.isLoggedIn() {
		return errNeedsLogin
	}
	return h()
}
