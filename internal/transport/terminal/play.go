package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"slide-quiz/internal/app"
	"slide-quiz/internal/domain"
)

// ErrQuit is returned when the player leaves before the results slide.
var ErrQuit = errors.New("quiz abandoned")

// Play runs one quiz on topic, reading option numbers from in. It returns the
// summary once the results slide is shown.
func Play(ctx context.Context, engine *app.Engine, renderer *Renderer, in io.Reader, topic string) (domain.Summary, error) {
	defer engine.Close()

	if err := engine.Start(ctx, topic); err != nil {
		return domain.Summary{}, err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return domain.Summary{}, ctx.Err()
		case summary := <-renderer.Done():
			return summary, nil
		case line, ok := <-lines:
			if !ok {
				// Input is exhausted; the countdowns finish the run.
				lines = nil
				continue
			}
			if err := handleLine(engine, renderer, line); err != nil {
				return domain.Summary{}, err
			}
		}
	}
}

func handleLine(engine *app.Engine, renderer *Renderer, line string) error {
	switch strings.ToLower(line) {
	case "":
		return nil
	case "q", "quit":
		return ErrQuit
	case "r", "restart":
		if err := engine.Begin(); err != nil {
			renderer.Notice("cannot restart: %v", err)
		}
		return nil
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		renderer.Notice("enter an option number, r or q")
		return nil
	}
	if _, err := engine.Select(n - 1); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyResolved):
			renderer.Notice("already answered")
		case errors.Is(err, domain.ErrNoActiveQuestion):
			renderer.Notice("no question is open")
		default:
			renderer.Notice("%v", err)
		}
	}
	return nil
}
