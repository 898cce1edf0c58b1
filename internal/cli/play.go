package cli

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"slide-quiz/internal/app"
	"slide-quiz/internal/config"
	"slide-quiz/internal/transport/terminal"

	"github.com/spf13/cobra"
)

// NewPlayCmd runs a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		topic string
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, config.String(topic, config.String(cfg.Quiz.DefaultTopic, "quiz-data")), seed)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic to play (defaults to quiz.default_topic)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for option shuffling; 0 picks a random order")
	return cmd
}

func runPlay(ctx context.Context, cfg config.Config, topic string, seed int64) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	opts := []app.Option{app.WithLogger(newLogger(cfg, os.Stderr))}
	if seed != 0 {
		opts = append(opts, app.WithPermuter(app.NewShuffler(rand.NewSource(seed))))
	}

	renderer := terminal.NewRenderer(os.Stdout, topic)
	engine := app.NewEngine(renderer, b.loader, settingsFromConfig(cfg), opts...)
	_, err = terminal.Play(ctx, engine, renderer, os.Stdin, topic)
	return err
}
