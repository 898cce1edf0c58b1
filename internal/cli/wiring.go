package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"slide-quiz/internal/app"
	"slide-quiz/internal/config"
	"slide-quiz/internal/domain"
	"slide-quiz/internal/infra/file"
	"slide-quiz/internal/infra/httpsource"
	"slide-quiz/internal/infra/memory"
	pgloader "slide-quiz/internal/infra/postgres"
	redisinfra "slide-quiz/internal/infra/redis"
	transport "slide-quiz/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backends holds the question source, its cache and the run registry built
// from config. Close releases the connections it opened.
type backends struct {
	source transport.TopicLister
	loader app.QuestionLoader
	cache  transport.CacheInvalidator
	runs   app.RunRegistry
	pool   *pgxpool.Pool
	redis  *redis.Client
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var source app.QuestionLoader
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
		source = pgloader.NewLoader(pool)
	case cfg.Quiz.DataURL != "":
		source = httpsource.NewLoader(cfg.Quiz.DataURL, &http.Client{Timeout: 10 * time.Second})
	case cfg.Quiz.DataDir != "":
		source = file.NewLoader(cfg.Quiz.DataDir)
	default:
		source = memory.NewStaticLoader(sampleSets())
	}
	if lister, ok := source.(transport.TopicLister); ok {
		b.source = lister
	}

	cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
	if b.redis != nil {
		repo := redisinfra.NewRepository(b.redis, source, cacheTTL)
		b.loader, b.cache = repo, repo
		b.runs = redisinfra.NewRunStore(b.redis, config.Duration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		repo := memory.NewRepository(source, cacheTTL)
		b.loader, b.cache = repo, repo
		b.runs = memory.NewRunStore()
	}
	return b, nil
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
}

// settingsFromConfig overlays configured quiz settings on the defaults.
func settingsFromConfig(cfg config.Config) app.Settings {
	def := app.DefaultSettings()
	return app.Settings{
		TimerDuration:    config.Duration(cfg.Quiz.TimerDuration, def.TimerDuration),
		TotalQuestions:   config.Int(cfg.Quiz.TotalQuestions, def.TotalQuestions),
		MarksPerQuestion: config.Int(cfg.Quiz.MarksPerQuestion, def.MarksPerQuestion),
		SelectionDelay:   config.Duration(cfg.Quiz.SelectionDelay, def.SelectionDelay),
		TransitionDelay:  config.Duration(cfg.Quiz.TransitionDelay, def.TransitionDelay),
	}
}

func newLogger(cfg config.Config, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stderr
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.String(cfg.Log.Level, "info"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// sampleSets is the fallback data when no source is configured.
func sampleSets() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		"quiz-data": {
			Topic: "quiz-data",
			Questions: []domain.Question{
				{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5", "22"}, Correct: 1},
				{Prompt: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Jupiter", "Mars", "Mercury"}, Correct: 2},
				{Prompt: "What is the boiling point of water at sea level in Celsius?", Options: []string{"100", "90", "212", "0"}, Correct: 0},
			},
		},
	}
}
