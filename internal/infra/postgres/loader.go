package postgres

import (
	"context"
	"errors"
	"fmt"

	"slide-quiz/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Loader loads question set JSONB from Postgres.
type Loader struct {
	pool *pgxpool.Pool
}

func NewLoader(pool *pgxpool.Pool) *Loader {
	return &Loader{pool: pool}
}

func (l *Loader) LoadQuestionSet(ctx context.Context, topic string) (domain.QuestionSet, error) {
	name := domain.TopicName(topic)
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_sets WHERE topic=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSet{}, domain.ErrTopicNotFound
	}
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("load question set: %w", err)
	}
	return domain.ParseQuestionSet(name, name+".json", raw)
}

// Topics lists stored topics in name order.
func (l *Loader) Topics(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT topic FROM question_sets ORDER BY topic`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}
