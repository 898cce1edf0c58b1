package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"slide-quiz/internal/domain"

	"github.com/uptrace/bun"
)

// Store writes question sets through bun; the runner itself only reads them.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Save upserts set under the topic key. The key is what loaders look up; the
// set's own Topic may be a display title and is kept inside the document.
func (s *Store) Save(ctx context.Context, topic string, set domain.QuestionSet) error {
	topic = domain.TopicName(topic)
	if topic == "" {
		topic = domain.TopicName(set.Topic)
	}
	if err := set.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal question set: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO question_sets (topic, data) VALUES (?, ?::jsonb)
		 ON CONFLICT (topic) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		topic, string(data))
	if err != nil {
		return fmt.Errorf("save question set %s: %w", topic, err)
	}
	return nil
}

// DocumentSource enumerates and loads question documents, such as a
// directory of files.
type DocumentSource interface {
	Topics(ctx context.Context) ([]string, error)
	LoadQuestionSet(ctx context.Context, topic string) (domain.QuestionSet, error)
}

// Seed saves every document of src under its topic name and returns the keys
// it wrote.
func (s *Store) Seed(ctx context.Context, src DocumentSource) ([]string, error) {
	names, err := src.Topics(ctx)
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(names))
	for _, name := range names {
		set, err := src.LoadQuestionSet(ctx, name)
		if err != nil {
			return topics, fmt.Errorf("seed %s: %w", name, err)
		}
		topic := domain.TopicName(name)
		if err := s.Save(ctx, topic, set); err != nil {
			return topics, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}
