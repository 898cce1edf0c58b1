package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slide-quiz/internal/domain"
)

// Loader reads question documents from a directory, one file per topic.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) LoadQuestionSet(_ context.Context, topic string) (domain.QuestionSet, error) {
	name := domain.TopicFileName(topic)
	if !fs.ValidPath(name) || strings.Contains(name, "/") {
		return domain.QuestionSet{}, fmt.Errorf("%w: invalid topic name %q", domain.ErrTopicNotFound, topic)
	}
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.QuestionSet{}, domain.ErrTopicNotFound
	}
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("read question set: %w", err)
	}
	return domain.ParseQuestionSet(domain.TopicName(name), name, data)
}

// Topics lists the question documents in the directory.
func (l *Loader) Topics(context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	var topics []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			topics = append(topics, entry.Name())
		}
	}
	sort.Strings(topics)
	return topics, nil
}
