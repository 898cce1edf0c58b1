package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"slide-quiz/internal/domain"
)

const maxDocumentSize = 1 << 20

// Loader fetches question documents over HTTP from baseURL/<topic file>.
type Loader struct {
	baseURL string
	client  *http.Client
}

func NewLoader(baseURL string, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (l *Loader) LoadQuestionSet(ctx context.Context, topic string) (domain.QuestionSet, error) {
	name := domain.TopicFileName(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+url.PathEscape(name), nil)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("fetch question set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.QuestionSet{}, domain.ErrTopicNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.QuestionSet{}, fmt.Errorf("http error: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("read question set: %w", err)
	}
	return domain.ParseQuestionSet(domain.TopicName(name), name, data)
}
