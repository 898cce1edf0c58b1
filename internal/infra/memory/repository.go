package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"slide-quiz/internal/app"
	"slide-quiz/internal/domain"

	"golang.org/x/sync/singleflight"
)

// Repository caches question sets with TTL to avoid repeated source hits.
type Repository struct {
	loader app.QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewRepository(loader app.QuestionLoader, ttl time.Duration) *Repository {
	return &Repository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *Repository) LoadQuestionSet(ctx context.Context, topic string) (domain.QuestionSet, error) {
	if set, ok := r.lookup(topic, r.clock()); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(topic, func() (interface{}, error) {
		now := r.clock()
		if set, ok := r.lookup(topic, now); ok {
			return set, nil
		}

		set, err := r.loader.LoadQuestionSet(ctx, topic)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		r.mu.Lock()
		r.cache[topic] = cachedSet{
			set:       set,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (r *Repository) lookup(topic string, now time.Time) (domain.QuestionSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[topic]
	if !ok || !entry.expiresAt.After(now) {
		return domain.QuestionSet{}, false
	}
	return entry.set, true
}

// Invalidate drops a cached topic so the next load hits the source.
func (r *Repository) Invalidate(_ context.Context, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, topic)
	return nil
}

func (r *Repository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticLoader struct {
	sets map[string]domain.QuestionSet
}

func NewStaticLoader(sets map[string]domain.QuestionSet) *StaticLoader {
	return &StaticLoader{sets: sets}
}

func (l *StaticLoader) LoadQuestionSet(_ context.Context, topic string) (domain.QuestionSet, error) {
	if set, ok := l.sets[domain.TopicName(topic)]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrTopicNotFound
}

// Topics lists the topics the loader knows about.
func (l *StaticLoader) Topics(context.Context) ([]string, error) {
	topics := make([]string, 0, len(l.sets))
	for topic := range l.sets {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, nil
}
