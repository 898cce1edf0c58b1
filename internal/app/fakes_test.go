package app_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"slide-quiz/internal/app"
	"slide-quiz/internal/domain"
	"slide-quiz/internal/infra/memory"
)

// manualScheduler fires callbacks only when the test advances its clock.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	s       *manualScheduler
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) app.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{s: s, at: s.now + d, fn: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d, running due callbacks in order,
// including ones scheduled by callbacks along the way.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		var next *manualTask
		for _, t := range s.tasks {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()
		next.fn()
	}
}

// fireStopped runs callbacks that were stopped before firing, as if they had
// already been in flight when cancelled.
func (s *manualScheduler) fireStopped() int {
	s.mu.Lock()
	var stale []*manualTask
	for _, t := range s.tasks {
		if t.stopped && !t.fired {
			t.fired = true
			stale = append(stale, t)
		}
	}
	s.mu.Unlock()
	for _, t := range stale {
		t.fn()
	}
	return len(stale)
}

type identityPermuter struct{}

func (identityPermuter) Perm(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

type reversePermuter struct{}

func (reversePermuter) Perm(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	return idx
}

type markEvent struct {
	question int
	position int
	state    domain.MarkState
}

type recordingRenderer struct {
	mu        sync.Mutex
	slides    []int
	questions map[int][]string
	marks     []markEvent
	timers    map[int][]int
	results   []domain.Summary
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{
		questions: make(map[int][]string),
		timers:    make(map[int][]int),
	}
}

func (r *recordingRenderer) ShowSlide(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slides = append(r.slides, index)
}

func (r *recordingRenderer) RenderQuestion(index int, _ string, options []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[index] = options
}

func (r *recordingRenderer) MarkOption(index, position int, state domain.MarkState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = append(r.marks, markEvent{question: index, position: position, state: state})
}

func (r *recordingRenderer) UpdateTimer(index, secondsLeft int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers[index] = append(r.timers[index], secondsLeft)
}

func (r *recordingRenderer) ShowResults(summary domain.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, summary)
}

func (r *recordingRenderer) lastSlide() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slides) == 0 {
		return -1
	}
	return r.slides[len(r.slides)-1]
}

type failingLoader struct {
	err error
}

func (l failingLoader) LoadQuestionSet(context.Context, string) (domain.QuestionSet, error) {
	return domain.QuestionSet{}, l.err
}

// questionSet builds n questions of four options; question i has its correct
// answer at original index i%4.
func questionSet(topic string, n int) domain.QuestionSet {
	set := domain.QuestionSet{Topic: topic}
	for i := 0; i < n; i++ {
		set.Questions = append(set.Questions, domain.Question{
			Prompt:  fmt.Sprintf("Question %d", i+1),
			Options: []string{"A", "B", "C", "D"},
			Correct: i % 4,
		})
	}
	return set
}

func newTestEngine(sched *manualScheduler, renderer *recordingRenderer, perm app.Permuter, sets ...domain.QuestionSet) *app.Engine {
	return newTestEngineWithSettings(app.DefaultSettings(), sched, renderer, perm, sets...)
}

func newTestEngineWithSettings(settings app.Settings, sched *manualScheduler, renderer *recordingRenderer, perm app.Permuter, sets ...domain.QuestionSet) *app.Engine {
	byTopic := make(map[string]domain.QuestionSet, len(sets))
	for _, set := range sets {
		byTopic[set.Topic] = set
	}
	return app.NewEngine(renderer, memory.NewStaticLoader(byTopic), settings,
		app.WithScheduler(sched),
		app.WithPermuter(perm),
	)
}
