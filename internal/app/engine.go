package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"slide-quiz/internal/domain"
)

// QuestionLoader fetches the question set for a topic (file, HTTP, Postgres,
// or a cache in front of one of those).
type QuestionLoader interface {
	LoadQuestionSet(ctx context.Context, topic string) (domain.QuestionSet, error)
}

// Renderer is the presentation boundary. The Engine calls it while holding its
// lock, so implementations must not call back into the Engine synchronously.
type Renderer interface {
	ShowSlide(index int)
	RenderQuestion(index int, prompt string, options []string)
	MarkOption(index, position int, state domain.MarkState)
	UpdateTimer(index, secondsLeft int)
	ShowResults(summary domain.Summary)
}

// Settings are copied into an Engine when it is built; later changes only
// affect engines built afterwards.
type Settings struct {
	// TimerDuration is shown in whole seconds; fractions round up.
	TimerDuration    time.Duration
	TotalQuestions   int
	MarksPerQuestion int
	SelectionDelay   time.Duration
	TransitionDelay  time.Duration
}

// DefaultSettings mirrors the stock quiz: 8s per question, 10 questions of 10
// marks, 2s to read the result and a 500ms slide transition.
func DefaultSettings() Settings {
	return Settings{
		TimerDuration:    8 * time.Second,
		TotalQuestions:   10,
		MarksPerQuestion: 10,
		SelectionDelay:   2 * time.Second,
		TransitionDelay:  500 * time.Millisecond,
	}
}

// Phase is the coarse state of a run.
type Phase int

const (
	PhaseLanding Phase = iota
	PhaseQuestion
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLanding:
		return "landing"
	case PhaseQuestion:
		return "question"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalText lets Phase travel as a string in JSON payloads.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a point-in-time copy of a run.
type State struct {
	Topic       string                `json:"topic"`
	Phase       Phase                 `json:"phase"`
	Position    int                   `json:"position"`
	Questions   int                   `json:"questions"`
	Score       domain.Score          `json:"score"`
	Answers     []domain.AnswerRecord `json:"answers"`
	Orders      [][]int               `json:"orders"`
	SecondsLeft int                   `json:"secondsLeft"`
	Summary     *domain.Summary       `json:"summary,omitempty"`
}

// Resolution describes how a selection resolved the current question.
type Resolution struct {
	Question        int  `json:"question"`
	Position        int  `json:"position"`
	Option          int  `json:"option"`
	Correct         bool `json:"correct"`
	CorrectPosition int  `json:"correctPosition"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the runtime timers, mainly for tests.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithPermuter replaces the option shuffler.
func WithPermuter(p Permuter) Option {
	return func(e *Engine) { e.perm = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is the quiz state machine: Landing, then InQuestion(1..N), then
// Complete. Every event (selection, timer tick, delayed advance, reset) runs
// under mu. Scheduled callbacks carry the epoch and slide they were created
// for and do nothing once either has moved on.
type Engine struct {
	settings Settings
	renderer Renderer
	loader   QuestionLoader
	sched    Scheduler
	perm     Permuter
	logger   *slog.Logger

	mu        sync.Mutex
	set       domain.QuestionSet
	loaded    bool
	session   *Session
	phase     Phase
	epoch     uint64
	resolved  bool
	advancing bool
	closed    bool
	countdown *Countdown
	pending   Task
}

// NewEngine builds an engine sitting on an empty landing slide.
func NewEngine(renderer Renderer, loader QuestionLoader, settings Settings, opts ...Option) *Engine {
	if settings.MarksPerQuestion <= 0 {
		settings.MarksPerQuestion = DefaultSettings().MarksPerQuestion
	}
	e := &Engine{
		settings: settings,
		renderer: renderer,
		loader:   loader,
		sched:    SystemScheduler,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.perm == nil {
		e.perm = NewShuffler(nil)
	}
	return e
}

// Load fetches and validates the set for topic and re-initializes the run
// with it. On failure a *domain.LoadError is returned and nothing changes.
func (e *Engine) Load(ctx context.Context, topic string) error {
	if e.loader == nil {
		return domain.NewLoadError(topic, domain.ErrTopicNotFound)
	}
	set, err := e.loader.LoadQuestionSet(ctx, topic)
	if err == nil {
		err = set.Validate()
	}
	if err != nil {
		e.logger.Warn("question set load failed", "topic", topic, "error", err)
		return domain.NewLoadError(topic, err)
	}
	if set.Topic == "" {
		set.Topic = topic
	}
	if set.Len() != e.settings.TotalQuestions && e.settings.TotalQuestions > 0 {
		e.logger.Debug("question count differs from configured total",
			"topic", topic, "loaded", set.Len(), "configured", e.settings.TotalQuestions)
	}
	return e.Initialize(set)
}

// Initialize resets the run onto set: position 0, no answers, zero score,
// fresh option orders, landing slide shown. Pending timers of the previous
// run are cancelled and their callbacks invalidated.
func (e *Engine) Initialize(set domain.QuestionSet) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrRunClosed
	}
	e.set = set
	e.loaded = true
	e.resetLocked()
	return nil
}

// Reset re-initializes the run with the current set.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrRunClosed
	}
	e.resetLocked()
	return nil
}

// Begin moves from the landing slide to the first question. A run that has
// already started is reset first.
func (e *Engine) Begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrRunClosed
	}
	if !e.loaded {
		return domain.ErrNoQuestionSet
	}
	if e.phase != PhaseLanding {
		e.resetLocked()
	}
	e.logger.Info("quiz started", "topic", e.set.Topic, "questions", e.set.Len())
	e.enterLocked(1)
	return nil
}

// Start loads topic and begins the run. A failed load leaves the engine on
// the landing slide.
func (e *Engine) Start(ctx context.Context, topic string) error {
	if err := e.Load(ctx, topic); err != nil {
		return err
	}
	return e.Begin()
}

// Select answers the open question with the option at display position.
func (e *Engine) Select(position int) (Resolution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Resolution{}, domain.ErrRunClosed
	}
	if e.phase != PhaseQuestion || e.advancing {
		return Resolution{}, domain.ErrNoActiveQuestion
	}
	if e.resolved {
		return Resolution{}, domain.ErrAlreadyResolved
	}
	i := e.session.position
	q := e.session.question(i)
	if position < 0 || position >= len(q.Options) {
		return Resolution{}, domain.ErrInvalidOption
	}

	rec, ok := e.session.answer(i, position)
	if !ok {
		return Resolution{}, domain.ErrAlreadyResolved
	}
	e.resolved = true
	e.stopCountdownLocked()

	correctPos := e.session.positionOf(i, q.Correct)
	e.renderer.MarkOption(i, position, domain.MarkSelected)
	if rec.Correct {
		e.renderer.MarkOption(i, position, domain.MarkCorrect)
	} else {
		e.renderer.MarkOption(i, position, domain.MarkIncorrect)
		e.renderer.MarkOption(i, correctPos, domain.MarkCorrect)
	}
	e.logger.Debug("question answered", "question", i, "option", rec.Option, "correct", rec.Correct)

	e.stopPendingLocked()
	e.pending = e.sched.AfterFunc(e.settings.SelectionDelay, e.guard(e.epoch, i, e.advanceLocked))

	return Resolution{
		Question:        i,
		Position:        position,
		Option:          rec.Option,
		Correct:         rec.Correct,
		CorrectPosition: correctPos,
	}, nil
}

// State returns a copy of the run.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := State{Topic: e.set.Topic, Phase: e.phase}
	if e.session == nil {
		return st
	}
	st.Position = e.session.position
	st.Questions = e.set.Len()
	st.Score = e.session.score
	st.Answers = append([]domain.AnswerRecord(nil), e.session.answers...)
	st.Orders = e.session.snapshotOrders()
	if e.phase == PhaseQuestion && e.countdown != nil && e.countdown.Running() {
		st.SecondsLeft = e.countdown.Remaining()
	}
	if e.phase == PhaseComplete {
		summary := e.session.summary()
		st.Summary = &summary
	}
	return st
}

// Close stops all timers; the engine rejects further events.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.epoch++
	e.stopCountdownLocked()
	e.stopPendingLocked()
}

func (e *Engine) resetLocked() {
	e.epoch++
	e.stopCountdownLocked()
	e.stopPendingLocked()
	e.resolved = false
	e.advancing = false
	e.phase = PhaseLanding
	if e.loaded {
		e.session = newSession(e.set, e.perm, e.settings.MarksPerQuestion)
	} else {
		e.session = nil
	}
	e.logger.Debug("session reset", "topic", e.set.Topic, "epoch", e.epoch)
	e.renderer.ShowSlide(0)
}

// guard wraps fn so it runs under the lock and only while the run is still on
// the epoch and slide it was scheduled for.
func (e *Engine) guard(epoch uint64, index int, fn func()) func() {
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || e.epoch != epoch || e.session == nil || e.session.position != index {
			e.logger.Debug("dropping stale callback", "epoch", epoch, "question", index)
			return
		}
		fn()
	}
}

func (e *Engine) enterLocked(i int) {
	e.session.position = i
	e.phase = PhaseQuestion
	e.resolved = false
	e.advancing = false

	q := e.session.question(i)
	e.renderer.ShowSlide(i)
	e.renderer.RenderQuestion(i, q.Prompt, e.session.displayOptions(i))

	e.stopCountdownLocked()
	epoch := e.epoch
	e.countdown = newCountdown(
		e.sched,
		e.settings.TimerDuration,
		func(fn func()) func() { return e.guard(epoch, i, fn) },
		func(left int) { e.renderer.UpdateTimer(i, left) },
		func() { e.expireLocked(i) },
	)
	e.countdown.Start()
}

func (e *Engine) expireLocked(i int) {
	if e.resolved {
		return
	}
	if !e.session.timeout(i) {
		return
	}
	e.resolved = true
	e.logger.Debug("question timed out", "question", i)
	e.advanceLocked()
}

func (e *Engine) advanceLocked() {
	e.stopCountdownLocked()
	e.stopPendingLocked()
	e.resolved = false
	e.advancing = true

	if e.settings.TransitionDelay <= 0 {
		e.nextLocked()
		return
	}
	e.pending = e.sched.AfterFunc(e.settings.TransitionDelay, e.guard(e.epoch, e.session.position, e.nextLocked))
}

func (e *Engine) nextLocked() {
	e.pending = nil
	next := e.session.position + 1
	if next <= e.set.Len() {
		e.enterLocked(next)
		return
	}
	e.completeLocked()
}

func (e *Engine) completeLocked() {
	e.session.position = e.set.Len() + 1
	e.phase = PhaseComplete
	e.advancing = false
	summary := e.session.summary()
	e.logger.Info("quiz complete", "topic", e.set.Topic,
		"points", summary.Points, "percentage", summary.Percentage)
	e.renderer.ShowSlide(e.session.position)
	e.renderer.ShowResults(summary)
}

func (e *Engine) stopCountdownLocked() {
	if e.countdown != nil {
		e.countdown.Stop()
	}
}

func (e *Engine) stopPendingLocked() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}
