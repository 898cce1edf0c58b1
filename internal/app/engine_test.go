package app_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"slide-quiz/internal/app"
	"slide-quiz/internal/domain"
)

func TestCorrectThenTimeoutScoresHalf(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	set := domain.QuestionSet{Topic: "pair", Questions: []domain.Question{
		{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Correct: 1},
		{Prompt: "Capital of France?", Options: []string{"Rome", "Paris"}, Correct: 1},
	}}
	engine := newTestEngine(sched, renderer, identityPermuter{}, set)

	if err := engine.Start(ctx, "pair"); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := engine.Select(1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !res.Correct || res.Option != 1 {
		t.Fatalf("expected correct answer, got %+v", res)
	}

	sched.Advance(2500 * time.Millisecond)
	if st := engine.State(); st.Position != 2 || st.Phase != app.PhaseQuestion {
		t.Fatalf("expected question 2, got position=%d phase=%s", st.Position, st.Phase)
	}

	sched.Advance(8 * time.Second)
	sched.Advance(500 * time.Millisecond)

	st := engine.State()
	if st.Phase != app.PhaseComplete || st.Position != 3 {
		t.Fatalf("expected complete at slide 3, got phase=%s position=%d", st.Phase, st.Position)
	}
	if st.Answers[1].Option != domain.Unanswered || !st.Answers[1].TimedOut {
		t.Fatalf("expected timeout record, got %+v", st.Answers[1])
	}
	if len(renderer.results) != 1 {
		t.Fatalf("expected one results panel, got %d", len(renderer.results))
	}
	summary := renderer.results[0]
	if summary.Correct != 1 || summary.Wrong != 1 || summary.Points != 10 || summary.Percentage != 50 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Unanswered != 1 || summary.MaxPoints != 20 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	want := []int{8, 7, 6, 5, 4, 3, 2, 1, 0}
	got := renderer.timers[2]
	if len(got) != len(want) {
		t.Fatalf("expected countdown %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected countdown %v, got %v", want, got)
		}
	}
}

func TestWrongSelectionRevealsCorrectAndAutoAdvances(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	set := domain.QuestionSet{Topic: "single", Questions: []domain.Question{
		{Prompt: "Pick C", Options: []string{"A", "B", "C"}, Correct: 2},
	}}
	engine := newTestEngine(sched, renderer, reversePermuter{}, set)

	if err := engine.Start(ctx, "single"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if opts := renderer.questions[1]; len(opts) != 3 || opts[0] != "C" || opts[2] != "A" {
		t.Fatalf("expected reversed options, got %v", opts)
	}

	res, err := engine.Select(1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Correct || res.CorrectPosition != 0 || res.Option != 1 {
		t.Fatalf("unexpected resolution %+v", res)
	}

	wantMarks := []markEvent{
		{question: 1, position: 1, state: domain.MarkSelected},
		{question: 1, position: 1, state: domain.MarkIncorrect},
		{question: 1, position: 0, state: domain.MarkCorrect},
	}
	if len(renderer.marks) != len(wantMarks) {
		t.Fatalf("expected marks %v, got %v", wantMarks, renderer.marks)
	}
	for i := range wantMarks {
		if renderer.marks[i] != wantMarks[i] {
			t.Fatalf("expected marks %v, got %v", wantMarks, renderer.marks)
		}
	}

	sched.Advance(1999 * time.Millisecond)
	if st := engine.State(); st.Phase != app.PhaseQuestion || len(renderer.results) != 0 {
		t.Fatalf("expected result still on screen, got phase=%s", st.Phase)
	}

	sched.Advance(501 * time.Millisecond)
	st := engine.State()
	if st.Phase != app.PhaseComplete {
		t.Fatalf("expected complete, got %s", st.Phase)
	}
	if renderer.lastSlide() != 2 {
		t.Fatalf("expected results slide 2, got %d", renderer.lastSlide())
	}
	if st.Score.Wrong != 1 || st.Score.Correct != 0 || st.Score.Points != 0 {
		t.Fatalf("unexpected score %+v", st.Score)
	}
}

func TestTimeoutSuppressesLateSelection(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	engine := newTestEngine(sched, renderer, identityPermuter{}, questionSet("race", 2))

	if err := engine.Start(ctx, "race"); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Advance(8 * time.Second)

	if _, err := engine.Select(0); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected late selection to be rejected, got %v", err)
	}
	st := engine.State()
	if st.Score.Wrong != 1 || st.Score.Correct != 0 || !st.Answers[0].TimedOut {
		t.Fatalf("expected single timeout resolution, got score=%+v answer=%+v", st.Score, st.Answers[0])
	}
}

func TestSelectionSuppressesInFlightTimer(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	engine := newTestEngine(sched, renderer, identityPermuter{}, questionSet("race", 1))

	if err := engine.Start(ctx, "race"); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Advance(7 * time.Second)
	if _, err := engine.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}

	if n := sched.fireStopped(); n == 0 {
		t.Fatalf("expected the cancelled tick to still be queued")
	}
	if _, err := engine.Select(1); !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("expected second selection to be ignored, got %v", err)
	}

	st := engine.State()
	if st.Score.Correct != 1 || st.Score.Wrong != 0 || st.Answers[0].TimedOut {
		t.Fatalf("expected only the selection to count, got score=%+v answer=%+v", st.Score, st.Answers[0])
	}
	if ticks := renderer.timers[1]; ticks[len(ticks)-1] != 1 {
		t.Fatalf("expected readout to stop at 1, got %v", ticks)
	}
}

func TestResetMidQuestionLeavesNoResidue(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	set := questionSet("reset", 5)
	engine := newTestEngine(sched, renderer, identityPermuter{}, set)

	if err := engine.Start(ctx, "reset"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := engine.Select(0); err != nil { // correct
		t.Fatalf("select q1: %v", err)
	}
	sched.Advance(2500 * time.Millisecond)
	if _, err := engine.Select(0); err != nil { // wrong, q2 expects 1
		t.Fatalf("select q2: %v", err)
	}
	sched.Advance(2500 * time.Millisecond)
	sched.Advance(3 * time.Second)
	if st := engine.State(); st.Position != 3 {
		t.Fatalf("expected to be on question 3, got %d", st.Position)
	}

	if err := engine.Initialize(set); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if n := sched.fireStopped(); n == 0 {
		t.Fatalf("expected cancelled callbacks from the abandoned run")
	}
	sched.Advance(time.Minute)

	st := engine.State()
	if st.Phase != app.PhaseLanding || st.Position != 0 {
		t.Fatalf("expected landing, got phase=%s position=%d", st.Phase, st.Position)
	}
	if st.Score != (domain.Score{}) {
		t.Fatalf("expected zero score, got %+v", st.Score)
	}
	for i, rec := range st.Answers {
		if rec.Resolved {
			t.Fatalf("answer %d survived reset: %+v", i, rec)
		}
	}

	if err := engine.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	st = engine.State()
	if st.Position != 1 || st.Score != (domain.Score{}) {
		t.Fatalf("expected fresh run on question 1, got position=%d score=%+v", st.Position, st.Score)
	}
	if renderer.lastSlide() != 1 {
		t.Fatalf("expected slide 1 shown, got %d", renderer.lastSlide())
	}
}

func TestResetMidCountdownCancelsTimers(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	engine := newTestEngine(sched, renderer, identityPermuter{}, questionSet("restart", 3))

	if err := engine.Start(ctx, "restart"); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Advance(3 * time.Second)
	if st := engine.State(); st.SecondsLeft != 5 {
		t.Fatalf("expected 5 seconds left, got %d", st.SecondsLeft)
	}
	ticks := len(renderer.timers[1])

	if err := engine.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n := sched.fireStopped(); n == 0 {
		t.Fatalf("expected the cancelled tick to be in flight")
	}
	sched.Advance(time.Minute)

	st := engine.State()
	if st.Phase != app.PhaseLanding || st.Position != 0 || st.SecondsLeft != 0 {
		t.Fatalf("expected landing, got phase=%s position=%d secondsLeft=%d", st.Phase, st.Position, st.SecondsLeft)
	}
	if st.Score != (domain.Score{}) {
		t.Fatalf("expected zero score, got %+v", st.Score)
	}
	if st.Answers[0].Resolved {
		t.Fatalf("question 1 resolved after reset: %+v", st.Answers[0])
	}
	if renderer.lastSlide() != 0 {
		t.Fatalf("expected landing slide, got %d", renderer.lastSlide())
	}
	if got := len(renderer.timers[1]); got != ticks {
		t.Fatalf("readout kept ticking after reset: %v", renderer.timers[1])
	}
}

func TestBeginFromResultsStartsFreshRun(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	engine := newTestEngine(sched, renderer, identityPermuter{}, questionSet("again", 2))

	if err := engine.Start(ctx, "again"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := engine.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	sched.Advance(2500 * time.Millisecond)
	sched.Advance(8500 * time.Millisecond)
	if st := engine.State(); st.Phase != app.PhaseComplete || st.Summary == nil {
		t.Fatalf("expected results, got phase=%s", st.Phase)
	}

	if err := engine.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	st := engine.State()
	if st.Phase != app.PhaseQuestion || st.Position != 1 || st.Summary != nil {
		t.Fatalf("expected fresh question 1, got phase=%s position=%d summary=%v", st.Phase, st.Position, st.Summary)
	}
	if st.Score != (domain.Score{}) || st.Answers[0].Resolved || st.Answers[1].Resolved {
		t.Fatalf("previous run leaked into the new one: score=%+v answers=%+v", st.Score, st.Answers)
	}
	if st.SecondsLeft != 8 {
		t.Fatalf("expected a full countdown, got %d", st.SecondsLeft)
	}
	if n := len(renderer.slides); n < 2 || renderer.slides[n-2] != 0 || renderer.slides[n-1] != 1 {
		t.Fatalf("expected landing then slide 1, got %v", renderer.slides)
	}
	if len(renderer.results) != 1 {
		t.Fatalf("expected no new results panel, got %d", len(renderer.results))
	}

	sched.Advance(8500 * time.Millisecond)
	sched.Advance(8500 * time.Millisecond)
	if len(renderer.results) != 2 {
		t.Fatalf("expected the second run to finish, got %d panels", len(renderer.results))
	}
	if second := renderer.results[1]; second.Correct != 0 || second.Unanswered != 2 || second.Points != 0 {
		t.Fatalf("unexpected second summary %+v", second)
	}
}

func TestSecondsLeftOnlyWhileCounting(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	engine := newTestEngine(sched, renderer, identityPermuter{}, questionSet("clock", 1))

	if err := engine.Start(ctx, "clock"); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Advance(2 * time.Second)
	if st := engine.State(); st.SecondsLeft != 6 {
		t.Fatalf("expected 6 seconds left, got %d", st.SecondsLeft)
	}
	if _, err := engine.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if st := engine.State(); st.SecondsLeft != 0 {
		t.Fatalf("expected no readout during the selection delay, got %d", st.SecondsLeft)
	}
	sched.Advance(2500 * time.Millisecond)
	if st := engine.State(); st.Phase != app.PhaseComplete || st.SecondsLeft != 0 {
		t.Fatalf("expected complete with no readout, got phase=%s secondsLeft=%d", st.Phase, st.SecondsLeft)
	}
}

func TestTimerDurationWholeSeconds(t *testing.T) {
	ctx := context.Background()

	t.Run("fraction rounds up", func(t *testing.T) {
		sched := &manualScheduler{}
		renderer := newRecordingRenderer()
		settings := app.DefaultSettings()
		settings.TimerDuration = 1500 * time.Millisecond
		engine := newTestEngineWithSettings(settings, sched, renderer, identityPermuter{}, questionSet("short", 1))

		if err := engine.Start(ctx, "short"); err != nil {
			t.Fatalf("start: %v", err)
		}
		sched.Advance(2 * time.Second)
		got := renderer.timers[1]
		if len(got) != 3 || got[0] != 2 || got[2] != 0 {
			t.Fatalf("expected readout 2,1,0, got %v", got)
		}
	})

	t.Run("negative expires at zero", func(t *testing.T) {
		sched := &manualScheduler{}
		renderer := newRecordingRenderer()
		settings := app.DefaultSettings()
		settings.TimerDuration = -time.Second
		engine := newTestEngineWithSettings(settings, sched, renderer, identityPermuter{}, questionSet("none", 1))

		if err := engine.Start(ctx, "none"); err != nil {
			t.Fatalf("start: %v", err)
		}
		if got := renderer.timers[1]; len(got) != 1 || got[0] != 0 {
			t.Fatalf("expected a single zero readout, got %v", got)
		}
		sched.Advance(500 * time.Millisecond)
		st := engine.State()
		if st.Phase != app.PhaseComplete || !st.Answers[0].TimedOut {
			t.Fatalf("expected timed out run, got phase=%s answer=%+v", st.Phase, st.Answers[0])
		}
	})
}

func TestLoadFailureStaysOnLanding(t *testing.T) {
	ctx := context.Background()
	renderer := newRecordingRenderer()
	engine := app.NewEngine(renderer, failingLoader{err: domain.ErrTopicNotFound}, app.DefaultSettings(),
		app.WithScheduler(&manualScheduler{}))

	err := engine.Start(ctx, "missing")
	var loadErr *domain.LoadError
	if !errors.As(err, &loadErr) || loadErr.Topic != "missing" {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if st := engine.State(); st.Phase != app.PhaseLanding || st.Position != 0 {
		t.Fatalf("expected landing, got %+v", st)
	}
	if err := engine.Begin(); !errors.Is(err, domain.ErrNoQuestionSet) {
		t.Fatalf("expected ErrNoQuestionSet, got %v", err)
	}
}

func TestFailedReloadKeepsPreviousSet(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	broken := domain.QuestionSet{Topic: "broken", Questions: []domain.Question{
		{Prompt: "No answers", Options: []string{"only"}, Correct: 3},
	}}
	engine := newTestEngine(sched, renderer, identityPermuter{}, questionSet("good", 3), broken)

	if err := engine.Load(ctx, "good"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := engine.Load(ctx, "broken"); !errors.Is(err, domain.ErrMalformedQuestionSet) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if err := engine.Load(ctx, "absent"); !errors.Is(err, domain.ErrTopicNotFound) {
		t.Fatalf("expected topic error, got %v", err)
	}
	st := engine.State()
	if st.Topic != "good" || st.Questions != 3 {
		t.Fatalf("expected previous set to remain, got topic=%s questions=%d", st.Topic, st.Questions)
	}
}

func TestFullRunKeepsScoreInvariants(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	const n = 7
	set := questionSet("full", n)
	engine := newTestEngine(sched, renderer, app.NewShuffler(rand.NewSource(42)), set)

	if err := engine.Start(ctx, "full"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 1; i <= n; i++ {
		st := engine.State()
		if st.Position != i {
			t.Fatalf("expected question %d, got %d", i, st.Position)
		}
		order := st.Orders[i-1]
		correct := set.Questions[i-1].Correct
		switch i % 3 {
		case 0:
			sched.Advance(8 * time.Second)
			sched.Advance(500 * time.Millisecond)
		case 1:
			pos := indexOf(order, correct)
			if _, err := engine.Select(pos); err != nil {
				t.Fatalf("select %d: %v", i, err)
			}
			sched.Advance(2500 * time.Millisecond)
		default:
			pos := (indexOf(order, correct) + 1) % len(order)
			if _, err := engine.Select(pos); err != nil {
				t.Fatalf("select %d: %v", i, err)
			}
			sched.Advance(2500 * time.Millisecond)
		}
	}

	st := engine.State()
	if st.Phase != app.PhaseComplete {
		t.Fatalf("expected complete, got %s", st.Phase)
	}
	if st.Score.Correct+st.Score.Wrong != n {
		t.Fatalf("expected %d resolutions, got %+v", n, st.Score)
	}
	if st.Score.Points != st.Score.Correct*10 {
		t.Fatalf("points %d do not match %d correct answers", st.Score.Points, st.Score.Correct)
	}
	if st.Score.Correct != 3 || st.Score.Unanswered != 2 {
		t.Fatalf("unexpected score %+v", st.Score)
	}
	for i, rec := range st.Answers {
		if !rec.Resolved {
			t.Fatalf("answer %d not resolved", i+1)
		}
	}
	for i, order := range st.Orders {
		seen := make(map[int]bool, len(order))
		for _, idx := range order {
			if idx < 0 || idx >= len(order) || seen[idx] {
				t.Fatalf("order %d is not a permutation: %v", i+1, order)
			}
			seen[idx] = true
		}
	}
}

func TestSelectRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	renderer := newRecordingRenderer()
	engine := newTestEngine(sched, renderer, identityPermuter{}, questionSet("input", 1))

	if err := engine.Load(ctx, "input"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := engine.Select(0); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected ErrNoActiveQuestion on landing, got %v", err)
	}
	if err := engine.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := engine.Select(4); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if st := engine.State(); st.Answers[0].Resolved {
		t.Fatalf("invalid selection must not resolve the question")
	}

	engine.Close()
	if _, err := engine.Select(0); !errors.Is(err, domain.ErrRunClosed) {
		t.Fatalf("expected ErrRunClosed, got %v", err)
	}
	sched.Advance(time.Minute)
	if st := engine.State(); st.Answers[0].Resolved {
		t.Fatalf("closed engine must not time out")
	}
}

func indexOf(order []int, original int) int {
	for pos, idx := range order {
		if idx == original {
			return pos
		}
	}
	return -1
}
