package terminal

import (
	"fmt"
	"io"
	"sync"

	"slide-quiz/internal/domain"
)

// Renderer prints slides as plain text. It implements app.Renderer.
type Renderer struct {
	mu      sync.Mutex
	out     io.Writer
	title   string
	options map[int][]string
	done    chan domain.Summary
}

func NewRenderer(out io.Writer, title string) *Renderer {
	return &Renderer{
		out:     out,
		title:   title,
		options: make(map[int][]string),
		done:    make(chan domain.Summary, 1),
	}
}

// Done receives the summary each time a results panel is shown.
func (r *Renderer) Done() <-chan domain.Summary {
	return r.done
}

func (r *Renderer) ShowSlide(index int) {
	if index != 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\n== %s ==\n", r.title)
	fmt.Fprintln(r.out, "Type an option number and press Enter. r restarts, q quits.")
}

func (r *Renderer) RenderQuestion(index int, prompt string, options []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.options[index] = options
	fmt.Fprintf(r.out, "\nQuestion %d: %s\n", index, prompt)
	for i, opt := range options {
		fmt.Fprintf(r.out, "  %d) %s\n", i+1, opt)
	}
}

func (r *Renderer) MarkOption(index, position int, state domain.MarkState) {
	if state == domain.MarkSelected {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	text := ""
	if opts := r.options[index]; position >= 0 && position < len(opts) {
		text = opts[position]
	}
	marker := "correct:"
	if state == domain.MarkIncorrect {
		marker = "wrong:  "
	}
	fmt.Fprintf(r.out, "\n  %s %d) %s\n", marker, position+1, text)
}

func (r *Renderer) UpdateTimer(_ int, secondsLeft int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if secondsLeft <= 0 {
		fmt.Fprint(r.out, "\r  time's up!       \n")
		return
	}
	fmt.Fprintf(r.out, "\r  time left: %2ds ", secondsLeft)
}

func (r *Renderer) ShowResults(summary domain.Summary) {
	r.mu.Lock()
	fmt.Fprintln(r.out, "\n== Quiz Complete! ==")
	fmt.Fprintf(r.out, "  Total Score:        %d/%d\n", summary.Points, summary.MaxPoints)
	fmt.Fprintf(r.out, "  Percentage:         %d%%\n", summary.Percentage)
	fmt.Fprintf(r.out, "  Correct Answers:    %d\n", summary.Correct)
	fmt.Fprintf(r.out, "  Wrong Answers:      %d\n", summary.Wrong)
	if summary.Unanswered > 0 {
		fmt.Fprintf(r.out, "  (of which timed out: %d)\n", summary.Unanswered)
	}
	fmt.Fprintf(r.out, "  Total Questions:    %d\n", summary.Questions)
	fmt.Fprintf(r.out, "  Marks per Question: %d\n", summary.MarksPerQuestion)
	r.mu.Unlock()

	select {
	case r.done <- summary:
	default:
	}
}

// Notice prints a one-line message outside the slide flow.
func (r *Renderer) Notice(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\n  "+format+"\n", args...)
}
