package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// SpinnerSink renders setup stages on a terminal spinner
type SpinnerSink struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
	stages  []stageInfo
}

type stageInfo struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
}

// NewSpinnerSink creates a spinner writing to stderr
func NewSpinnerSink() *SpinnerSink {
	return newSpinnerSink(os.Stderr)
}

func newSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerSink{
		out:     out,
		spinner: s,
	}
}

// OnProgress advances the stage display. A new Stage closes the previous one.
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Stage != "" && (len(r.stages) == 0 || r.stages[len(r.stages)-1].Name != event.Stage) {
		r.completeCurrentStage()
		r.stages = append(r.stages, stageInfo{Name: event.Stage, StartTime: time.Now()})
	}

	if !event.Spinner {
		if r.spinner.Active() {
			r.spinner.Stop()
		}
		return
	}

	if !r.spinner.Active() {
		r.spinner.Start()
	}
	r.spinner.Suffix = " " + r.display(event)
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.print(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.print(color.New(color.FgRed), message)
}

// Stop halts the spinner and marks the last stage done
func (r *SpinnerSink) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeCurrentStage()
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

func (r *SpinnerSink) print(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	_, _ = c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerSink) completeCurrentStage() {
	if len(r.stages) > 0 && r.stages[len(r.stages)-1].EndTime.IsZero() {
		r.stages[len(r.stages)-1].EndTime = time.Now()
	}
}

// display renders completed stages followed by the running one and its counter
func (r *SpinnerSink) display(event usecase.ProgressEvent) string {
	parts := make([]string, 0, len(r.stages))
	for _, stage := range r.stages {
		if !stage.EndTime.IsZero() {
			parts = append(parts, fmt.Sprintf("✓ %s (%s)",
				color.GreenString(stage.Name),
				stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond)))
			continue
		}
		label := "● " + color.YellowString(stage.Name)
		if event.Total > 0 {
			label += fmt.Sprintf(" [%d/%d]", event.Current, event.Total)
		}
		if event.Message != "" {
			label += " " + event.Message
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " → ")
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
