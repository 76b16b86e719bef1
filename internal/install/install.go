// Package install simulates an installation that reports progress.
package install

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"installsplash/internal/progress"
)

// DefaultSteps is the plan used when none is configured.
var DefaultSteps = []string{
	"Checking for updates",
	"Downloading",
	"Verifying",
	"Installing",
}

// Plan describes a simulated installation.
type Plan struct {
	Steps     []string
	StepDelay time.Duration
}

// WithStepCount returns a copy of the plan with exactly n steps. Extra steps
// cycle through the existing ones, or through DefaultSteps if there are none.
func (p Plan) WithStepCount(n int) Plan {
	base := p.Steps
	if len(base) == 0 {
		base = DefaultSteps
	}
	steps := make([]string, n)
	for i := range steps {
		steps[i] = base[i%len(base)]
	}
	p.Steps = steps
	return p
}

// Run walks the plan, emitting one running event per step and a settled event
// at the end. If ctx is cancelled it emits an aborted event and returns
// ctx.Err().
func Run(ctx context.Context, plan Plan, em progress.Emitter) error {
	total := strconv.Itoa(len(plan.Steps))

	for i, step := range plan.Steps {
		em.Emit(progress.Event{
			Message: step,
			Status:  progress.StatusRunning,
			Metadata: map[string]string{
				"step":  strconv.Itoa(i + 1),
				"total": total,
			},
		})

		select {
		case <-ctx.Done():
			em.Emit(progress.Event{
				Message: fmt.Sprintf("%s: %v", step, ctx.Err()),
				Status:  progress.StatusAborted,
			})
			return ctx.Err()
		case <-time.After(plan.StepDelay):
		}
	}

	em.Emit(progress.Event{Message: "Installation complete", Status: progress.StatusDone})
	return nil
}
