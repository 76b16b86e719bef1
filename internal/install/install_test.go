package install

import (
	"context"
	"sync"
	"testing"
	"time"

	"installsplash/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (e *sliceEmitter) Emit(ev progress.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func TestRun_EmitsEachStepThenDone(t *testing.T) {
	em := &sliceEmitter{}
	err := Run(context.Background(), Plan{Steps: []string{"a", "b"}, StepDelay: time.Millisecond}, em)
	require.NoError(t, err)

	require.Len(t, em.events, 3)
	assert.Equal(t, "a", em.events[0].Message)
	assert.Equal(t, "1", em.events[0].Metadata["step"])
	assert.Equal(t, "2", em.events[1].Metadata["step"])
	assert.Equal(t, "2", em.events[1].Metadata["total"])
	assert.Equal(t, progress.StatusDone, em.events[2].Status)
}

func TestRun_EmptyPlanIsDone(t *testing.T) {
	em := &sliceEmitter{}
	require.NoError(t, Run(context.Background(), Plan{}, em))
	require.Len(t, em.events, 1)
	assert.Equal(t, progress.StatusDone, em.events[0].Status)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	em := &sliceEmitter{}
	err := Run(ctx, Plan{Steps: []string{"a", "b"}, StepDelay: time.Hour}, em)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, em.events, 2)
	assert.Equal(t, progress.StatusRunning, em.events[0].Status)
	assert.Equal(t, progress.StatusAborted, em.events[1].Status)
}

func TestPlan_WithStepCount(t *testing.T) {
	p := Plan{Steps: []string{"a", "b", "c"}, StepDelay: time.Second}

	short := p.WithStepCount(2)
	assert.Equal(t, []string{"a", "b"}, short.Steps)
	assert.Equal(t, time.Second, short.StepDelay)

	long := p.WithStepCount(5)
	assert.Equal(t, []string{"a", "b", "c", "a", "b"}, long.Steps)
	assert.Equal(t, []string{"a", "b", "c"}, p.Steps)

	assert.Equal(t, DefaultSteps[:1], Plan{}.WithStepCount(1).Steps)
}
