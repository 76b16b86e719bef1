package splash

import (
	"bytes"
	"log"
	"sync"
	"testing"
	"time"

	"installsplash/internal/toolkit"
	"installsplash/internal/toolkit/headless"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const waitFor = 5 * time.Second

// syncBuffer is a bytes.Buffer safe for a logger shared across goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newScreen(t *testing.T, opts headless.Options, extra ...Option) (*Screen, *headless.Toolkit, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	tk := headless.New(opts)
	all := append([]Option{WithLogger(log.New(buf, "", 0))}, extra...)
	return New("Foo", tk, all...), tk, buf
}

func waitState(t *testing.T, s *Screen, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == want },
		waitFor, 5*time.Millisecond, "state never reached %s (at %s)", want, s.State())
}

func waitDone(t *testing.T, s *Screen) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatalf("surface goroutine did not exit (state %s)", s.State())
	}
}

func TestInstallerDisplayName(t *testing.T) {
	assert.Equal(t, "Foo Installer", InstallerDisplayName("Foo"))
	assert.Equal(t, "Foo Installer", InstallerDisplayName("  Foo "))
	assert.Equal(t, "Installer", InstallerDisplayName(""))
	assert.Equal(t, "Initializing Foo Installer...", StatusMessage("Foo Installer"))
}

func TestNew_StartsCreated(t *testing.T) {
	s, tk, _ := newScreen(t, headless.Options{})
	assert.Equal(t, StateCreated, s.State())
	assert.Equal(t, "Foo Installer", s.Caption())
	assert.Equal(t, "Initializing Foo Installer...", s.Text())
	assert.Nil(t, tk.Last())
	s.Close()
}

func TestDismiss_BeforeShowCloses(t *testing.T) {
	s, tk, _ := newScreen(t, headless.Options{})
	for i := 0; i < 3; i++ {
		s.Dismiss()
	}
	assert.Equal(t, StateClosed, s.State())
	assert.Nil(t, tk.Last(), "no surface may be created")
	assert.Panics(t, s.Show, "Show after close")
}

func TestShow_TwicePanics(t *testing.T) {
	s, _, _ := newScreen(t, headless.Options{})
	s.Show()
	waitState(t, s, StateShowNormal)
	assert.Panics(t, s.Show)

	s.Dismiss()
	waitDone(t, s)
	s.Close()
}

func TestShow_DisplaysSurface(t *testing.T) {
	s, tk, _ := newScreen(t, headless.Options{})
	s.Show()
	waitState(t, s, StateShowNormal)

	surface := tk.Last()
	require.NotNil(t, surface)
	assert.Equal(t, "Foo Installer", surface.Title())
	assert.Contains(t, surface.Caption(), "Foo")
	assert.Contains(t, surface.ControlText(toolkit.ControlStatusText), "Foo Installer")
	assert.True(t, surface.ControlVisible(toolkit.ControlStatusText))
	assert.False(t, surface.ControlVisible(toolkit.ControlImage))
	assert.False(t, surface.SystemButtons())
	assert.True(t, surface.Indeterminate())
	assert.True(t, surface.Centered())
	assert.True(t, surface.Shown())
	assert.Equal(t, toolkit.IconApp, surface.Icon())
	assert.Equal(t, []int{100}, surface.Transparencies())

	s.Dismiss()
	waitDone(t, s)
	s.Close()
}

func TestDismiss_FadesThenCloses(t *testing.T) {
	s, tk, _ := newScreen(t, headless.Options{})
	s.Show()
	waitState(t, s, StateShowNormal)

	s.Dismiss()
	assert.Equal(t, StateFading, s.State())
	s.Dismiss()

	waitDone(t, s)
	assert.Equal(t, StateClosed, s.State())

	surface := tk.Last()
	assert.Equal(t, []int{100, 93, 85, 75, 62, 47, 30}, surface.Transparencies())
	assert.Equal(t, 1, surface.TimersArmed())
	assert.Equal(t, 7, surface.Ticks())
	assert.False(t, surface.Alive())

	s.Dismiss()
	assert.Equal(t, StateClosed, s.State())
	s.Close()
}

func TestDismiss_RacingShow(t *testing.T) {
	for i := 0; i < 20; i++ {
		s, tk, _ := newScreen(t, headless.Options{})
		s.Show()
		s.Dismiss()

		waitDone(t, s)
		assert.Equal(t, StateClosed, s.State())
		if surface := tk.Last(); surface != nil {
			assert.False(t, surface.Alive(), "surface leaked")
		}
		s.Close()
	}
}

func TestDismiss_TimerFailureClosesImmediately(t *testing.T) {
	s, tk, buf := newScreen(t, headless.Options{FailTimer: true})
	s.Show()
	waitState(t, s, StateShowNormal)

	s.Dismiss()
	waitDone(t, s)

	assert.Equal(t, StateClosed, s.State())
	surface := tk.Last()
	assert.Equal(t, 0, surface.Ticks())
	assert.Equal(t, []int{100}, surface.Transparencies())
	assert.Contains(t, buf.String(), "SetTimer failed")
	s.Close()
}

func TestClose_TimesOutWithoutDismiss(t *testing.T) {
	s, _, buf := newScreen(t, headless.Options{}, WithShutdownTimeout(50*time.Millisecond))
	s.Show()
	waitState(t, s, StateShowNormal)

	start := time.Now()
	s.Close()
	assert.Less(t, time.Since(start), waitFor)
	assert.Contains(t, buf.String(), "failed to exit")

	// The abandoned goroutine still tears down once its loop is driven to exit.
	s.Dismiss()
	waitDone(t, s)
	assert.Equal(t, StateClosed, s.State())
}

func TestClose_UnexpectedFinalStateLogs(t *testing.T) {
	s, _, buf := newScreen(t, headless.Options{})
	s.mu.Lock()
	s.started = true
	s.state = StateShowNormal
	s.mu.Unlock()
	close(s.done)

	assert.NotPanics(t, s.Close)
	assert.Contains(t, buf.String(), "exited in state show-normal")
}

func TestShow_CreateFailureLeavesCreated(t *testing.T) {
	s, tk, buf := newScreen(t, headless.Options{FailCreate: true})
	s.Show()
	waitDone(t, s)

	assert.Equal(t, StateCreated, s.State())
	assert.Nil(t, tk.Last())
	assert.Contains(t, buf.String(), ErrInternalUI.Error())
	s.Close()

	s.Dismiss()
	assert.Equal(t, StateClosed, s.State())
}

func TestShow_IconFailureIsNotFatal(t *testing.T) {
	s, _, buf := newScreen(t, headless.Options{FailIcon: true})
	s.Show()
	waitState(t, s, StateShowNormal)
	assert.Contains(t, buf.String(), "SetIcon failed")

	s.Dismiss()
	waitDone(t, s)
	s.Close()
}

func TestDismiss_InitializedIsDropped(t *testing.T) {
	s, _, _ := newScreen(t, headless.Options{})
	s.mu.Lock()
	s.state = StateInitialized
	s.mu.Unlock()

	s.Dismiss()
	assert.Equal(t, StateInitialized, s.State())
}

func TestFadeStep_AtZeroPanics(t *testing.T) {
	s, _, _ := newScreen(t, headless.Options{})
	s.mu.Lock()
	s.state = StateFading
	s.alphaIndex = 0
	s.mu.Unlock()

	assert.Panics(t, s.fadeStep)
}

func TestFadeStep_OutsideFadingPanics(t *testing.T) {
	s, _, _ := newScreen(t, headless.Options{})
	s.mu.Lock()
	s.state = StateShowNormal
	s.alphaIndex = len(AlphaScales) - 1
	s.mu.Unlock()

	assert.Panics(t, s.fadeStep)
}

func TestShow_RecordsSurfaceSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(t.Context()) }()

	s, _, _ := newScreen(t, headless.Options{}, WithTracer(tp.Tracer("test")))
	s.Show()
	waitState(t, s, StateShowNormal)
	s.Dismiss()
	waitDone(t, s)
	s.Close()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "splash.surface", spans[0].Name())

	var states []string
	for _, ev := range spans[0].Events() {
		for _, kv := range ev.Attributes {
			if kv.Key == "splash.state" {
				states = append(states, kv.Value.AsString())
			}
		}
	}
	assert.Equal(t, []string{"initialized", "show-normal", "fading", "closed"}, states)
}
