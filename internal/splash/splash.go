// Package splash shows a transient surface while an installation runs.
//
// A Screen owns one surface on a dedicated goroutine. Show starts that
// goroutine, Dismiss fades the surface out from any goroutine, and Close waits,
// bounded, for the goroutine to finish. A Screen is single-use.
package splash

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"installsplash/internal/toolkit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// FadeTimerID identifies the fade timer on the surface.
	FadeTimerID = 1
	// FadeInterval is the delay between fade steps.
	FadeInterval = 100 * time.Millisecond
	// ShutdownTimeout bounds how long Close waits for the surface goroutine.
	ShutdownTimeout = 60 * time.Second
)

// ErrInternalUI is returned when the surface cannot be created.
var ErrInternalUI = errors.New("splash: internal UI error")

// Option configures a Screen.
type Option func(*Screen)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Screen) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for the surface span.
func WithTracer(t trace.Tracer) Option {
	return func(s *Screen) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithShutdownTimeout overrides ShutdownTimeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Screen) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// Screen is the splash lifecycle controller.
type Screen struct {
	tk              toolkit.Toolkit
	logger          *log.Logger
	tracer          trace.Tracer
	shutdownTimeout time.Duration
	fadeInterval    time.Duration

	caption string
	text    string

	mu         sync.Mutex
	state      State
	alphaIndex int
	timerArmed bool
	started    bool
	surface    toolkit.Surface
	span       trace.Span

	done chan struct{}
}

// New creates a Screen for the named bundle. Nothing is shown until Show.
func New(bundleName string, tk toolkit.Toolkit, opts ...Option) *Screen {
	caption := InstallerDisplayName(bundleName)
	s := &Screen{
		tk:              tk,
		logger:          log.Default(),
		tracer:          otel.Tracer("installsplash/splash"),
		shutdownTimeout: ShutdownTimeout,
		fadeInterval:    FadeInterval,
		caption:         caption,
		text:            StatusMessage(caption),
		span:            trace.SpanFromContext(context.Background()),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.switchToState(StateCreated)
	s.mu.Unlock()
	return s
}

// Caption returns the window caption.
func (s *Screen) Caption() string { return s.caption }

// Text returns the status text.
func (s *Screen) Text() string { return s.text }

// State returns the current lifecycle state.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the surface goroutine exits. It never closes if Show
// was not called.
func (s *Screen) Done() <-chan struct{} { return s.done }

// Show starts the surface goroutine and returns without waiting for the
// surface to appear. It panics unless the Screen is freshly created.
func (s *Screen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCreated || s.started {
		violation("show", s.state)
	}
	s.started = true
	go s.run()
}

// Dismiss closes the splash. A visible surface fades out; one that never
// appeared is not created at all. Safe to call from any goroutine, any number
// of times.
func (s *Screen) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire(eventDismiss)
}

// Close waits for the surface goroutine to exit, up to the shutdown timeout.
// On timeout it logs and returns, leaving the goroutine running. Close never
// panics.
func (s *Screen) Close() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}

	timer := time.NewTimer(s.shutdownTimeout)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
		s.logger.Printf("splash: surface goroutine failed to exit within %s", s.shutdownTimeout)
		return
	}

	if st := s.State(); st != StateCreated && st != StateClosed {
		s.logger.Printf("splash: surface goroutine exited in state %s", st)
	}
}

// fire feeds an event through the transition table. Caller holds s.mu.
func (s *Screen) fire(ev event) State {
	to, ok := next(s.state, ev)
	if !ok {
		violation(ev.String(), s.state)
	}
	if to != s.state {
		s.switchToState(to)
	}
	return to
}

// switchToState is the only place state changes. Caller holds s.mu.
func (s *Screen) switchToState(to State) {
	if to < StateCreated || to > StateClosed {
		violation("switch", to)
	}
	s.state = to
	s.span.AddEvent("splash.state", trace.WithAttributes(attribute.String("splash.state", to.String())))

	switch to {
	case StateShowNormal:
		s.alphaIndex = len(AlphaScales) - 1
	case StateFading:
		// The surface can only be gone here if its loop ended on its own and
		// loopExited has not been processed yet.
		s.timerArmed = s.surfaceAlive() && s.surface.SetTimer(FadeTimerID, s.fadeInterval)
		if !s.timerArmed {
			s.logger.Printf("splash: SetTimer failed, closing surface directly")
			s.closeLocked()
		}
	}
}

// closeLocked asks the surface to close itself. Caller holds s.mu.
func (s *Screen) closeLocked() {
	if s.state != StateClosed && s.surfaceAlive() {
		s.surface.PostClose()
	}
}

func (s *Screen) surfaceAlive() bool {
	return s.surface != nil && s.surface.Alive()
}
