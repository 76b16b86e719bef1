package splash

import (
	"context"
	"fmt"
	"runtime"

	"installsplash/internal/toolkit"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// run owns the surface from creation to destruction. Native toolkits require
// that to happen on a single OS thread.
func (s *Screen) run() {
	defer close(s.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	_, span := s.tracer.Start(context.Background(), "splash.surface",
		trace.WithAttributes(attribute.String("splash.caption", s.caption)))
	defer span.End()

	s.mu.Lock()
	if s.state != StateCreated {
		// Dismissed before this goroutine got scheduled.
		s.mu.Unlock()
		span.AddEvent("splash.skipped")
		return
	}
	s.span = span

	if err := s.initialize(); err != nil {
		s.logger.Printf("splash: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "initialize failed")
		s.mu.Unlock()
		return
	}
	s.surface.Show()
	s.fire(eventShown)
	surface := s.surface
	s.mu.Unlock()

	surface.RunMessageLoop()

	s.mu.Lock()
	s.fire(eventLoopExited)
	s.mu.Unlock()
}

// initialize creates and decorates the surface. Only creation failures are
// fatal. Caller holds s.mu.
func (s *Screen) initialize() error {
	if s.surface != nil || s.state != StateCreated {
		violation("initialize", s.state)
	}

	surface, err := s.tk.CreateSurface(s.caption, handler{s})
	if err != nil {
		return fmt.Errorf("%w: create surface: %w", ErrInternalUI, err)
	}
	s.surface = surface

	if err := surface.SetCaption(s.caption); err != nil {
		s.logger.Printf("splash: SetCaption failed: %v", err)
	}
	surface.SetSystemButtons(false)
	surface.ShowControl(toolkit.ControlImage, false)
	surface.ShowControl(toolkit.ControlStatusText, true)
	if err := surface.SetControlText(toolkit.ControlStatusText, s.text); err != nil {
		s.logger.Printf("splash: SetControlText failed: %v", err)
	}
	if err := surface.SetProgressIndeterminate(); err != nil {
		s.logger.Printf("splash: SetProgressIndeterminate failed: %v", err)
	}
	if err := surface.SetTransparency(AlphaScales[len(AlphaScales)-1]); err != nil {
		s.logger.Printf("splash: SetTransparency failed: %v", err)
	}
	if err := surface.Center(); err != nil {
		s.logger.Printf("splash: Center failed: %v", err)
	}
	if err := surface.SetIcon(toolkit.IconApp); err != nil {
		s.logger.Printf("splash: SetIcon failed: %v", err)
	}

	s.fire(eventInitialized)
	return nil
}

// handler receives the surface's messages on the surface goroutine.
type handler struct {
	s *Screen
}

var _ toolkit.Handler = handler{}

func (h handler) OnTimer(id int) {
	if id != FadeTimerID {
		return
	}
	h.s.fadeStep()
}

func (h handler) OnCloseRequest() {
	h.s.surface.Destroy()
}

func (h handler) OnDestroyed() {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timerArmed {
		s.surface.KillTimer(FadeTimerID)
		s.timerArmed = false
	}
	s.surface.PostQuit()
}
