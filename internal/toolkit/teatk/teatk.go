// Package teatk draws splash surfaces in the terminal with Bubble Tea.
//
// Each surface owns a tea.Program. RunMessageLoop runs the program, so the
// handler callbacks execute inside Update on the goroutine that called it.
// Messages posted from elsewhere go through Program.Send on helper goroutines
// and never block the loop.
package teatk

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"installsplash/internal/toolkit"

	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the terminal toolkit.
type Options struct {
	// Output defaults to stdout.
	Output io.Writer
	// Input enables keyboard input. Splash surfaces ignore keys, so nil
	// (no input) is the usual choice.
	Input io.Reader
	// AltScreen draws on the alternate screen buffer.
	AltScreen bool
	// NoSignalHandler leaves SIGINT/SIGTERM to the caller.
	NoSignalHandler bool
	// Background is the hex color the fade blends toward.
	Background string
	// Width is the box width in columns.
	Width int
	// Logger defaults to log.Default().
	Logger *log.Logger
}

const (
	defaultBackground = "#000000"
	defaultWidth      = 48
)

// Toolkit creates terminal surfaces.
type Toolkit struct {
	opts Options
}

var _ toolkit.Toolkit = (*Toolkit)(nil)

// New returns a terminal toolkit.
func New(opts Options) *Toolkit {
	if opts.Background == "" {
		opts.Background = defaultBackground
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Toolkit{opts: opts}
}

// CreateSurface implements toolkit.Toolkit.
func (t *Toolkit) CreateSurface(title string, h toolkit.Handler) (toolkit.Surface, error) {
	if h == nil {
		return nil, fmt.Errorf("teatk: create %q: nil handler: %w", title, toolkit.ErrCreateFailed)
	}
	s := &Surface{
		h:      h,
		logger: t.opts.Logger,
		timers: make(map[int]*timer),
	}
	s.m = newModel(s, title, t.opts)

	progOpts := []tea.ProgramOption{tea.WithInput(t.opts.Input)}
	if t.opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(t.opts.Output))
	}
	if t.opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if t.opts.NoSignalHandler {
		progOpts = append(progOpts, tea.WithoutSignalHandler())
	}
	s.program = tea.NewProgram(s.m, progOpts...)
	s.alive.Store(true)
	return s, nil
}

// Message types delivered through the program.
type (
	timerMsg struct{ t *timer }
	closeMsg struct{}
	quitMsg  struct{}
)

type timer struct {
	id   int
	stop chan struct{}
}

// Surface is a terminal splash box.
type Surface struct {
	h       toolkit.Handler
	logger  *log.Logger
	program *tea.Program
	m       *model

	alive atomic.Bool

	mu     sync.Mutex
	timers map[int]*timer
}

var _ toolkit.Surface = (*Surface)(nil)

// post delivers msg to the loop without blocking the caller.
func (s *Surface) post(msg tea.Msg) {
	go s.program.Send(msg)
}

// SetCaption implements toolkit.Surface.
func (s *Surface) SetCaption(text string) error {
	if !s.alive.Load() {
		return toolkit.ErrDestroyed
	}
	s.m.caption = text
	return nil
}

// SetSystemButtons implements toolkit.Surface.
func (s *Surface) SetSystemButtons(enabled bool) {
	s.m.sysButtons = enabled
}

// ShowControl implements toolkit.Surface.
func (s *Surface) ShowControl(id toolkit.Control, visible bool) {
	s.m.visible[id] = visible
}

// SetControlText implements toolkit.Surface.
func (s *Surface) SetControlText(id toolkit.Control, text string) error {
	if !s.alive.Load() {
		return toolkit.ErrDestroyed
	}
	if id != toolkit.ControlStatusText {
		return fmt.Errorf("teatk: control %s has no text", id)
	}
	s.m.status = text
	return nil
}

// SetProgressIndeterminate implements toolkit.Surface.
func (s *Surface) SetProgressIndeterminate() error {
	s.m.indeterminate = true
	return nil
}

// SetTransparency implements toolkit.Surface.
func (s *Surface) SetTransparency(percent int) error {
	if !s.alive.Load() {
		return toolkit.ErrDestroyed
	}
	if percent < 0 || percent > 100 {
		return fmt.Errorf("teatk: transparency %d%% out of range", percent)
	}
	s.m.alpha = toolkit.AlphaValue(percent)
	return nil
}

// Center implements toolkit.Surface.
func (s *Surface) Center() error {
	s.m.centered = true
	return nil
}

// SetIcon implements toolkit.Surface.
func (s *Surface) SetIcon(id string) error {
	glyph, ok := icons[id]
	if !ok {
		return fmt.Errorf("teatk: icon %q: %w", id, toolkit.ErrUnknownIcon)
	}
	s.m.icon = glyph
	return nil
}

// Show implements toolkit.Surface.
func (s *Surface) Show() {
	s.m.shown = true
}

// SetTimer implements toolkit.Surface.
func (s *Surface) SetTimer(id int, interval time.Duration) bool {
	if !s.alive.Load() || interval <= 0 {
		return false
	}
	t := &timer{id: id, stop: make(chan struct{})}
	s.mu.Lock()
	if old, ok := s.timers[id]; ok {
		close(old.stop)
	}
	s.timers[id] = t
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				s.program.Send(timerMsg{t: t})
			}
		}
	}()
	return true
}

// KillTimer implements toolkit.Surface.
func (s *Surface) KillTimer(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		close(t.stop)
		delete(s.timers, id)
	}
}

func (s *Surface) current(t *timer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[t.id] == t
}

func (s *Surface) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		close(t.stop)
		delete(s.timers, id)
	}
}

// PostClose implements toolkit.Surface.
func (s *Surface) PostClose() bool {
	if !s.alive.Load() {
		return false
	}
	s.post(closeMsg{})
	return true
}

// Alive implements toolkit.Surface.
func (s *Surface) Alive() bool {
	return s.alive.Load()
}

// Destroy implements toolkit.Surface.
func (s *Surface) Destroy() {
	if !s.alive.CompareAndSwap(true, false) {
		return
	}
	s.m.shown = false
	s.h.OnDestroyed()
}

// PostQuit implements toolkit.Surface.
func (s *Surface) PostQuit() {
	s.post(quitMsg{})
}

// RunMessageLoop implements toolkit.Surface.
func (s *Surface) RunMessageLoop() {
	if _, err := s.program.Run(); err != nil {
		s.logger.Printf("teatk: message loop: %v", err)
	}
	s.alive.Store(false)
	s.stopTimers()
}
