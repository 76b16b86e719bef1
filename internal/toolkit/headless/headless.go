// Package headless implements the toolkit contract without a display.
//
// Surfaces keep their state in memory and run a real message loop, so timers,
// posted close requests and quit behave as they would on screen. Every call is
// recorded for inspection, and failures can be injected per toolkit.
package headless

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"installsplash/internal/toolkit"
)

// Options configures fault injection and logging.
type Options struct {
	FailCreate bool // CreateSurface returns toolkit.ErrCreateFailed
	FailTimer  bool // SetTimer reports false
	FailIcon   bool // SetIcon returns toolkit.ErrUnknownIcon

	// Logger, if set, receives one line per recorded operation.
	Logger *log.Logger
}

// Toolkit hands out headless surfaces.
type Toolkit struct {
	opts Options

	mu       sync.Mutex
	surfaces []*Surface
}

var _ toolkit.Toolkit = (*Toolkit)(nil)

// New creates a headless toolkit.
func New(opts Options) *Toolkit {
	return &Toolkit{opts: opts}
}

// CreateSurface implements toolkit.Toolkit.
func (t *Toolkit) CreateSurface(title string, h toolkit.Handler) (toolkit.Surface, error) {
	if t.opts.FailCreate {
		return nil, fmt.Errorf("headless: create %q: %w", title, toolkit.ErrCreateFailed)
	}
	s := &Surface{
		opts:    t.opts,
		h:       h,
		title:   title,
		wake:    make(chan struct{}, 1),
		timers:  make(map[int]*timer),
		texts:   make(map[toolkit.Control]string),
		visible: map[toolkit.Control]bool{toolkit.ControlImage: true, toolkit.ControlProgress: true},
		sysBtns: true,
	}
	s.alive.Store(true)
	s.record("create", title)

	t.mu.Lock()
	t.surfaces = append(t.surfaces, s)
	t.mu.Unlock()
	return s, nil
}

// Surfaces returns every surface created so far.
func (t *Toolkit) Surfaces() []*Surface {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Surface, len(t.surfaces))
	copy(out, t.surfaces)
	return out
}

// Last returns the most recently created surface, or nil.
func (t *Toolkit) Last() *Surface {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.surfaces) == 0 {
		return nil
	}
	return t.surfaces[len(t.surfaces)-1]
}

// Op is one recorded surface call.
type Op struct {
	Name string
	Arg  string
}

type msgKind int

const (
	msgTimer msgKind = iota
	msgClose
	msgQuit
)

type message struct {
	kind  msgKind
	timer *timer
}

type timer struct {
	id   int
	stop chan struct{}
}

// Surface is an in-memory surface with its own message queue.
type Surface struct {
	opts Options
	h    toolkit.Handler

	alive atomic.Bool
	wake  chan struct{}

	mu            sync.Mutex
	queue         []message
	timers        map[int]*timer
	ops           []Op
	title         string
	caption       string
	texts         map[toolkit.Control]string
	visible       map[toolkit.Control]bool
	sysBtns       bool
	indeterminate bool
	centered      bool
	icon          string
	shown         bool
	alphas        []int
	timersArmed   int
	ticks         int
}

var _ toolkit.Surface = (*Surface)(nil)

func (s *Surface) record(name, arg string) {
	s.mu.Lock()
	s.ops = append(s.ops, Op{Name: name, Arg: arg})
	s.mu.Unlock()
	if s.opts.Logger != nil {
		s.opts.Logger.Printf("headless: %s %s", name, arg)
	}
}

func (s *Surface) post(m message) {
	s.mu.Lock()
	s.queue = append(s.queue, m)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// SetCaption implements toolkit.Surface.
func (s *Surface) SetCaption(text string) error {
	if !s.alive.Load() {
		return toolkit.ErrDestroyed
	}
	s.mu.Lock()
	s.caption = text
	s.mu.Unlock()
	s.record("caption", text)
	return nil
}

// SetSystemButtons implements toolkit.Surface.
func (s *Surface) SetSystemButtons(enabled bool) {
	s.mu.Lock()
	s.sysBtns = enabled
	s.mu.Unlock()
	s.record("system-buttons", strconv.FormatBool(enabled))
}

// ShowControl implements toolkit.Surface.
func (s *Surface) ShowControl(id toolkit.Control, visible bool) {
	s.mu.Lock()
	s.visible[id] = visible
	s.mu.Unlock()
	s.record("show-control", fmt.Sprintf("%s=%t", id, visible))
}

// SetControlText implements toolkit.Surface.
func (s *Surface) SetControlText(id toolkit.Control, text string) error {
	if !s.alive.Load() {
		return toolkit.ErrDestroyed
	}
	s.mu.Lock()
	s.texts[id] = text
	s.mu.Unlock()
	s.record("control-text", fmt.Sprintf("%s=%s", id, text))
	return nil
}

// SetProgressIndeterminate implements toolkit.Surface.
func (s *Surface) SetProgressIndeterminate() error {
	s.mu.Lock()
	s.indeterminate = true
	s.mu.Unlock()
	s.record("progress", "indeterminate")
	return nil
}

// SetTransparency implements toolkit.Surface.
func (s *Surface) SetTransparency(percent int) error {
	if !s.alive.Load() {
		return toolkit.ErrDestroyed
	}
	alpha := toolkit.AlphaValue(percent)
	s.mu.Lock()
	s.alphas = append(s.alphas, percent)
	s.mu.Unlock()
	s.record("transparency", fmt.Sprintf("%d%% (%d)", percent, alpha))
	return nil
}

// Center implements toolkit.Surface.
func (s *Surface) Center() error {
	s.mu.Lock()
	s.centered = true
	s.mu.Unlock()
	s.record("center", "")
	return nil
}

// SetIcon implements toolkit.Surface.
func (s *Surface) SetIcon(id string) error {
	if s.opts.FailIcon {
		return fmt.Errorf("headless: icon %q: %w", id, toolkit.ErrUnknownIcon)
	}
	s.mu.Lock()
	s.icon = id
	s.mu.Unlock()
	s.record("icon", id)
	return nil
}

// Show implements toolkit.Surface.
func (s *Surface) Show() {
	s.mu.Lock()
	s.shown = true
	s.mu.Unlock()
	s.record("show", "")
}

// SetTimer implements toolkit.Surface.
func (s *Surface) SetTimer(id int, interval time.Duration) bool {
	if s.opts.FailTimer || !s.alive.Load() || interval <= 0 {
		return false
	}
	t := &timer{id: id, stop: make(chan struct{})}
	s.mu.Lock()
	if old, ok := s.timers[id]; ok {
		close(old.stop)
	}
	s.timers[id] = t
	s.timersArmed++
	s.mu.Unlock()
	s.record("set-timer", fmt.Sprintf("%d/%s", id, interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				s.post(message{kind: msgTimer, timer: t})
			}
		}
	}()
	return true
}

// KillTimer implements toolkit.Surface.
func (s *Surface) KillTimer(id int) {
	s.mu.Lock()
	t, ok := s.timers[id]
	if ok {
		close(t.stop)
		delete(s.timers, id)
	}
	s.mu.Unlock()
	if ok {
		s.record("kill-timer", strconv.Itoa(id))
	}
}

// PostClose implements toolkit.Surface.
func (s *Surface) PostClose() bool {
	if !s.alive.Load() {
		return false
	}
	s.post(message{kind: msgClose})
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
	s.record("destroy", "")
	s.h.OnDestroyed()
}

// PostQuit implements toolkit.Surface.
func (s *Surface) PostQuit() {
	s.post(message{kind: msgQuit})
}

// RunMessageLoop implements toolkit.Surface.
func (s *Surface) RunMessageLoop() {
	for {
		m := s.next()
		switch m.kind {
		case msgQuit:
			s.record("quit", "")
			s.alive.Store(false)
			s.stopTimers()
			return
		case msgClose:
			if s.alive.Load() {
				s.h.OnCloseRequest()
			}
		case msgTimer:
			if s.current(m.timer) {
				s.mu.Lock()
				s.ticks++
				s.mu.Unlock()
				s.h.OnTimer(m.timer.id)
			}
		}
	}
}

func (s *Surface) next() message {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			m := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return m
		}
		s.mu.Unlock()
		<-s.wake
	}
}

// current reports whether t is still the armed timer for its id.
func (s *Surface) current(t *timer) bool {
	if !s.alive.Load() {
		return false
	}
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

// Ops returns the recorded operations in call order.
func (s *Surface) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Op, len(s.ops))
	copy(out, s.ops)
	return out
}

// Transparencies returns every opacity percentage applied, in order.
func (s *Surface) Transparencies() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.alphas))
	copy(out, s.alphas)
	return out
}

// TimersArmed counts successful SetTimer calls.
func (s *Surface) TimersArmed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timersArmed
}

// Ticks counts timer messages dispatched to the handler.
func (s *Surface) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Title returns the title the surface was created with.
func (s *Surface) Title() string { return s.title }

// Caption returns the current caption.
func (s *Surface) Caption() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caption
}

// ControlText returns the text of a control.
func (s *Surface) ControlText(id toolkit.Control) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts[id]
}

// ControlVisible reports whether a control is shown.
func (s *Surface) ControlVisible(id toolkit.Control) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[id]
}

// SystemButtons reports whether minimize/maximize/system-menu are enabled.
func (s *Surface) SystemButtons() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sysBtns
}

// Indeterminate reports whether the progress control is in marquee mode.
func (s *Surface) Indeterminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indeterminate
}

// Centered reports whether Center was called.
func (s *Surface) Centered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.centered
}

// Shown reports whether Show was called.
func (s *Surface) Shown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// Icon returns the applied icon id.
func (s *Surface) Icon() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.icon
}
