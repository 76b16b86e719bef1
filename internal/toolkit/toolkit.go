// Package toolkit defines the windowing collaborator a splash surface is drawn with.
//
// A Surface has goroutine affinity: it is created, mutated and destroyed on the
// goroutine that called CreateSurface, and its handlers run on that goroutine
// from inside RunMessageLoop. Only SetTimer, KillTimer, PostClose and Alive may
// be called from other goroutines; they behave like messages posted to the
// surface's own queue.
package toolkit

import (
	"errors"
	"fmt"
	"time"
)

// Control identifies a child control of a surface.
type Control int

const (
	ControlImage Control = iota
	ControlStatusText
	ControlProgress
)

func (c Control) String() string {
	switch c {
	case ControlImage:
		return "image"
	case ControlStatusText:
		return "status-text"
	case ControlProgress:
		return "progress"
	default:
		return fmt.Sprintf("control(%d)", int(c))
	}
}

// IconApp is the application icon every toolkit is expected to know.
const IconApp = "app"

var (
	// ErrCreateFailed is returned by CreateSurface implementations that could not
	// bring up a surface.
	ErrCreateFailed = errors.New("toolkit: surface creation failed")
	// ErrUnknownIcon is returned by SetIcon for ids the toolkit has no image for.
	ErrUnknownIcon = errors.New("toolkit: unknown icon")
	// ErrDestroyed is returned by mutators called after Destroy.
	ErrDestroyed = errors.New("toolkit: surface destroyed")
)

// Handler receives the messages dispatched by a surface's message loop.
type Handler interface {
	OnTimer(id int)
	OnCloseRequest()
	OnDestroyed()
}

// Toolkit creates surfaces.
type Toolkit interface {
	CreateSurface(title string, h Handler) (Surface, error)
}

// Surface is a single native window.
type Surface interface {
	SetCaption(text string) error
	SetSystemButtons(enabled bool)
	ShowControl(id Control, visible bool)
	SetControlText(id Control, text string) error
	SetProgressIndeterminate() error
	// SetTransparency sets the opacity in percent, 0..100.
	SetTransparency(percent int) error
	Center() error
	SetIcon(id string) error
	// Show makes the surface visible.
	Show()

	// SetTimer arms a periodic timer delivering OnTimer(id) every interval.
	// It reports whether the timer was armed.
	SetTimer(id int, interval time.Duration) bool
	KillTimer(id int)
	// PostClose queues a close request. It reports false when the surface is gone.
	PostClose() bool
	Alive() bool

	// Destroy tears the surface down and dispatches OnDestroyed synchronously.
	Destroy()
	// RunMessageLoop blocks dispatching messages until PostQuit is processed.
	RunMessageLoop()
	PostQuit()
}

// AlphaValue converts an opacity percentage into the 0..255 range layered
// surfaces use.
func AlphaValue(percent int) uint8 {
	if percent < 0 || percent > 100 {
		panic(fmt.Sprintf("toolkit: alpha percent %d out of range", percent))
	}
	return uint8(percent * 255 / 100)
}
