// Package progress carries installation progress from the installer to
// whatever is showing it.
package progress

import (
	"context"
	"time"
)

// Status indicates the state of an installation.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusAborted Status = "aborted"
)

// Settled reports whether no further events follow a status.
func (s Status) Settled() bool {
	switch s {
	case StatusDone, StatusError, StatusAborted:
		return true
	default:
		return false
	}
}

// Event is one progress report.
type Event struct {
	Message   string
	Status    Status
	Timestamp time.Time
	Metadata  map[string]string // optional: step, total, etc.
}

// Emitter receives progress events.
type Emitter interface {
	Emit(ev Event)
}

// ChanEmitter emits events to a channel.
type ChanEmitter struct {
	Ch chan<- Event
}

var _ Emitter = (*ChanEmitter)(nil)

// Emit sends the event to the channel. Running events are dropped when the
// channel is full so the installer never stalls on a slow reader; settled
// events always block until delivered.
func (e *ChanEmitter) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.Status.Settled() {
		e.Ch <- ev
		return
	}
	select {
	case e.Ch <- ev:
	default:
	}
}

// Dismisser is anything that can be told the wait is over.
type Dismisser interface {
	Dismiss()
}

// DismissOnSettled consumes events until one is settled, the channel closes
// or ctx is done, then dismisses d. It returns the last event seen; a closed
// channel or cancelled context yields an aborted event.
func DismissOnSettled(ctx context.Context, events <-chan Event, d Dismisser) Event {
	defer d.Dismiss()

	var last Event
	for {
		select {
		case <-ctx.Done():
			return Event{Message: ctx.Err().Error(), Status: StatusAborted, Timestamp: time.Now()}
		case ev, ok := <-events:
			if !ok {
				if last.Status.Settled() {
					return last
				}
				return Event{Message: "event stream closed", Status: StatusAborted, Timestamp: time.Now()}
			}
			last = ev
			if ev.Status.Settled() {
				return ev
			}
		}
	}
}
