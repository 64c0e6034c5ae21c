package app

import "time"

type EventKind int

const (
	EventQuit EventKind = iota
	EventMinimized
	EventRestored
	// EventResized carries the new size in pixels.
	EventResized
)

func (k EventKind) String() string {
	switch k {
	case EventQuit:
		return "quit"
	case EventMinimized:
		return "minimized"
	case EventRestored:
		return "restored"
	case EventResized:
		return "resized"
	}
	return "unknown"
}

type Event struct {
	Kind          EventKind
	Width, Height int
}

// Window is the event source the loop reacts to.
type Window interface {
	// Poll drains pending events. With wait > 0 it blocks up to wait for the
	// first one.
	Poll(wait time.Duration) []Event
	Size() (int, int)
}
