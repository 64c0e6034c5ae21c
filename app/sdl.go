package app

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// SDLWindow is a resizable Vulkan-capable SDL window. SDL must be driven from
// the thread that created it.
type SDLWindow struct {
	window *sdl.Window
}

func NewSDLWindow(cfg Config) (*SDLWindow, error) {
	err := sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return nil, errors.Wrap(err, "init sdl video")
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width), int32(cfg.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &SDLWindow{window: window}, nil
}

// Handle is the SDL window the Vulkan surface is created on.
func (w *SDLWindow) Handle() *sdl.Window {
	return w.window
}

func (w *SDLWindow) Size() (int, int) {
	width, height := w.window.GetSize()
	return int(width), int(height)
}

func (w *SDLWindow) translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Kind: EventQuit}, true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_MINIMIZED:
			return Event{Kind: EventMinimized}, true
		case sdl.WINDOWEVENT_RESTORED:
			return Event{Kind: EventRestored}, true
		// Every RESIZED is accompanied by SIZE_CHANGED.
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			width, height := w.Size()
			return Event{Kind: EventResized, Width: width, Height: height}, true
		}
	}
	return Event{}, false
}

func (w *SDLWindow) Poll(wait time.Duration) []Event {
	var events []Event

	if wait > 0 {
		event := sdl.WaitEventTimeout(int(wait.Milliseconds()))
		if event != nil {
			if translated, ok := w.translate(event); ok {
				events = append(events, translated)
			}
		}
	}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if translated, ok := w.translate(event); ok {
			events = append(events, translated)
		}
	}
	return events
}

func (w *SDLWindow) Destroy() {
	if w.window != nil {
		_ = w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
