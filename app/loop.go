package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/loov/hrtime"
	"github.com/vkngwrapper/scenes/frame"
)

const pausedPoll = 100 * time.Millisecond

// FrameSource is the part of frame.Renderer the loop drives.
type FrameSource interface {
	Frame() error
	Recreate() error
	Pending() bool
	Engine() *frame.Engine
}

// Loop pumps window events and draws frames until the window closes, the
// context is cancelled or a frame fails.
type Loop struct {
	window      Window
	renderer    FrameSource
	logger      *slog.Logger
	clock       func() time.Duration
	fpsInterval time.Duration

	rendering bool
	// recreate is set by restore and resize events and consumed once before
	// the next frame, so a batch holding both recreates the chain once.
	recreate bool
	lastLog  time.Duration
	lastCount uint64
}

func NewLoop(window Window, renderer FrameSource, fpsInterval time.Duration, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		window:      window,
		renderer:    renderer,
		logger:      logger,
		clock:       hrtime.Now,
		fpsInterval: fpsInterval,
		rendering:   true,
	}
}

// Rendering reports whether the loop is currently drawing. It is false while
// the window is minimized or has zero area.
func (l *Loop) Rendering() bool {
	return l.rendering
}

// handle applies one event and reports whether the loop should stop.
func (l *Loop) handle(event Event) (bool, error) {
	switch event.Kind {
	case EventQuit:
		return true, nil
	case EventMinimized:
		l.logger.Debug("window minimized, pausing")
		l.rendering = false
	case EventRestored:
		if l.rendering {
			return false, nil
		}
		l.logger.Debug("window restored, resuming")
		l.rendering = true
		l.recreate = true
	case EventResized:
		if event.Width <= 0 || event.Height <= 0 {
			l.rendering = false
			return false, nil
		}
		l.logger.Debug("window resized", slog.Int("width", event.Width), slog.Int("height", event.Height))
		l.rendering = true
		l.recreate = true
	}
	return false, nil
}

func (l *Loop) logStats() {
	if l.fpsInterval <= 0 {
		return
	}

	now := l.clock()
	elapsed := now - l.lastLog
	if elapsed < l.fpsInterval {
		return
	}

	stats := l.renderer.Engine().Stats()
	frames := stats.Frames - l.lastCount
	l.logger.Info("frame statistics",
		slog.Float64("fps", float64(frames)/elapsed.Seconds()),
		slog.Duration("lastFrame", stats.LastFrame),
		slog.Uint64("frames", stats.Frames),
		slog.Int("recreations", stats.Recreations),
		slog.Uint64("staleFrames", stats.StaleFrames))

	l.lastLog = now
	l.lastCount = stats.Frames
}

func (l *Loop) Run(ctx context.Context) error {
	l.lastLog = l.clock()

	for {
		err := ctx.Err()
		if err != nil {
			return nil
		}

		wait := time.Duration(0)
		if !l.rendering {
			wait = pausedPoll
		}

		for _, event := range l.window.Poll(wait) {
			quit, err := l.handle(event)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}

		if !l.rendering {
			continue
		}

		if l.recreate {
			l.recreate = false
			err = l.renderer.Recreate()
			if err != nil {
				return err
			}
		}

		err = l.renderer.Frame()
		if err != nil {
			return err
		}
		l.logStats()
	}
}
