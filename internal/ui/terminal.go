// Package ui drives the full-screen recording display and keyboard input.
package ui

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// ErrRender is returned when the terminal cannot be initialized, drawn to or read from.
var ErrRender = errors.New("terminal rendering failed")

// eventBuffer is how many pending terminal events are queued before the reader blocks.
const eventBuffer = 32

// Terminal owns a full-screen tcell surface and its event stream.
// Close must be called on every exit path to restore the shell.
type Terminal struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}

	closeOnce sync.Once
}

// NewTerminal enters the alternate screen on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return OpenTerminal(screen)
}

// OpenTerminal initializes screen and starts forwarding its events.
func OpenTerminal(screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	screen.HideCursor()
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	t := &Terminal{
		screen: screen,
		events: make(chan tcell.Event, eventBuffer),
		quit:   make(chan struct{}),
	}
	go screen.ChannelEvents(t.events, t.quit)
	return t, nil
}

// Close leaves the alternate screen and restores the terminal mode.
// It is safe to call more than once.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		close(t.quit)
		t.screen.Fini()
	})
}

// Screen returns the underlying tcell screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Size returns the current viewport size in cells.
func (t *Terminal) Size() (width, height int) {
	return t.screen.Size()
}

// PollEvent waits up to timeout for the next event. It returns a nil event
// when the timeout passes without input.
func (t *Terminal) PollEvent(timeout time.Duration) (tcell.Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-t.events:
		if !ok {
			return nil, fmt.Errorf("%w: event stream closed", ErrRender)
		}
		if errEv, isErr := ev.(*tcell.EventError); isErr {
			return nil, fmt.Errorf("%w: %s", ErrRender, errEv.Error())
		}
		return ev, nil
	case <-timer.C:
		return nil, nil
	}
}
