//go:build !windows

package util

import (
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals returns the signals that cancel the running command.
func ShutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// NotifyTrigger relays SIGUSR1 to ch so a window manager key binding can
// finish a recording. The returned function stops the relay.
func NotifyTrigger(ch chan<- os.Signal) (stop func()) {
	signal.Notify(ch, syscall.SIGUSR1)
	return func() { signal.Stop(ch) }
}

// InterruptProcess asks p to exit the way Ctrl+C would, letting FFmpeg
// finish the container it is writing.
func InterruptProcess(p *os.Process) error {
	return p.Signal(syscall.SIGINT)
}
