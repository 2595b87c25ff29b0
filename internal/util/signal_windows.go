//go:build windows

package util

import "os"

// ShutdownSignals returns the signals that cancel the running command.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// NotifyTrigger does nothing on Windows, which has no user signal.
func NotifyTrigger(chan<- os.Signal) (stop func()) {
	return func() {}
}

// InterruptProcess kills p. A console interrupt cannot target one child.
func InterruptProcess(p *os.Process) error {
	return p.Kill()
}
