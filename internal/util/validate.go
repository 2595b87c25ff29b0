package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrPathNotWritable is matched by every error CheckPathWritable returns.
var ErrPathNotWritable = errors.New("path is not writable")

// PathCheckError reports which step of a writability check failed.
type PathCheckError struct {
	Path string
	Step string
	Err  error
}

func (e *PathCheckError) Error() string {
	return fmt.Sprintf("%s: %s (%s: %v)", e.Path, ErrPathNotWritable, e.Step, e.Err)
}

func (e *PathCheckError) Unwrap() []error {
	return []error{ErrPathNotWritable, e.Err}
}

// CheckPathWritable creates dir if needed and proves it accepts a small
// write. The test file is removed again.
func CheckPathWritable(dir string) error {
	fail := func(step string, err error) error {
		slog.Error("path writability check failed", "path", dir, "step", step, "error", err)
		return &PathCheckError{Path: dir, Step: step, Err: err}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail("mkdir", err)
	}

	f, err := os.CreateTemp(dir, ".dictate-write-test-*")
	if err != nil {
		return fail("create", err)
	}
	testFile := f.Name()

	_, writeErr := f.Write(make([]byte, 1024))
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(testFile)
		return fail("write", err)
	}

	// A test file left behind would show up in the recordings directory.
	if err := os.Remove(testFile); err != nil {
		return fail("remove", err)
	}
	return nil
}
