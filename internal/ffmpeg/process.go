package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

// ErrEncodingFailure is matched by every error Encode returns.
var ErrEncodingFailure = errors.New("encoding failed")

const (
	// waitDelay bounds how long a cancelled FFmpeg may take to exit.
	waitDelay = 5 * time.Second
	// diagnosticLines is how much stderr Diagnostics keeps.
	diagnosticLines = 5
)

// EncodeError reports a failed FFmpeg run with its diagnostics.
type EncodeError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *EncodeError) Error() string {
	msg := util.ExtractLastError(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEncodingFailure, msg)
}

// Diagnostics returns the last lines FFmpeg wrote to stderr.
func (e *EncodeError) Diagnostics() []string {
	return util.TailLines(e.Stderr, diagnosticLines)
}

func (e *EncodeError) Unwrap() []error {
	return []error{ErrEncodingFailure, e.Err}
}

// Encode converts the WAV file at input to output using format, a
// "<codec> [options]" string. Cancelling ctx interrupts FFmpeg.
func Encode(ctx context.Context, ffmpegPath, input, output, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return &EncodeError{Err: err}
	}
	args := BuildArgs(input, output, f)

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	cmd.Cancel = func() error {
		return util.InterruptProcess(cmd.Process)
	}
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("running ffmpeg", "path", ffmpegPath, "args", args)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if cause := context.Cause(ctx); cause != nil {
			err = errors.Join(err, cause)
		}
		return &EncodeError{Args: args, Stderr: stderr.String(), Err: err}
	}

	slog.Debug("ffmpeg finished", "output", output, "duration", time.Since(start))
	return nil
}
