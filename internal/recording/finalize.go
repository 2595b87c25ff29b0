package recording

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/oszuidwest/zwfm-dictate/internal/audio"
	"github.com/oszuidwest/zwfm-dictate/internal/eventlog"
	"github.com/oszuidwest/zwfm-dictate/internal/ffmpeg"
)

// ErrNoAudio is returned when a recording holds no samples.
var ErrNoAudio = errors.New("no audio recorded")

// Result describes a finalized recording.
type Result struct {
	// Path is the encoded recording.
	Path string
	// ArchiveKey is the object key when the recording was archived.
	ArchiveKey string
	// Pruned is how many old recordings were deleted.
	Pruned int
}

// WAVError is returned when encoding fails. The intermediate WAV is kept at
// Path so the audio is not lost.
type WAVError struct {
	Path string
	Err  error
}

func (e *WAVError) Error() string {
	return fmt.Sprintf("%v (audio kept at %s)", e.Err, e.Path)
}

func (e *WAVError) Unwrap() error {
	return e.Err
}

// Finalizer writes, encodes and files a finished capture.
type Finalizer struct {
	FFmpegPath string
	// Format is the "<codec> [options]" output format.
	Format string
	// SampleRate is the rate the intermediate WAV is written at.
	SampleRate uint32
	History    *History
	// Archive is optional.
	Archive *Archive
	// Journal is optional.
	Journal *eventlog.Logger
	// TempDir holds the intermediate WAV. Empty uses os.TempDir.
	TempDir string

	now func() time.Time
}

// Finalize encodes samples captured at rate into the recordings directory.
// The intermediate WAV is removed on success and kept on encoding failure.
// Retention and archive problems are logged, never returned.
func (f *Finalizer) Finalize(ctx context.Context, sessionID string, samples []int16, rate uint32) (*Result, error) {
	if len(samples) == 0 {
		return nil, ErrNoAudio
	}

	format, err := ffmpeg.ParseFormat(f.Format)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if f.now != nil {
		now = f.now
	}
	recordedAt := now()

	output, err := f.History.NextPath(format.Extension(), recordedAt)
	if err != nil {
		return nil, err
	}

	targetRate := rate
	if f.SampleRate != 0 && f.SampleRate != rate {
		slog.Info("resampling recording", "from", rate, "to", f.SampleRate)
		samples = audio.Resample(samples, rate, f.SampleRate)
		targetRate = f.SampleRate
	}

	tempDir := f.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	wavPath := filepath.Join(tempDir, "dictate-"+uuid.NewString()+".wav")
	if err := audio.WriteWAV(wavPath, samples, targetRate); err != nil {
		_ = os.Remove(wavPath) // Best effort cleanup
		return nil, err
	}

	start := time.Now()
	if err := ffmpeg.Encode(ctx, f.FFmpegPath, wavPath, output, f.Format); err != nil {
		slog.Error("encoding failed", "output", output, "wav", wavPath, "error", err)
		_ = f.Journal.LogOutput(eventlog.EncodeFailed, sessionID, &eventlog.OutputDetails{
			Path:  wavPath,
			Codec: format.Codec,
			Error: err.Error(),
		})
		_ = os.Remove(output) // FFmpeg may leave a partial file
		return nil, &WAVError{Path: wavPath, Err: err}
	}

	if err := os.Remove(wavPath); err != nil {
		slog.Warn("failed to remove intermediate wav", "path", wavPath, "error", err)
	}

	var size int64
	if info, err := os.Stat(output); err == nil {
		size = info.Size()
	}
	slog.Info("recording saved", "path", output, "bytes", size, "took", time.Since(start))
	_ = f.Journal.LogOutput(eventlog.EncodeCompleted, sessionID, &eventlog.OutputDetails{
		Path:      output,
		Codec:     format.Codec,
		SizeBytes: size,
	})

	result := &Result{Path: output}
	result.Pruned = f.prune(sessionID)
	result.ArchiveKey = f.archive(ctx, sessionID, output, recordedAt)
	return result, nil
}

func (f *Finalizer) prune(sessionID string) int {
	deleted, err := f.History.Prune()
	if err != nil {
		slog.Warn("failed to prune recordings", "error", err)
		return 0
	}
	if deleted > 0 {
		_ = f.Journal.LogOutput(eventlog.PruneCompleted, sessionID, &eventlog.OutputDetails{
			FilesDeleted: deleted,
		})
	}
	return deleted
}

func (f *Finalizer) archive(ctx context.Context, sessionID, output string, recordedAt time.Time) string {
	if f.Archive == nil {
		return ""
	}
	key, attempts, err := f.Archive.Upload(ctx, output, recordedAt)
	if err != nil {
		slog.Error("archive upload failed", "path", output, "error", err)
		_ = f.Journal.LogOutput(eventlog.ArchiveFailed, sessionID, &eventlog.OutputDetails{
			Path:     output,
			S3Key:    key,
			Error:    err.Error(),
			Attempts: attempts,
		})
		return ""
	}
	_ = f.Journal.LogOutput(eventlog.ArchiveCompleted, sessionID, &eventlog.OutputDetails{
		Path:     output,
		S3Key:    key,
		Attempts: attempts,
	})
	return key
}
