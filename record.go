package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-dictate/internal/audio"
	"github.com/oszuidwest/zwfm-dictate/internal/audio/miniaudio"
	"github.com/oszuidwest/zwfm-dictate/internal/eventlog"
	"github.com/oszuidwest/zwfm-dictate/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-dictate/internal/recording"
	"github.com/oszuidwest/zwfm-dictate/internal/ui"
	"github.com/oszuidwest/zwfm-dictate/internal/util"
	"github.com/oszuidwest/zwfm-dictate/internal/visual"
)

// journaledSource records pause changes in the session journal.
type journaledSource struct {
	*audio.Capture
	journal   *eventlog.Logger
	sessionID string
}

func (s *journaledSource) TogglePause() bool {
	paused := s.Capture.TogglePause()
	event := eventlog.CaptureResumed
	if paused {
		event = eventlog.CapturePaused
	}
	if err := s.journal.LogCapture(event, s.sessionID, nil); err != nil {
		slog.Warn("failed to write journal", "error", err)
	}
	return paused
}

// runRecord records until the user transcribes or cancels, then saves the
// recording and prints its path.
func runRecord(ctx context.Context, configPath string) int {
	cfg, cfgErr := loadConfig(configPath)
	snap := cfg.Snapshot()
	logCloser := setupLogging(&snap)
	defer logCloser.Close() //nolint:errcheck // Best effort on exit

	term, err := ui.NewTerminal()
	if err != nil {
		slog.Error("failed to open terminal", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, "dictate:", err)
		return 1
	}
	defer term.Close()

	fail := func(title string, err error) int {
		slog.Error(title, "error", err)
		if showErr := ui.ShowError(ctx, term, title+":\n\n"+err.Error()); showErr != nil {
			slog.Warn("failed to show error screen", "error", showErr)
		}
		return 1
	}

	if cfgErr != nil {
		return fail("Configuration Error", cfgErr)
	}
	slog.Info("using config file", "path", cfg.Path())

	ffmpegPath := util.ResolveFFmpegPath(snap.FFmpegPath)
	if ffmpegPath == "" {
		return fail("FFmpeg Not Found", fmt.Errorf("install ffmpeg or set system.ffmpeg_path in %s", cfg.Path()))
	}
	slog.Info("FFmpeg found", "path", ffmpegPath)

	kind, err := visual.ParseKind(snap.Visualization)
	if err != nil {
		return fail("Configuration Error", err)
	}

	backend, err := miniaudio.New()
	if err != nil {
		return fail("Audio Error", err)
	}
	defer backend.Close() //nolint:errcheck // Best effort on exit

	journal, err := eventlog.NewLogger(snap.EventLogPath)
	if err != nil {
		slog.Warn("session journal disabled", "error", err)
	}
	defer journal.Close() //nolint:errcheck // Best effort on exit

	capture := audio.NewCapture(backend)
	if _, err := capture.Start(snap.SampleRate, snap.Device); err != nil {
		return fail("Recording Error", err)
	}
	session, _ := capture.Session()
	logCapture(journal, eventlog.CaptureStarted, &session, nil)

	trigger := make(chan os.Signal, 1)
	stopTrigger := util.NotifyTrigger(trigger)
	defer stopTrigger()

	loop := ui.NewLoop(term, &journaledSource{Capture: capture, journal: journal, sessionID: session.ID}, ui.LoopConfig{
		Visualization:    kind,
		ReferenceLevelDB: snap.ReferenceLevelDB,
		PeakThreshold:    snap.PeakVolumeThreshold,
		Trigger:          trigger,
	})
	cmd, loopErr := loop.Run(ctx)

	samples, stopErr := capture.Stop()
	if stopErr != nil {
		slog.Warn("failed to stop capture cleanly", "error", stopErr)
	}
	session, _ = capture.Session()
	logCapture(journal, eventlog.CaptureStopped, &session, samples)

	if loopErr != nil {
		term.Close()
		slog.Error("recording screen failed", "error", loopErr)
		_, _ = fmt.Fprintln(os.Stderr, "dictate:", loopErr)
		return 1
	}

	if cmd == ui.Cancel {
		slog.Info("recording cancelled",
			"samples", len(samples),
			"length", util.FormatDuration(session.Elapsed(time.Now())))
		logCapture(journal, eventlog.CaptureCancelled, &session, samples)
		return 0
	}

	finalizer := &recording.Finalizer{
		FFmpegPath: ffmpegPath,
		Format:     snap.OutputFormat,
		SampleRate: snap.SampleRate,
		History:    recording.NewHistory(snap.RecordingsDir, snap.RecordingsKeep),
		Journal:    journal,
	}
	if snap.HasArchive() {
		if finalizer.Archive, err = recording.NewArchive(&snap.Archive); err != nil {
			slog.Warn("archive disabled", "error", err)
		}
	}

	result, err := finalizer.Finalize(ctx, session.ID, samples, capture.SampleRate())
	if err != nil {
		var encErr *ffmpeg.EncodeError
		if errors.As(err, &encErr) {
			slog.Error("ffmpeg failed", "args", encErr.Args, "stderr", strings.Join(encErr.Diagnostics(), " | "))
		}
		return fail("Encoding Error", err)
	}

	term.Close()
	fmt.Println(result.Path)
	return 0
}

// logCapture journals a capture event with the session's stream settings.
func logCapture(journal *eventlog.Logger, event eventlog.EventType, session *audio.Session, samples []int16) {
	details := &eventlog.CaptureDetails{
		Device:        session.Device,
		RequestedRate: session.RequestedRate,
		SampleRate:    session.SampleRate,
		Channels:      session.Channels,
		Samples:       len(samples),
	}
	if samples != nil {
		details.DurationMs = session.Elapsed(time.Now()).Milliseconds()
	}
	if err := journal.LogCapture(event, session.ID, details); err != nil {
		slog.Warn("failed to write journal", "error", err)
	}
}
