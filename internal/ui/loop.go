package ui

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/oszuidwest/zwfm-dictate/internal/audio"
	"github.com/oszuidwest/zwfm-dictate/internal/visual"
)

const (
	// DefaultPollInterval bounds how long one tick waits for input.
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultRefreshInterval is the analysis cadence, one waveform column each.
	DefaultRefreshInterval = 50 * time.Millisecond
	// waveformCeiling is the value that fills a waveform column.
	waveformCeiling = 80
	// spectrumCeiling is the value that fills a spectrum column.
	spectrumCeiling = 100
	// progressLogTicks is how often the recorded length is logged.
	progressLogTicks = 60
)

// Source is the capture state the loop reads and controls.
type Source interface {
	Tail(n int) []int16
	SampleRate() uint32
	SampleCount() int
	TogglePause() bool
	IsPaused() bool
	Elapsed() time.Duration
}

// LoopConfig controls what the loop shows and how often it refreshes.
type LoopConfig struct {
	Visualization    visual.Kind
	ReferenceLevelDB float64
	PeakThreshold    uint8
	// PollInterval is the input wait per tick. Zero uses DefaultPollInterval.
	PollInterval time.Duration
	// RefreshInterval is the minimum time between analysis refreshes,
	// however often input arrives. Zero uses DefaultRefreshInterval.
	RefreshInterval time.Duration
	// Trigger forces Transcribe when it delivers a value.
	Trigger <-chan os.Signal
}

// Loop is the single-threaded driver that samples the capture, updates the
// meters and visualizations, renders and polls input once per tick.
type Loop struct {
	term   *Terminal
	source Source
	cfg    LoopConfig

	meter    *audio.VolumeMeter
	spectrum *visual.SpectrumAnalyzer
	waveform *visual.WaveformTrace

	now         func() time.Time
	lastRefresh time.Time

	width  int
	paused bool
	ticks  uint64
}

// NewLoop creates a loop sized to the terminal's current width.
func NewLoop(term *Terminal, source Source, cfg LoopConfig) *Loop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.Visualization == "" {
		cfg.Visualization = visual.KindSpectrum
	}

	width, _ := term.Size()
	return &Loop{
		term:     term,
		source:   source,
		cfg:      cfg,
		meter:    audio.NewVolumeMeter(),
		spectrum: visual.NewSpectrumAnalyzer(width),
		waveform: visual.NewWaveformTrace(width),
		now:      time.Now,
		width:    width,
		paused:   source.IsPaused(),
	}
}

// Run ticks until the user transcribes or cancels, the trigger fires or ctx
// is done. A cancelled context counts as Cancel.
func (l *Loop) Run(ctx context.Context) (Command, error) {
	l.render()
	for {
		cmd, err := l.step(ctx)
		if err != nil {
			return Cancel, err
		}
		if cmd == Transcribe || cmd == Cancel {
			return cmd, nil
		}
	}
}

// step runs one tick.
func (l *Loop) step(ctx context.Context) (Command, error) {
	select {
	case sig := <-l.cfg.Trigger:
		slog.Info("external trigger received, finishing recording", "signal", sig)
		return Transcribe, nil
	default:
	}
	if ctx.Err() != nil {
		slog.Info("recording interrupted", "reason", context.Cause(ctx))
		return Cancel, nil
	}

	l.syncSize()

	cmd, err := l.pollInput()
	if err != nil {
		return Cancel, err
	}

	switch cmd {
	case Transcribe, Cancel:
		slog.Debug("recording key pressed", "command", cmd)
		return cmd, nil
	case TogglePause:
		l.paused = l.source.TogglePause()
		slog.Debug("recording pause toggled", "paused", l.paused)
		l.lastRefresh = l.now()
		l.refresh()
	case Continue:
		l.ticks++
		if now := l.now(); now.Sub(l.lastRefresh) >= l.cfg.RefreshInterval {
			l.lastRefresh = now
			l.refresh()
		}
		if l.ticks%progressLogTicks == 0 {
			if rate := l.source.SampleRate(); rate > 0 {
				slog.Debug("recording progress",
					"seconds", float64(l.source.SampleCount())/float64(rate))
			}
		}
	}

	l.render()
	return cmd, nil
}

// pollInput waits one poll interval for a key.
func (l *Loop) pollInput() (Command, error) {
	ev, err := l.term.PollEvent(l.cfg.PollInterval)
	if err != nil {
		return Continue, err
	}
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return KeyCommand(ev), nil
	case *tcell.EventResize:
		l.term.Screen().Sync()
		l.syncSize()
	}
	return Continue, nil
}

// analysisWindow is how many recent samples a refresh reads.
func (l *Loop) analysisWindow(rate uint32) int {
	return max(visual.FFTSize, int(rate/20))
}

// syncSize resizes every display buffer when the terminal width changed.
func (l *Loop) syncSize() {
	width, _ := l.term.Size()
	if width == l.width {
		return
	}
	rate := l.source.SampleRate()
	samples := l.source.Tail(l.analysisWindow(rate))
	l.spectrum.Resize(width, samples, rate, l.cfg.ReferenceLevelDB)
	l.waveform.Resize(width)
	slog.Debug("terminal resized", "from", l.width, "to", width)
	l.width = width
}

// refresh feeds the newest samples to the meter and the visualization.
// The visualization is frozen while paused.
func (l *Loop) refresh() {
	rate := l.source.SampleRate()
	samples := l.source.Tail(l.analysisWindow(rate))
	volume := l.meter.Update(samples, rate, l.cfg.ReferenceLevelDB)
	if l.paused {
		return
	}
	switch l.cfg.Visualization {
	case visual.KindWaveform:
		l.waveform.Push(volume, l.width)
	default:
		l.spectrum.Update(samples, rate, l.cfg.ReferenceLevelDB)
	}
}

func (l *Loop) render() {
	v := view{
		elapsed:       l.source.Elapsed(),
		volume:        l.meter.Level(),
		peak:          l.meter.Peak(),
		paused:        l.paused,
		peakThreshold: l.cfg.PeakThreshold,
	}
	switch l.cfg.Visualization {
	case visual.KindWaveform:
		v.data, v.ceiling = l.waveform.Values(), waveformCeiling
	default:
		v.data, v.ceiling = l.spectrum.Data(), spectrumCeiling
	}

	screen := l.term.Screen()
	drawRecording(screen, v)
	screen.Show()
}
