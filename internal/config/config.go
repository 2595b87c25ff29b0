// Package config provides application configuration management.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/oszuidwest/zwfm-dictate/internal/types"
	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultDevice              = "default"
	DefaultSampleRate          = 16000
	DefaultPeakVolumeThreshold = 90
	DefaultReferenceLevelDB    = -20.0
	DefaultOutputFormat        = "mp3 -ab 16k -ar 12000"
	DefaultVisualization       = "spectrum"
	DefaultLogLevel            = "info"
	DefaultLogMaxSizeMB        = 10
	DefaultLogMaxBackups       = 3
	DefaultRecordingsKeep      = 10
)

const appName = "dictate"

// validate is the shared validator instance for configuration validation.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// AudioConfig holds capture and visualization settings.
type AudioConfig struct {
	Device              string  `json:"device" validate:"required"`                       // "default", an index or an exact device name
	SampleRate          uint32  `json:"sample_rate" validate:"gte=8000,lte=192000"`       // Requested capture rate in Hz
	PeakVolumeThreshold uint8   `json:"peak_volume_threshold" validate:"lte=100"`         // Peak percentage that turns the footer red
	ReferenceLevelDB    float64 `json:"reference_level_db" validate:"gte=-60,lte=0"`      // dBFS shown as 100%
	OutputFormat        string  `json:"output_format" validate:"required"`                // "<codec> [ffmpeg options]"
	Visualization       string  `json:"visualization" validate:"oneof=spectrum waveform"` // Display mode while recording
}

// SystemConfig holds system-level settings.
type SystemConfig struct {
	FFmpegPath string `json:"ffmpeg_path"` // Path to FFmpeg binary (empty = search)
}

// LogConfig holds application log settings.
type LogConfig struct {
	Level      string `json:"level" validate:"oneof=debug info warn error"` // Minimum level written
	Path       string `json:"path"`                                         // Log file (empty = state directory)
	MaxSizeMB  int    `json:"max_size_mb" validate:"gte=1"`                 // Rotate after this size
	MaxBackups int    `json:"max_backups" validate:"gte=0"`                 // Rotated files kept
}

// RecordingsConfig holds where finished recordings are kept.
type RecordingsConfig struct {
	Dir  string `json:"dir"`                            // Output directory (empty = data directory)
	Keep int    `json:"keep" validate:"gte=1,lte=1000"` // Newest recordings retained
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	Audio      AudioConfig         `json:"audio"`
	System     SystemConfig        `json:"system"`
	Log        LogConfig           `json:"log"`
	Recordings RecordingsConfig    `json:"recordings"`
	Archive    types.ArchiveConfig `json:"archive"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		Audio: AudioConfig{
			Device:              DefaultDevice,
			SampleRate:          DefaultSampleRate,
			PeakVolumeThreshold: DefaultPeakVolumeThreshold,
			ReferenceLevelDB:    DefaultReferenceLevelDB,
			OutputFormat:        DefaultOutputFormat,
			Visualization:       DefaultVisualization,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
		Recordings: RecordingsConfig{
			Keep: DefaultRecordingsKeep,
		},
		filePath: filePath,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", util.WrapError("locate config directory", err)
	}
	return filepath.Join(dir, appName, "config.json"), nil
}

// Path returns the file the configuration is read from.
func (c *Config) Path() string {
	return c.filePath
}

// Load reads config from file, creating a default if none exists.
// Keys missing from the file keep their defaults.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()

	return c.validate()
}

// Save writes the configuration to its file.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// validate checks all configuration fields for correctness.
func (c *Config) validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return util.WrapError("validate config", err)
	}

	verr := &types.ValidationError{}
	for _, e := range validationErrors {
		verr.Add(fieldPath(e), formatValidationMessage(e), e.Value())
	}
	return verr
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}
	return ns
}

// formatValidationMessage creates a human-readable message from a validator error.
func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// applyDefaults fills settings that an explicit empty value would break.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Audio.Device) == "" {
		c.Audio.Device = DefaultDevice
	}
	if strings.TrimSpace(c.Audio.OutputFormat) == "" {
		c.Audio.OutputFormat = DefaultOutputFormat
	}
	if c.Audio.Visualization == "" {
		c.Audio.Visualization = DefaultVisualization
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// --- Snapshot for atomic reads ---

// Snapshot is a point-in-time copy of configuration values with derived
// paths resolved.
type Snapshot struct {
	// Audio
	Device              string
	SampleRate          uint32
	PeakVolumeThreshold uint8
	ReferenceLevelDB    float64
	OutputFormat        string
	Visualization       string

	// System
	FFmpegPath string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int

	// Recordings
	RecordingsDir  string
	RecordingsKeep int
	EventLogPath   string

	// Archive
	Archive types.ArchiveConfig
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stateDir := StateDir()
	return Snapshot{
		Device:              c.Audio.Device,
		SampleRate:          c.Audio.SampleRate,
		PeakVolumeThreshold: c.Audio.PeakVolumeThreshold,
		ReferenceLevelDB:    c.Audio.ReferenceLevelDB,
		OutputFormat:        c.Audio.OutputFormat,
		Visualization:       c.Audio.Visualization,

		FFmpegPath: c.System.FFmpegPath,

		LogLevel:      c.Log.Level,
		LogPath:       orDefault(c.Log.Path, filepath.Join(stateDir, appName+".log")),
		LogMaxSizeMB:  c.Log.MaxSizeMB,
		LogMaxBackups: c.Log.MaxBackups,

		RecordingsDir:  orDefault(c.Recordings.Dir, filepath.Join(DataDir(), "recordings")),
		RecordingsKeep: c.Recordings.Keep,
		EventLogPath:   filepath.Join(stateDir, "sessions.jsonl"),

		Archive: c.Archive,
	}
}

// HasArchive reports whether finished recordings are uploaded.
func (s *Snapshot) HasArchive() bool {
	return s.Archive.IsConfigured()
}

// StateDir returns $XDG_STATE_HOME/dictate, or ~/.local/state/dictate.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// DataDir returns $XDG_DATA_HOME/dictate, or ~/.local/share/dictate.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, fallback, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
