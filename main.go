// Package main provides dictate, a terminal audio recorder that captures the
// microphone, shows a live level display and saves an encoded recording for
// transcription.
//
// Usage:
//
//	dictate [-config path/to/config.json] [command]
//
// Commands are record (the default), list-devices, recordings, replay,
// events, logs, config and version. If -config is not specified, the per-user config directory is used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/oszuidwest/zwfm-dictate/internal/config"
	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

// errUsage reports a bad command line; flag has already printed details.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code.
func run(args []string) int {
	flags := flag.NewFlagSet("dictate", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to config file (default: user config directory)")
	flags.Usage = func() {
		out := flags.Output()
		_, _ = fmt.Fprintln(out, "Usage: dictate [-config path] [record|list-devices|recordings|replay [N]|events|logs|config|version]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), util.ShutdownSignals()...)
	defer stop()

	command, rest := "record", []string(nil)
	if flags.NArg() > 0 {
		command, rest = flags.Arg(0), flags.Args()[1:]
	}

	var err error
	switch command {
	case "record":
		return runRecord(ctx, *configPath)
	case "list-devices":
		err = runListDevices(os.Stdout)
	case "recordings":
		err = runRecordings(os.Stdout, *configPath)
	case "replay":
		err = runReplay(ctx, os.Stdout, *configPath, rest)
	case "events":
		err = runEvents(os.Stdout, *configPath, rest)
	case "logs":
		err = runLogs(os.Stdout, *configPath, rest)
	case "config":
		err = runConfig(ctx, os.Stdout, *configPath)
	case "version":
		err = runVersion(ctx, os.Stdout, rest)
	default:
		flags.Usage()
		return 2
	}

	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "dictate:", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration from path or the default location.
// The returned Config holds defaults even when err is set.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.New(""), err
		}
		path = p
	}

	cfg := config.New(path)
	return cfg, cfg.Load()
}

// setupLogging sends slog output to the rotating log file from snap.
func setupLogging(snap *config.Snapshot) io.Closer {
	closer, err := util.ConfigureLogger(util.LogOptions{
		Level:      snap.LogLevel,
		Path:       snap.LogPath,
		MaxSizeMB:  snap.LogMaxSizeMB,
		MaxBackups: snap.LogMaxBackups,
	})
	if err != nil {
		// Logging to stderr would corrupt the recording screen.
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return io.NopCloser(nil)
	}
	return closer
}
