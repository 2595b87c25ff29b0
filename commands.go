package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/oszuidwest/zwfm-dictate/internal/audio/miniaudio"
	"github.com/oszuidwest/zwfm-dictate/internal/eventlog"
	"github.com/oszuidwest/zwfm-dictate/internal/recording"
	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

// defaultEventCount is how many journal entries the events command prints.
const defaultEventCount = 20

// runListDevices prints every capture device with its index.
func runListDevices(out io.Writer) error {
	backend, err := miniaudio.New()
	if err != nil {
		return err
	}
	defer backend.Close() //nolint:errcheck // Read-only use

	devices, err := backend.Devices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		_, err = fmt.Fprintln(out, "No input devices found.")
		return err
	}

	for _, d := range devices {
		marker := ""
		if d.IsDefault {
			marker = " [DEFAULT]"
		}
		if _, err := fmt.Fprintf(out, "%d: %s%s\n", d.Index, d.Name, marker); err != nil {
			return err
		}
	}
	return nil
}

// runRecordings prints the kept recordings, newest first.
func runRecordings(out io.Writer, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	snap := cfg.Snapshot()

	entries, err := recording.NewHistory(snap.RecordingsDir, snap.RecordingsKeep).List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err = fmt.Fprintf(out, "No recordings in %s.\n", snap.RecordingsDir)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%d KB\t%s\n", util.FormatHumanTime(e.RecordedAt), (e.SizeBytes+1023)/1024, e.Path)
	}
	return w.Flush()
}

// runEvents prints the newest session journal entries.
func runEvents(out io.Writer, configPath string, args []string) error {
	flags := flag.NewFlagSet("events", flag.ContinueOnError)
	count := flags.Int("n", defaultEventCount, "Number of events to show")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	snap := cfg.Snapshot()

	events, err := eventlog.ReadLast(snap.EventLogPath, *count)
	if err != nil {
		return util.WrapError("read session journal", err)
	}
	return writeEvents(out, events)
}

// writeEvents prints one event per line, newest first.
func writeEvents(out io.Writer, events []eventlog.Event) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range events {
		session := e.SessionID
		if len(session) > 8 {
			session = session[:8]
		}
		details := ""
		if e.Details != nil {
			if b, err := json.Marshal(e.Details); err == nil {
				details = string(b)
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", util.FormatHumanTime(e.Timestamp), e.Type, session, details)
	}
	return w.Flush()
}

// runVersion prints build information and optionally checks for a newer release.
func runVersion(ctx context.Context, out io.Writer, args []string) error {
	flags := flag.NewFlagSet("version", flag.ContinueOnError)
	check := flags.Bool("check", false, "Check GitHub for a newer release")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	_, _ = fmt.Fprintf(out, "dictate %s (commit %s, built %s)\n", Version, Commit, util.FormatBuildTime(BuildTime))
	if !*check {
		return nil
	}

	info, err := CheckLatest(ctx, releasesURL)
	if err != nil {
		return err
	}
	switch {
	case info.Latest == "":
		_, err = fmt.Fprintln(out, "No published release found.")
	case info.UpdateAvail:
		_, err = fmt.Fprintf(out, "A newer version is available: %s\n", info.Latest)
	default:
		_, err = fmt.Fprintf(out, "Latest release: %s\n", info.Latest)
	}
	return err
}
