package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/oszuidwest/zwfm-dictate/internal/config"
	"github.com/oszuidwest/zwfm-dictate/internal/recording"
	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

const (
	// defaultLogLines is how many log lines the logs command prints.
	defaultLogLines = 50
	// maxLogLineBytes bounds one log line when tailing the log file.
	maxLogLineBytes = 1 << 20
)

var (
	errNoPlayer = errors.New("no audio player found; install mpv, vlc, ffplay or paplay")
	errNoEditor = errors.New("no editor found; set $EDITOR")
)

// launcher is an external program that is handed one file.
type launcher struct {
	name string
	args []string
}

// players returns the audio players tried by replay, best first.
func players() []launcher {
	switch runtime.GOOS {
	case "darwin":
		return []launcher{{name: "afplay"}, {name: "open"}}
	case "windows":
		return []launcher{{name: "ffplay", args: []string{"-nodisp", "-autoexit"}}}
	default:
		return []launcher{
			{name: "mpv", args: []string{"--no-video"}},
			{name: "vlc", args: []string{"--play-and-exit"}},
			{name: "ffplay", args: []string{"-nodisp", "-autoexit"}},
			{name: "paplay"},
			{name: "xdg-open"},
		}
	}
}

// editor returns the editor from $VISUAL or $EDITOR, falling back to nano and vi.
func editor() (launcher, error) {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return launcher{name: fields[0], args: fields[1:]}, nil
		}
	}
	for _, name := range []string{"nano", "vi"} {
		if _, err := exec.LookPath(name); err == nil {
			return launcher{name: name}, nil
		}
	}
	return launcher{}, errNoEditor
}

// open runs the launcher on path with the terminal attached and waits for it.
func (l launcher) open(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, l.name, append(append([]string(nil), l.args...), path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", l.name, err)
	}
	return nil
}

// runLogs prints the newest lines of the application log.
func runLogs(out io.Writer, configPath string, args []string) error {
	flags := flag.NewFlagSet("logs", flag.ContinueOnError)
	count := flags.Int("n", defaultLogLines, "Number of lines to show")
	if err := flags.Parse(args); err != nil || *count < 1 {
		return errUsage
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	path := cfg.Snapshot().LogPath

	lines, total, err := tailFile(path, *count)
	if errors.Is(err, os.ErrNotExist) {
		_, err = fmt.Fprintf(out, "No log file yet at %s.\n", path)
		return err
	}
	if err != nil {
		return util.WrapError("read log file", err)
	}
	if total == 0 {
		_, err = fmt.Fprintf(out, "Log file %s is empty.\n", path)
		return err
	}

	_, _ = fmt.Fprintf(out, "Last %d of %d lines from %s:\n\n", len(lines), total, path)
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// tailFile returns the last n lines of path, oldest first, and the total
// number of lines in the file.
func tailFile(path string, n int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close() //nolint:errcheck // Read-only

	ring := make([]string, n)
	total := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLineBytes)
	for scanner.Scan() {
		ring[total%n] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}

	kept := min(total, n)
	lines := make([]string, 0, kept)
	for i := total - kept; i < total; i++ {
		lines = append(lines, ring[i%n])
	}
	return lines, total, nil
}

// runReplay plays a kept recording; 1 is the newest and the default.
func runReplay(ctx context.Context, out io.Writer, configPath string, args []string) error {
	flags := flag.NewFlagSet("replay", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil || flags.NArg() > 1 {
		return errUsage
	}
	index := 1
	if flags.NArg() == 1 {
		n, err := strconv.Atoi(flags.Arg(0))
		if err != nil {
			return errUsage
		}
		index = n
	}

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
		return fmt.Errorf("no recordings in %s", snap.RecordingsDir)
	}
	if index < 1 || index > len(entries) {
		return fmt.Errorf("recording %d out of range, available: 1-%d", index, len(entries))
	}
	entry := entries[index-1]

	for _, p := range players() {
		if _, err := exec.LookPath(p.name); err != nil {
			continue
		}
		_, _ = fmt.Fprintf(out, "Playing %s with %s\n", entry.Name, p.name)
		return p.open(ctx, entry.Path)
	}
	return errNoPlayer
}

// runConfig opens the config file in an editor, creating it with defaults
// first, and validates the result.
func runConfig(ctx context.Context, out io.Writer, configPath string) error {
	cfg, err := loadConfig(configPath)
	if cfg.Path() == "" {
		return err
	}
	if err != nil {
		_, _ = fmt.Fprintf(out, "Current configuration needs fixing: %v\n", err)
	}

	ed, err := editor()
	if err != nil {
		return err
	}
	if err := ed.open(ctx, cfg.Path()); err != nil {
		return util.WrapError("edit config", err)
	}

	if err := config.New(cfg.Path()).Load(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Configuration %s is valid.\n", cfg.Path())
	return err
}
