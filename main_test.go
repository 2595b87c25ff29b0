package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-dictate/internal/eventlog"
	"github.com/oszuidwest/zwfm-dictate/internal/types"
)

// writeConfig creates a config file that keeps state and recordings in t's
// temp directories.
func writeConfig(t *testing.T) (path, recordings string) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	dir := t.TempDir()
	recordings = filepath.Join(dir, "recordings")
	body, err := json.Marshal(map[string]any{
		"recordings": map[string]any{"dir": recordings, "keep": 5},
	})
	require.NoError(t, err)
	path = filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, body, 0o600))
	return path, recordings
}

func TestRunRecordingsListsNewestFirst(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{
		"dictate-recording-2025-01-01-10-00-00.mp3",
		"dictate-recording-2025-01-02-10-00-00.mp3",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	var out bytes.Buffer
	require.NoError(t, runRecordings(&out, cfgPath))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2025-01-02")
	assert.Contains(t, lines[1], "2025-01-01")
}

func TestRunRecordingsEmpty(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	var out bytes.Buffer
	require.NoError(t, runRecordings(&out, cfgPath))
	assert.Equal(t, "No recordings in "+dir+".\n", out.String())
}

func TestRunEvents(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	journalPath := filepath.Join(os.Getenv("XDG_STATE_HOME"), "dictate", "sessions.jsonl")
	journal, err := eventlog.NewLogger(journalPath)
	require.NoError(t, err)
	require.NoError(t, journal.LogCapture(eventlog.CaptureStarted, "0123456789", &eventlog.CaptureDetails{Device: "mic"}))
	require.NoError(t, journal.LogOutput(eventlog.EncodeCompleted, "0123456789", &eventlog.OutputDetails{Path: "/tmp/a.mp3"}))
	require.NoError(t, journal.Close())

	var out bytes.Buffer
	require.NoError(t, runEvents(&out, cfgPath, []string{"-n", "1"}))
	text := out.String()
	assert.Contains(t, text, "encode_completed")
	assert.Contains(t, text, "01234567 ")
	assert.Contains(t, text, `"path":"/tmp/a.mp3"`)
	assert.NotContains(t, text, "capture_started")
}

func TestRunEventsBadFlag(t *testing.T) {
	err := runEvents(&bytes.Buffer{}, "", []string{"-bogus"})
	assert.ErrorIs(t, err, errUsage)
}

func TestWriteEventsFormatsTimestamp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeEvents(&out, []eventlog.Event{{
		Timestamp: time.Date(2025, 2, 3, 4, 5, 0, 0, time.Local),
		Type:      eventlog.CaptureCancelled,
	}}))
	assert.Contains(t, out.String(), "3 Feb 2025 04:05")
	assert.Contains(t, out.String(), "capture_cancelled")
}

func TestRunVersion(t *testing.T) {
	withVersion(t, "1.2.3")
	var out bytes.Buffer
	require.NoError(t, runVersion(context.Background(), &out, nil))
	assert.True(t, strings.HasPrefix(out.String(), "dictate 1.2.3 (commit "), out.String())
}

func TestRunUnknownCommand(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-config", filepath.Join(t.TempDir(), "c.json"), "bogus"}))
}

// fakeProgram writes an executable shell script named name into dir. It
// records its arguments in name.args and then runs body.
func fakeProgram(t *testing.T, dir, name, body string) (path, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script executables")
	}
	path = filepath.Join(dir, name)
	argsFile = path + ".args"
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + argsFile + "'\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path, argsFile
}

func TestRunLogsPrintsTail(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	logPath := filepath.Join(os.Getenv("XDG_STATE_HOME"), "dictate", "dictate.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0o755))
	var body strings.Builder
	for i := 1; i <= 60; i++ {
		fmt.Fprintf(&body, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(logPath, []byte(body.String()), 0o600))

	var out bytes.Buffer
	require.NoError(t, runLogs(&out, cfgPath, []string{"-n", "3"}))
	assert.Equal(t, "Last 3 of 60 lines from "+logPath+":\n\nline 58\nline 59\nline 60\n", out.String())

	out.Reset()
	require.NoError(t, runLogs(&out, cfgPath, nil))
	assert.Contains(t, out.String(), "Last 50 of 60 lines")
	assert.NotContains(t, out.String(), "line 10\n")
	assert.Contains(t, out.String(), "line 11\n")
}

func TestRunLogsMissingFile(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	var out bytes.Buffer
	require.NoError(t, runLogs(&out, cfgPath, nil))
	assert.True(t, strings.HasPrefix(out.String(), "No log file yet at "), out.String())

	assert.ErrorIs(t, runLogs(&out, cfgPath, []string{"-n", "0"}), errUsage)
}

func TestRunReplayPlaysSelectedRecording(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	older := filepath.Join(dir, "dictate-recording-2025-01-01-10-00-00.mp3")
	newer := filepath.Join(dir, "dictate-recording-2025-01-02-10-00-00.mp3")
	for _, p := range []string{older, newer} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}

	bin := t.TempDir()
	player := players()[0]
	_, argsFile := fakeProgram(t, bin, player.name, "exit 0")
	t.Setenv("PATH", bin)

	var out bytes.Buffer
	require.NoError(t, runReplay(context.Background(), &out, cfgPath, []string{"2"}))
	assert.Contains(t, out.String(), "with "+player.name)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(append(player.args, older), "\n")+"\n", string(args))

	require.NoError(t, runReplay(context.Background(), &out, cfgPath, nil))
	args, err = os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(args), newer+"\n"), string(args))

	err = runReplay(context.Background(), &out, cfgPath, []string{"3"})
	assert.EqualError(t, err, "recording 3 out of range, available: 1-2")
	assert.ErrorIs(t, runReplay(context.Background(), &out, cfgPath, []string{"first"}), errUsage)
}

func TestRunReplayWithoutPlayer(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dictate-recording-2025-01-01-10-00-00.mp3"), []byte("x"), 0o600))
	t.Setenv("PATH", t.TempDir())

	err := runReplay(context.Background(), &bytes.Buffer{}, cfgPath, nil)
	assert.ErrorIs(t, err, errNoPlayer)
}

func TestRunReplayNoRecordings(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	err := runReplay(context.Background(), &bytes.Buffer{}, cfgPath, nil)
	assert.EqualError(t, err, "no recordings in "+dir)
}

func TestRunConfigOpensEditor(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	editorPath, argsFile := fakeProgram(t, t.TempDir(), "editor", "exit 0")
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", editorPath+" --wait")

	var out bytes.Buffer
	require.NoError(t, runConfig(context.Background(), &out, cfgPath))
	assert.Equal(t, "Configuration "+cfgPath+" is valid.\n", out.String())

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--wait\n"+cfgPath+"\n", string(args))
}

func TestRunConfigReportsInvalidEdit(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	editorPath, _ := fakeProgram(t, t.TempDir(), "editor",
		`printf '{"audio":{"sample_rate":1000}}' > "$1"`)
	t.Setenv("VISUAL", editorPath)

	err := runConfig(context.Background(), &bytes.Buffer{}, cfgPath)
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "audio.sample_rate", verr.Fields[0].Field)
}

func TestRunConfigEditorFails(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	editorPath, _ := fakeProgram(t, t.TempDir(), "editor", "exit 3")
	t.Setenv("VISUAL", editorPath)

	err := runConfig(context.Background(), &bytes.Buffer{}, cfgPath)
	var exitErr interface{ ExitCode() int }
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}
