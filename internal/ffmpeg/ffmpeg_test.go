package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("mp3 -ab 16k  -ar 12000")
	require.NoError(t, err)
	assert.Equal(t, "mp3", f.Codec)
	assert.Equal(t, []string{"-ab", "16k", "-ar", "12000"}, f.Options)

	f, err = ParseFormat("flac")
	require.NoError(t, err)
	assert.Empty(t, f.Options)

	_, err = ParseFormat("   ")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"libopus":    "ogg",
		"libvorbis":  "ogg",
		"flac":       "flac",
		"aac":        "m4a",
		"pcm_s16le":  "wav",
		"mp3":        "mp3",
		"libmp3lame": "libmp3lame",
	}
	for codec, want := range tests {
		assert.Equal(t, want, Extension(codec), codec)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "audio/mpeg", ContentType("mp3"))
	assert.Equal(t, "audio/ogg", ContentType(".OGG"))
	assert.Equal(t, "audio/mp4", ContentType("m4a"))
	assert.Equal(t, "application/octet-stream", ContentType("xyz"))
}

func TestBuildArgs(t *testing.T) {
	f := Format{Codec: "mp3", Options: []string{"-ab", "16k"}}
	assert.Equal(t,
		[]string{"-loglevel", "error", "-i", "in.wav", "-acodec", "mp3", "-ac", "1", "-y", "-ab", "16k", "out.mp3"},
		BuildArgs("in.wav", "out.mp3", f))
}

// fakeFFmpeg writes a shell script that stands in for ffmpeg.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestEncodeWritesOutput(t *testing.T) {
	// Copies the input to the last argument and records the arguments.
	bin := fakeFFmpeg(t, `for last; do :; done
echo "$@" > "$last.args"
cp "$4" "$last"`)

	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.mp3")
	require.NoError(t, os.WriteFile(in, []byte("RIFF"), 0o600))

	require.NoError(t, Encode(context.Background(), bin, in, out, "mp3 -ab 16k"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data))

	args, err := os.ReadFile(out + ".args")
	require.NoError(t, err)
	assert.Equal(t, "-loglevel error -i "+in+" -acodec mp3 -ac 1 -y -ab 16k "+out, strings.TrimSpace(string(args)))
}

func TestEncodeFailureKeepsStderr(t *testing.T) {
	bin := fakeFFmpeg(t, `echo "Unknown encoder 'nope'" >&2
exit 1`)

	err := Encode(context.Background(), bin, "in.wav", "out.nope", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncodingFailure)

	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Contains(t, encErr.Stderr, "Unknown encoder")
	assert.Equal(t, "encoding failed: Unknown encoder 'nope'", err.Error())
	assert.Equal(t, []string{"Unknown encoder 'nope'"}, encErr.Diagnostics())

	var exitErr interface{ ExitCode() int }
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())
}

func TestEncodeInvalidFormat(t *testing.T) {
	err := Encode(context.Background(), "ffmpeg", "in.wav", "out", "")
	assert.ErrorIs(t, err, ErrEncodingFailure)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestEncodeCancelled(t *testing.T) {
	bin := fakeFFmpeg(t, `exec sleep 10`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Encode(ctx, bin, "in.wav", "out.mp3", "mp3")
	assert.ErrorIs(t, err, ErrEncodingFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), waitDelay+2*time.Second)
}

func TestEncodeMissingBinary(t *testing.T) {
	err := Encode(context.Background(), filepath.Join(t.TempDir(), "missing"), "in.wav", "out.mp3", "mp3")
	assert.ErrorIs(t, err, ErrEncodingFailure)
}
