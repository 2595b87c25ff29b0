// Package ffmpeg converts finished recordings with an external FFmpeg binary.
package ffmpeg

import (
	"errors"
	"strings"
)

// ErrInvalidFormat is returned for an output format without a codec.
var ErrInvalidFormat = errors.New("output format has no codec")

// Format is a parsed "<codec> [ffmpeg options]" output format.
type Format struct {
	Codec   string
	Options []string
}

// ParseFormat splits an output format string on whitespace. The first word
// is the codec, the rest are passed to FFmpeg unchanged.
func ParseFormat(format string) (Format, error) {
	fields := strings.Fields(format)
	if len(fields) == 0 {
		return Format{}, ErrInvalidFormat
	}
	return Format{Codec: fields[0], Options: fields[1:]}, nil
}

// Extension returns the file extension for the codec's usual container.
func (f Format) Extension() string {
	return Extension(f.Codec)
}

// Extension returns the file extension for codec, without a dot.
func Extension(codec string) string {
	switch codec {
	case "libopus", "libvorbis":
		return "ogg"
	case "flac":
		return "flac"
	case "aac":
		return "m4a"
	case "pcm_s16le":
		return "wav"
	default:
		return codec
	}
}

// ContentType returns the MIME type for a recording extension.
func ContentType(ext string) string {
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "mp3", "mp2":
		return "audio/mpeg"
	case "ogg", "opus":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	case "m4a":
		return "audio/mp4"
	case "wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// BuildArgs returns the FFmpeg arguments that convert input to output as
// mono audio, overwriting output.
func BuildArgs(input, output string, f Format) []string {
	args := make([]string, 0, 10+len(f.Options))
	args = append(args,
		"-loglevel", "error",
		"-i", input,
		"-acodec", f.Codec,
		"-ac", "1",
		"-y",
	)
	args = append(args, f.Options...)
	return append(args, output)
}
