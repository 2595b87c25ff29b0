package util

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ffmpegCandidates lists install locations checked when ffmpeg is not on
// PATH, which happens for programs started from a desktop launcher.
func ffmpegCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{`C:\ffmpeg\bin\ffmpeg.exe`}
	}
	return []string{
		"/opt/homebrew/bin/ffmpeg",
		"/usr/local/bin/ffmpeg",
		"/usr/bin/ffmpeg",
		"/snap/bin/ffmpeg",
	}
}

// ResolveFFmpegPath returns the path to the FFmpeg binary.
// If customPath is set, it validates the path exists and is executable.
// Otherwise, it searches the system PATH and then well-known install
// locations. Returns an empty string if FFmpeg is not found.
func ResolveFFmpegPath(customPath string) string {
	if customPath != "" {
		if _, err := exec.LookPath(customPath); err == nil {
			return customPath
		}
		return ""
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path
	}
	for _, candidate := range ffmpegCandidates() {
		if isExecutable(candidate) {
			return filepath.Clean(candidate)
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
