// Package recording turns captured samples into kept recordings: encoding,
// retention and optional archiving.
package recording

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

// FilePrefix starts the name of every recording History manages.
const FilePrefix = "dictate-recording-"

// Entry is one kept recording.
type Entry struct {
	Path       string
	Name       string
	SizeBytes  int64
	RecordedAt time.Time
}

// History manages the recordings directory and its retention.
type History struct {
	dir  string
	keep int
}

// NewHistory returns a History keeping the newest keep recordings in dir.
func NewHistory(dir string, keep int) *History {
	return &History{dir: dir, keep: max(keep, 1)}
}

// Dir returns the recordings directory.
func (h *History) Dir() string {
	return h.dir
}

// NextPath returns an unused path for a recording made at now with the
// given extension, creating the directory when needed.
func (h *History) NextPath(ext string, now time.Time) (string, error) {
	if err := util.CheckPathWritable(h.dir); err != nil {
		return "", util.WrapError("prepare recordings directory", err)
	}

	base := FilePrefix + now.Format(util.FilenameTimestampLayout)
	path := filepath.Join(h.dir, base+"."+ext)
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(h.dir, fmt.Sprintf("%s-%d.%s", base, n, ext))
	}
	return path, nil
}

// List returns the kept recordings, newest first.
func (h *History) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, util.WrapError("read recordings directory", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, FilePrefix) {
			continue
		}
		recordedAt, ok := util.ExtractTimeFromFilename(name)
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Path:       filepath.Join(h.dir, name),
			Name:       name,
			SizeBytes:  info.Size(),
			RecordedAt: recordedAt,
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := b.RecordedAt.Compare(a.RecordedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Name, a.Name)
	})
	return entries, nil
}

// Prune deletes all but the newest recordings and returns how many files
// were removed.
func (h *History) Prune() (int, error) {
	entries, err := h.List()
	if err != nil {
		return 0, err
	}
	if len(entries) <= h.keep {
		return 0, nil
	}

	var deleted int
	for _, e := range entries[h.keep:] {
		if err := os.Remove(e.Path); err != nil {
			slog.Warn("failed to delete old recording", "path", e.Path, "error", err)
			continue
		}
		deleted++
		slog.Debug("deleted old recording", "file", e.Name)
	}

	if deleted > 0 {
		slog.Info("pruned recordings", "count", deleted, "keep", h.keep)
	}
	return deleted, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
