package util

import (
	"fmt"
	"regexp"
	"time"
)

// FilenameTimestampLayout is the local time stamp embedded in recording names.
const FilenameTimestampLayout = "2006-01-02-15-04-05"

// filenameTimestamp finds the stamp before an optional "-N" collision
// suffix and the extension.
var filenameTimestamp = regexp.MustCompile(`(\d{4}(?:-\d{2}){5})(?:-\d+)?(?:\.[^.]*)?$`)

// ExtractTimeFromFilename returns the local time stamped into filename.
func ExtractTimeFromFilename(filename string) (time.Time, bool) {
	m := filenameTimestamp.FindStringSubmatch(filename)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(FilenameTimestampLayout, m[1], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatHumanTime renders t in local time, for example "4 Mar 2025 05:06 CET".
func FormatHumanTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2 Jan 2006 15:04 MST")
}

// FormatBuildTime renders an RFC 3339 build stamp with FormatHumanTime.
// Stamps that do not parse are returned unchanged.
func FormatBuildTime(stamp string) string {
	switch stamp {
	case "", "unknown":
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return FormatHumanTime(t)
}

// FormatDuration renders d at its two most significant units: "45s",
// "2m 34s" or "1h 23m".
func FormatDuration(d time.Duration) string {
	d = max(d.Truncate(time.Second), 0)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
