package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

const (
	githubRepo          = "oszuidwest/zwfm-dictate"
	releasesURL         = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	versionCheckTimeout = 30000 * time.Millisecond // HTTP request timeout
	versionMaxRetries   = 3                        // Attempts before giving up
	versionRetryDelay   = 2 * time.Second          // Initial delay between attempts
)

// errRetryable marks a failed check worth repeating.
var errRetryable = errors.New("temporary failure")

// VersionInfo describes the running build and the newest release.
type VersionInfo struct {
	Current     string
	Latest      string
	UpdateAvail bool
}

// githubRelease represents a release with version and status information.
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// CheckLatest queries the latest published release, retrying temporary
// failures.
func CheckLatest(ctx context.Context, url string) (VersionInfo, error) {
	info := VersionInfo{Current: normalizeVersion(Version)}
	backoff := util.NewBackoff(versionRetryDelay, 4*versionRetryDelay)
	retryable := func(err error) bool { return errors.Is(err, errRetryable) }

	_, err := backoff.Retry(ctx, versionMaxRetries, retryable, func(attempt int) error {
		latest, err := fetchLatest(ctx, url)
		if err != nil {
			slog.Debug("version check failed", "attempt", attempt, "error", err)
			return err
		}
		info.Latest = latest
		return nil
	})
	if err != nil {
		return info, util.WrapError("check latest release", err)
	}

	if info.Latest != "" && info.Current != "dev" && info.Current != "unknown" {
		info.UpdateAvail = isNewerVersion(info.Latest, info.Current)
	}
	return info, nil
}

// fetchLatest returns the latest release version, or "" if none is published.
func fetchLatest(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, versionCheckTimeout, errors.New("github API request timeout"))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", err
	}

	// Set required GitHub API headers.
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "zwfm-dictate/"+Version)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Join(errRetryable, err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // Best-effort cleanup; error doesn't affect caller
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		// No releases exist yet - not an error
		return "", nil
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	default:
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", util.WrapError("decode release", err)
	}
	if release.Draft || release.Prerelease || release.TagName == "" {
		return "", nil
	}
	return normalizeVersion(release.TagName), nil
}

// normalizeVersion returns a normalized version string.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// canonicalVersion returns the version in canonical semver format.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// isNewerVersion reports whether latest is newer than current.
func isNewerVersion(latest, current string) bool {
	// semver.Compare returns 1 if latest > current
	return semver.Compare(canonicalVersion(latest), canonicalVersion(current)) > 0
}
