// Package updater checks GitHub Releases for a newer lineargate build
// and can replace the running binary in place. Checks are best-effort:
// a network failure during "serve" must never affect the MCP transport,
// so Check swallows errors and reports "no update".
package updater

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const repo = "lineargate/lineargate"

// Overridable for tests.
var (
	releaseEndpoint = "https://api.github.com/repos/" + repo + "/releases/latest"
	httpClient      = &http.Client{Timeout: 10 * time.Second}
)

// Release is the subset of the GitHub release payload the updater needs.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Version returns the release version without the leading "v".
func (r *Release) Version() string { return strings.TrimPrefix(r.TagName, "v") }

// Check queries the latest release and reports whether it is newer than
// the running version. A nil Release means the check failed or no
// update exists; it is never an error.
func Check(current string) (*Release, bool) {
	release, err := fetchLatest(current)
	if err != nil {
		return nil, false
	}
	if !isNewer(strings.TrimPrefix(current, "v"), release.Version()) {
		return release, false
	}
	return release, true
}

func fetchLatest(current string) (*Release, error) {
	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "lineargate/"+current)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	return &release, nil
}

// SelfUpdate downloads the release archive for this OS/arch and
// replaces the running executable atomically (write aside, then
// rename). The caller restarts the server afterwards.
func SelfUpdate(current string) error {
	release, err := fetchLatest(current)
	if err != nil {
		return fmt.Errorf("checking latest release: %w", err)
	}
	if !isNewer(strings.TrimPrefix(current, "v"), release.Version()) {
		return fmt.Errorf("already at latest version (%s)", current)
	}

	assetName := fmt.Sprintf("lineargate_%s_%s_%s.tar.gz", release.Version(), runtime.GOOS, runtime.GOARCH)
	var downloadURL string
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return fmt.Errorf("no release asset for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	resp, err := httpClient.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %d", resp.StatusCode)
	}

	binary, err := extractBinary(resp.Body)
	if err != nil {
		return fmt.Errorf("extracting binary: %w", err)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}

	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, binary, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}
	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

// extractBinary pulls the lineargate binary out of a .tar.gz archive.
func extractBinary(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if filepath.Base(header.Name) == "lineargate" {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("lineargate binary not found in archive")
}

// isNewer compares dotted version strings numerically, part by part.
// A "dev" build never updates.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	cp := strings.Split(current, ".")
	lp := strings.Split(latest, ".")
	for len(cp) < 3 {
		cp = append(cp, "0")
	}
	for len(lp) < 3 {
		lp = append(lp, "0")
	}

	for i := 0; i < 3; i++ {
		c, l := leadingInt(cp[i]), leadingInt(lp[i])
		if l != c {
			return l > c
		}
	}
	return false
}

// leadingInt parses the leading digits of s, 0 when there are none.
func leadingInt(s string) int {
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
