// Package update checks GitHub releases for a newer gramview
// build and installs it over the running binary.
package update

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	releaseURL     = "https://api.github.com/repos/AyGoub/gramview/releases/latest"
	requestTimeout = 30 * time.Second
)

// Release is the subset of the GitHub release payload we need.
type Release struct {
	TagName string  `json:"tag_name"`
	Body    string  `json:"body"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable release artifact.
type Asset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Info describes an available update.
type Info struct {
	CurrentVersion string
	LatestVersion  string
	DownloadURL    string
	AssetName      string
	Size           int64
	Checksum       string
}

// IsDevBuild reports whether the version string comes from a
// source build rather than a tagged release.
func IsDevBuild(v string) bool {
	v = strings.TrimPrefix(v, "v")
	return v == "" || v == "dev" || v == "unknown"
}

// normalize converts a version string into the "vX.Y.Z" form
// golang.org/x/mod/semver expects, or "" when it cannot.
func normalize(v string) string {
	v = "v" + strings.TrimPrefix(v, "v")
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// isNewer reports whether a is a strictly newer release than b.
func isNewer(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return semver.Compare(na, nb) > 0
}

// Check queries the latest release and returns update info, or
// nil when the current build is already up to date. Dev builds
// always report the latest release so developers can install a
// tagged version.
func Check(currentVersion string) (*Info, error) {
	release, err := fetchLatestRelease()
	if err != nil {
		return nil, fmt.Errorf("checking for updates: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")
	if !IsDevBuild(current) && !isNewer(latest, current) {
		return nil, nil
	}

	ext := ".tar.gz"
	if runtime.GOOS == "windows" {
		ext = ".zip"
	}
	assetName := fmt.Sprintf("gramview_%s_%s_%s%s",
		latest, runtime.GOOS, runtime.GOARCH, ext)

	var asset, sums *Asset
	for i := range release.Assets {
		switch release.Assets[i].Name {
		case assetName:
			asset = &release.Assets[i]
		case "SHA256SUMS", "checksums.txt":
			sums = &release.Assets[i]
		}
	}
	if asset == nil {
		return nil, fmt.Errorf("no release asset for %s/%s",
			runtime.GOOS, runtime.GOARCH)
	}

	var checksum string
	if sums != nil {
		checksum, _ = fetchChecksum(
			sums.BrowserDownloadURL, assetName,
		)
	}

	return &Info{
		CurrentVersion: currentVersion,
		LatestVersion:  release.TagName,
		DownloadURL:    asset.BrowserDownloadURL,
		AssetName:      asset.Name,
		Size:           asset.Size,
		Checksum:       checksum,
	}, nil
}

func fetchLatestRelease() (*Release, error) {
	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Get(releaseURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"GitHub API returned %s", resp.Status,
		)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &release, nil
}

// fetchChecksum downloads a checksums file and returns the entry
// for assetName.
func fetchChecksum(url, assetName string) (string, error) {
	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"checksums download returned %s", resp.Status,
		)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 &&
			strings.TrimPrefix(fields[1], "*") == assetName {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("no checksum entry for %s", assetName)
}

// Install downloads the release asset, verifies its checksum,
// and replaces the running executable.
func Install(info *Info) error {
	if info.Checksum == "" {
		return fmt.Errorf(
			"no checksum for %s, refusing unverified binary",
			info.AssetName,
		)
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	exePath, err = filepath.EvalSymlinks(exePath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "gramview-update-")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, info.AssetName)
	if err := download(info.DownloadURL, archivePath); err != nil {
		return fmt.Errorf("downloading update: %w", err)
	}

	sum, err := hashFile(archivePath)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, info.Checksum) {
		return fmt.Errorf(
			"checksum mismatch for %s", info.AssetName,
		)
	}

	binName := "gramview"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(tmpDir, binName)
	if strings.HasSuffix(info.AssetName, ".zip") {
		err = extractZipBinary(archivePath, binName, binPath)
	} else {
		err = extractTarGzBinary(archivePath, binName, binPath)
	}
	if err != nil {
		return fmt.Errorf("extracting update: %w", err)
	}

	return replaceBinary(binPath, exePath)
}

func download(url, dst string) error {
	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %s", resp.Status)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func extractTarGzBinary(archivePath, name, dst string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if filepath.Base(hdr.Name) != name ||
			hdr.Typeflag != tar.TypeReg {
			continue
		}
		return writeBinary(dst, tr)
	}
	return fmt.Errorf("binary %s not found in archive", name)
}

func extractZipBinary(archivePath, name, dst string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if filepath.Base(f.Name) != name || f.FileInfo().IsDir() {
			continue
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		err = writeBinary(dst, src)
		src.Close()
		return err
	}
	return fmt.Errorf("binary %s not found in archive", name)
}

func writeBinary(dst string, src io.Reader) error {
	out, err := os.OpenFile(
		dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755,
	)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// replaceBinary swaps the new binary into place. The old one is
// moved aside first because the running executable cannot be
// overwritten in place on Windows.
func replaceBinary(newPath, exePath string) error {
	backup := exePath + ".old"
	_ = os.Remove(backup)

	if err := os.Rename(exePath, backup); err != nil {
		return fmt.Errorf("moving old binary aside: %w", err)
	}
	if err := copyExecutable(newPath, exePath); err != nil {
		// Roll back so the install never leaves no binary.
		_ = os.Rename(backup, exePath)
		return fmt.Errorf("installing new binary: %w", err)
	}
	_ = os.Remove(backup)
	return nil
}

func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return writeBinary(dst, in)
}

// FormatSize renders a byte count in human-readable units.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf(
		"%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp],
	)
}
