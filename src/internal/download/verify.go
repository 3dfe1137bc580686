package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/voltajs/volta/src/internal/ui"
)

// ErrChecksumMismatch is returned when the downloaded file's checksum doesn't match.
type ErrChecksumMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// FileVerified downloads url to destPath with a progress bar, hashing the
// body as it streams with newHash and comparing the result against
// expectedHex (case-insensitive, whitespace-trimmed). The partial file is
// removed if the download or the checksum fails. client defaults to
// http.DefaultClient when nil, so callers can pass a registry-specific
// client (e.g. the Installer's npm-registry client) or let it default for
// a plain distribution mirror.
func FileVerified(ctx context.Context, client *http.Client, newHash func() hash.Hash, url, destPath, expectedHex string) error {
	ui.Debug("Starting verified download: %s", url)
	ui.Debug("Destination: %s", destPath)
	ui.Debug("Expected checksum: %s", expectedHex)

	if client == nil {
		client = http.DefaultClient
	}

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	ui.Debug("Making HTTP GET request...")
	resp, err := client.Do(req)
	if err != nil {
		ui.Debug("HTTP request failed: %v", err)
		return fmt.Errorf("failed to connect: %w (URL: %s)", err, url)
	}
	defer func() { _ = resp.Body.Close() }()

	ui.Debug("HTTP response: %s", resp.Status)

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{StatusCode: resp.StatusCode, URL: url}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	size := resp.ContentLength
	ui.Debug("Content-Length: %d bytes", size)

	bar := progressbar.DefaultBytes(size, "Downloading")
	hasher := newHash()

	_, err = io.Copy(io.MultiWriter(out, bar, hasher), resp.Body)
	if err != nil {
		ui.Debug("Download failed: %v", err)
		_ = os.Remove(destPath)
		return err
	}

	fmt.Println() // New line after progress bar

	actual := hex.EncodeToString(hasher.Sum(nil))
	ui.Debug("Actual checksum: %s", actual)

	expectedNorm := strings.ToLower(strings.TrimSpace(expectedHex))
	actualNorm := strings.ToLower(actual)

	if actualNorm != expectedNorm {
		ui.Debug("Checksum mismatch! Removing downloaded file.")
		_ = os.Remove(destPath)
		return &ErrChecksumMismatch{
			Expected: expectedHex,
			Actual:   actual,
		}
	}

	ui.Debug("Checksum verified successfully")
	ui.Debug("Download complete: %s", destPath)
	return nil
}

// VerifyFile checks if an existing file matches the expected SHA256 checksum.
func VerifyFile(filePath, expectedSHA256 string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return err
	}

	actualSHA256 := hex.EncodeToString(hasher.Sum(nil))

	// Normalize both checksums to lowercase for comparison
	expectedNorm := strings.ToLower(strings.TrimSpace(expectedSHA256))
	actualNorm := strings.ToLower(actualSHA256)

	if actualNorm != expectedNorm {
		return &ErrChecksumMismatch{
			Expected: expectedSHA256,
			Actual:   actualSHA256,
		}
	}

	return nil
}

// ComputeSHA256 computes the SHA256 checksum of a file.
func ComputeSHA256(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
