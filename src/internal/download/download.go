// Package download provides utilities for downloading and extracting runtime archives
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/voltajs/volta/src/internal/ui"
)

// HTTPStatusError reports a non-2xx HTTP response from a download attempt.
// Callers retrying a download can inspect StatusCode to decide whether the
// failure is worth retrying (e.g. a 4xx should not be).
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.StatusCode, e.URL)
}

// File downloads url to destPath with a byte-level progress bar, honoring
// ctx cancellation. client defaults to http.DefaultClient when nil.
func File(ctx context.Context, client *http.Client, url, destPath string) error {
	ui.Debug("Starting download: %s", url)
	ui.Debug("Destination: %s", destPath)

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

	_, err = io.Copy(io.MultiWriter(out, bar), resp.Body)
	if err != nil {
		ui.Debug("Download failed: %v", err)
		_ = os.Remove(destPath)
		return err
	}

	fmt.Println() // New line after progress bar
	ui.Debug("Download complete: %s", destPath)
	return nil
}
