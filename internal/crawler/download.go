package crawler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename derives a filesystem-safe name from the final segment of
// rawURL's path (the query string is discarded), replacing every character
// outside [A-Za-z0-9_.-] with an underscore. Empty segments fall back to the
// literal name "file".
func SanitizeFilename(rawURL string) string {
	segment := ""
	if u, err := url.Parse(rawURL); err == nil {
		parts := strings.Split(u.EscapedPath(), "/")
		segment = parts[len(parts)-1]
	}
	segment = unsafeFilenameChars.ReplaceAllString(segment, "_")
	if segment == "" {
		return "file"
	}
	return segment
}

// DownloadManager fetches resolved file URLs through the worker's renderer
// session and persists each at most once. Idempotence is best-effort, not
// content-hash based: two source URLs that sanitize to the same filename
// collide and the second write is silently skipped.
type DownloadManager struct {
	outputDir string
	state     *CrawlState
	logger    *zap.Logger
}

// NewDownloadManager creates the output directory if absent. Failure here is
// one of the few unrecoverable setup errors.
func NewDownloadManager(outputDir string, state *CrawlState, logger *zap.Logger) (*DownloadManager, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	return &DownloadManager{
		outputDir: outputDir,
		state:     state,
		logger:    logger,
	}, nil
}

// Fetch downloads rawURL and writes it to the output directory. A return of
// (0, nil) means the download was skipped: the URL was already downloaded,
// another worker holds it, or a file of the same sanitized name exists on
// disk. Fetch failures are reported for logging; they are never fatal to the
// crawl.
func (d *DownloadManager) Fetch(ctx context.Context, session PageRenderer, rawURL string) (int, error) {
	if !d.state.ReserveDownload(rawURL) {
		d.logger.Debug("skipping already-downloaded URL", zap.String("url", rawURL))
		return 0, nil
	}

	target := filepath.Join(d.outputDir, SanitizeFilename(rawURL))
	if _, err := os.Stat(target); err == nil {
		d.state.ReleaseDownload(rawURL)
		d.logger.Debug("skipping download; file exists", zap.String("url", rawURL), zap.String("path", target))
		return 0, nil
	}

	d.logger.Info("downloading", zap.String("url", rawURL), zap.String("path", target))
	body, err := session.RawGet(ctx, rawURL)
	if err != nil {
		d.state.ReleaseDownload(rawURL)
		TotalDownloadErrors.Inc()
		return 0, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if err := os.WriteFile(target, body, 0o600); err != nil {
		d.state.ReleaseDownload(rawURL)
		TotalDownloadErrors.Inc()
		return 0, fmt.Errorf("write %s: %w", target, err)
	}

	TotalFilesDownloaded.Inc()
	return len(body), nil
}
