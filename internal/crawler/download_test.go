package crawler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://x.com/a/report.pdf", "report.pdf"},
		{"query stripped", "https://x.com/a/report.pdf?dl=1", "report.pdf"},
		{"download endpoint", "https://x.com/get?download=1&file=report.pdf", "get"},
		{"unsafe chars", "https://x.com/files/my%20report%20(v2).pdf", "my_20report_20_v2_.pdf"},
		{"root path", "https://x.com/", "file"},
		{"host only", "https://x.com", "file"},
		{"unparseable", "://", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.url))
		})
	}
}

func newTestDownloadManager(t *testing.T) (*DownloadManager, *CrawlState, string) {
	t.Helper()
	dir := t.TempDir()
	state := NewCrawlState()
	dm, err := NewDownloadManager(dir, state, zap.NewNop())
	require.NoError(t, err)
	return dm, state, dir
}

func TestDownloadWritesFileOnce(t *testing.T) {
	t.Parallel()

	dm, state, dir := newTestDownloadManager(t)
	site := newFakeSite()
	site.files["https://x.com/a.pdf"] = []byte("%PDF-1.4 fake")
	session := &fakeSession{site: site}

	n, err := dm.Fetch(context.Background(), session, "https://x.com/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, len("%PDF-1.4 fake"), n)

	body, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), body)
	assert.Equal(t, 1, state.FilesDownloaded())

	// Second fetch of the same URL is a silent no-op.
	n, err = dm.Fetch(context.Background(), session, "https://x.com/a.pdf")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, site.getCount("https://x.com/a.pdf"))
}

func TestDownloadSkipsFilenameCollision(t *testing.T) {
	t.Parallel()

	dm, state, dir := newTestDownloadManager(t)
	site := newFakeSite()
	site.files["https://x.com/v1/a.pdf"] = []byte("first")
	site.files["https://x.com/v2/a.pdf"] = []byte("second")
	session := &fakeSession{site: site}

	_, err := dm.Fetch(context.Background(), session, "https://x.com/v1/a.pdf")
	require.NoError(t, err)

	// A different URL sanitizing to the same filename collides; the second
	// write is silently skipped and the first file is untouched.
	n, err := dm.Fetch(context.Background(), session, "https://x.com/v2/a.pdf")
	require.NoError(t, err)
	assert.Zero(t, n)

	body, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), body)
	assert.Equal(t, 1, state.FilesDownloaded())
}

func TestDownloadFailureIsReportedAndReleased(t *testing.T) {
	t.Parallel()

	dm, state, _ := newTestDownloadManager(t)
	site := newFakeSite() // no canned bytes: RawGet fails
	session := &fakeSession{site: site}

	_, err := dm.Fetch(context.Background(), session, "https://x.com/missing.pdf")
	assert.Error(t, err)
	assert.Zero(t, state.FilesDownloaded(), "failed downloads must not count")

	// The URL stays retryable after a failure.
	site.files["https://x.com/missing.pdf"] = []byte("late")
	n, err := dm.Fetch(context.Background(), session, "https://x.com/missing.pdf")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
