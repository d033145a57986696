package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"https", "https://x.com/a", true},
		{"http", "http://x.com", true},
		{"uppercase scheme", "HTTPS://x.com/a", true},
		{"mailto", "mailto:someone@x.com", false},
		{"javascript", "javascript:void(0)", false},
		{"relative", "/docs/report.pdf", false},
		{"ftp", "ftp://x.com/a", false},
		{"empty", "", false},
		{"scheme only", "https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidLink(tt.url))
		})
	}
}

func TestIsInScope(t *testing.T) {
	t.Parallel()

	// Scope is a substring match on the host, not same-origin: subdomains
	// and hosts merely containing the base domain are all in scope.
	tests := []struct {
		name           string
		url            string
		baseDomain     string
		sameDomainOnly bool
		want           bool
	}{
		{"scoping disabled", "https://other.com/x.pdf", "example.com", false, true},
		{"exact host", "https://example.com/x.pdf", "example.com", true, true},
		{"subdomain", "https://sub.example.com/x.pdf", "example.com", true, true},
		{"other host", "https://other.com/x.pdf", "example.com", true, false},
		{"host containing base", "https://notexample.com.evil.org/x", "example.com", true, true},
		{"case insensitive", "https://EXAMPLE.com/x", "example.com", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInScope(tt.url, tt.baseDomain, tt.sameDomainOnly))
		})
	}
}

func TestIsTargetFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		ext  string
		want bool
	}{
		{"plain match", "https://x.com/a/report.pdf", "pdf", true},
		{"case insensitive", "https://x.com/a/report.PDF", "pdf", true},
		{"suffix only", "https://x.com/a/report.pdf.html", "pdf", false},
		{"query ignored", "https://x.com/a/report.pdf?dl=1", "pdf", true},
		{"different ext", "https://x.com/a/report.csv", "pdf", false},
		{"no extension", "https://x.com/a/report", "pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTargetFile(tt.url, tt.ext))
		})
	}
}

func TestIsDownloadIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		ext  string
		want bool
	}{
		{"marker without signal", "https://x.com/download?id=5", "pdf", false},
		{"marker with extension", "https://x.com/wpdmdl=5&file=report.pdf", "pdf", true},
		{"marker with bare token", "https://x.com/download?id=5&fmt=pdf", "pdf", true},
		{"marker with attachment", "https://x.com/download?id=5&type=attachment", "pdf", true},
		{"marker with export", "https://x.com/file/export?id=9", "pdf", true},
		{"signal without marker", "https://x.com/docs/report.pdf.html", "pdf", false},
		{"unrelated url", "https://x.com/about", "pdf", false},
		{"case insensitive marker", "https://x.com/DOWNLOAD?f=a.PDF", "pdf", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDownloadIntent(tt.url, tt.ext))
		})
	}
}

func TestHasExtensionToken(t *testing.T) {
	t.Parallel()

	assert.True(t, HasExtensionToken("https://x.com/get?name=a.pdf", "pdf"))
	assert.True(t, HasExtensionToken("https://x.com/get?fmt=pdf", "pdf"))
	assert.False(t, HasExtensionToken("https://x.com/get?type=attachment", "pdf"))
}
