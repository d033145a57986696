package crawler

import (
	"net/url"
	"strings"
)

// downloadMarkers are the URL substrings that suggest an endpoint serves
// file content even without a literal extension in the path.
var downloadMarkers = []string{"download", "wpdmdl", "file"}

// IsValidLink reports whether raw is an absolute HTTP or HTTPS URL. Relative
// links and other schemes (mailto:, javascript:) are rejected.
func IsValidLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// IsInScope reports whether raw satisfies the same-domain policy. The check
// is a substring match on the host, not strict same-origin: subdomains and
// any host containing baseDomain are treated as in-scope. Known looseness,
// kept on purpose (see DESIGN.md).
func IsInScope(raw, baseDomain string, sameDomainOnly bool) bool {
	if !sameDomainOnly {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Host), strings.ToLower(baseDomain))
}

// IsTargetFile reports whether the URL path ends with "."+ext,
// case-insensitively.
func IsTargetFile(raw, ext string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), "."+strings.ToLower(ext))
}

// HasDownloadMarker reports whether the URL contains any of the
// download-endpoint substrings, case-insensitively.
func HasDownloadMarker(raw string) bool {
	lower := strings.ToLower(raw)
	for _, marker := range downloadMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// HasExtensionSignal reports whether the URL plausibly ties to ext: it
// contains "."+ext, the bare extension token, or a generic attachment/export
// hint. Without this second stage every /download?id=n endpoint would be
// fetched regardless of what it serves.
func HasExtensionSignal(raw, ext string) bool {
	lower := strings.ToLower(raw)
	ext = strings.ToLower(ext)
	if strings.Contains(lower, "."+ext) || strings.Contains(lower, ext) {
		return true
	}
	return strings.Contains(lower, "attachment") || strings.Contains(lower, "export")
}

// HasExtensionToken reports whether the URL contains "."+ext or the bare
// extension token. This narrower test gates the direct-download fallback
// after an aborted navigation.
func HasExtensionToken(raw, ext string) bool {
	lower := strings.ToLower(raw)
	ext = strings.ToLower(ext)
	return strings.Contains(lower, "."+ext) || strings.Contains(lower, ext)
}

// IsDownloadIntent combines both stages: the URL looks like a download
// endpoint and carries a signal for the requested extension.
func IsDownloadIntent(raw, ext string) bool {
	return HasDownloadMarker(raw) && HasExtensionSignal(raw, ext)
}
