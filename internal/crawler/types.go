package crawler

import (
	"errors"
	"strings"
	"time"
)

// CrawlTarget is a URL awaiting classification, plus attributes recorded at
// discovery time. Immutable once enqueued.
type CrawlTarget struct {
	URL       string
	Depth     int
	SourceURL string
}

// Credentials holds one username/password pair entered for a login form.
type Credentials struct {
	Username string
	Password string
}

// FormSignature is a coarse key used to recognize "the same login form"
// across visits: the page's domain plus the normalized naming hint of the
// username field. Two different forms on one domain with the same field
// naming collide deliberately; this is a low-fidelity heuristic, not a hash
// of page content.
type FormSignature struct {
	Domain       string
	UsernameHint string
}

// NewFormSignature lowercases and whitespace-normalizes its parts so that
// cosmetic differences do not defeat credential reuse.
func NewFormSignature(domain, usernameHint string) FormSignature {
	return FormSignature{
		Domain:       strings.ToLower(strings.TrimSpace(domain)),
		UsernameHint: strings.Join(strings.Fields(strings.ToLower(usernameHint)), " "),
	}
}

// Stats summarizes a finished crawl run.
type Stats struct {
	FilesDownloaded int
	PagesRendered   int64
	Elapsed         time.Duration
}

// ErrNavigationAborted marks a navigation the browser refused because the
// target answered with downloadable content instead of a page. The worker
// inspects it to decide on a direct-download fallback.
var ErrNavigationAborted = errors.New("navigation aborted")

// ErrFrontierIdle is returned by Frontier.Dequeue once no work has arrived
// for the full idle window. Workers treat it as the signal to exit.
var ErrFrontierIdle = errors.New("frontier idle")

// ErrInteractionUnsupported is returned by renderers that can inspect pages
// but cannot fill or click form controls.
var ErrInteractionUnsupported = errors.New("renderer does not support interaction")
