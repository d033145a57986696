package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

const robotsBodyLimit = 1 << 20

// RobotsGate enforces the robots.txt ruleset of the crawl's start host. It
// is built once per run and read-only afterwards, so all workers may query
// it without locking. Rules are matched against the generic (*) user agent
// group only; the crawler claims no distinct identity in robots matching
// even though requests carry a custom User-Agent header.
type RobotsGate struct {
	group *robotstxt.Group
}

// NewRobotsGate fetches and parses /robots.txt from the start URL's
// scheme+host. robots.txt is advisory best-effort: any fetch or parse
// failure degrades to permit-all rather than aborting the crawl.
func NewRobotsGate(ctx context.Context, startURL, userAgent string, client *http.Client, logger *zap.Logger) *RobotsGate {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	group, err := loadRobotsGroup(ctx, startURL, userAgent, client)
	if err != nil {
		logger.Warn("robots.txt unavailable; permitting all URLs", zap.Error(err))
		return &RobotsGate{}
	}
	return &RobotsGate{group: group}
}

// Allowed reports whether rawURL passes the ruleset. Unparseable URLs are
// denied; they would fail classification anyway.
func (g *RobotsGate) Allowed(rawURL string) bool {
	if g == nil || g.group == nil {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := parsed.Path
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return g.group.Test(path)
}

func loadRobotsGroup(ctx context.Context, startURL, userAgent string, client *http.Client) (*robotstxt.Group, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}
	robotsURL := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	return data.FindGroup("*"), nil
}
