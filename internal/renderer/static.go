package renderer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/filehound/filehound/internal/crawler"
)

var (
	loginHintRe  = regexp.MustCompile(`(?i)(user|email|login)`)
	submitHintRe = regexp.MustCompile(`(?i)(login|sign in|submit)`)
)

// StaticFactory builds Colly-backed sessions for environments without a
// Chrome binary. Static sessions cannot execute JavaScript or interact with
// forms, so login detection runs but authentication is skipped.
type StaticFactory struct {
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewStaticFactory configures the shared HTTP settings for static sessions.
func NewStaticFactory(userAgent string, timeout time.Duration, logger *zap.Logger) *StaticFactory {
	return &StaticFactory{
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

// NewSession builds one collector per worker.
func (f *StaticFactory) NewSession(context.Context) (crawler.PageRenderer, error) {
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(f.userAgent),
		// The engine applies its own robots gate; Colly must not second-guess it.
		colly.IgnoreRobotsTxt(),
	)
	// Revisits are deduplicated by the engine's visited set, and RawGet may
	// legitimately re-request a URL the session navigated to.
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: f.timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(f.timeout)

	return &staticSession{
		collector: base,
		logger:    f.logger,
	}, nil
}

// Close is a no-op; static sessions hold no shared process.
func (f *StaticFactory) Close() {}

type staticSession struct {
	collector  *colly.Collector
	logger     *zap.Logger
	currentURL string
	baseURL    *url.URL
	doc        *goquery.Document
}

type staticResponse struct {
	finalURL   string
	statusCode int
	body       []byte
	err        error
}

func (s *staticSession) Navigate(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	res, err := s.get(ctx, rawURL, timeout)
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.body))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}
	base, err := url.Parse(res.finalURL)
	if err != nil {
		return "", fmt.Errorf("parse final url %s: %w", res.finalURL, err)
	}
	s.doc = doc
	s.baseURL = base
	s.currentURL = res.finalURL
	return res.finalURL, nil
}

func (s *staticSession) CurrentURL(context.Context) (string, error) {
	return s.currentURL, nil
}

func (s *staticSession) ExtractLinks(context.Context) ([]string, error) {
	if s.doc == nil || s.baseURL == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	var links []string
	s.doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, s.baseURL.ResolveReference(ref).String())
	})
	return links, nil
}

func (s *staticSession) RawGet(ctx context.Context, rawURL string) ([]byte, error) {
	res, err := s.get(ctx, rawURL, 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("raw get %s: %w", rawURL, err)
	}
	return res.body, nil
}

func (s *staticSession) QueryLoginForm(context.Context) (*crawler.LoginFormScan, error) {
	scan := &crawler.LoginFormScan{}
	if s.doc == nil {
		return scan, nil
	}
	s.doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		password := form.Find(`input[type="password"]`).First()
		if password.Length() == 0 {
			return true
		}
		scan.HasPassword = true
		scan.PasswordSelector = elementSelector(password)

		form.Find("input").EachWithBreak(func(_ int, in *goquery.Selection) bool {
			typ := strings.ToLower(in.AttrOr("type", "text"))
			if typ != "text" && typ != "email" {
				return true
			}
			if loginHintRe.MatchString(in.AttrOr("name", "")) ||
				loginHintRe.MatchString(in.AttrOr("id", "")) ||
				loginHintRe.MatchString(in.AttrOr("placeholder", "")) {
				scan.UsernameSelector = elementSelector(in)
				scan.UsernameName = in.AttrOr("name", "")
				scan.UsernamePlaceholder = in.AttrOr("placeholder", "")
				return false
			}
			return true
		})

		submit := form.Find(`button[type="submit"], input[type="submit"]`).First()
		if submit.Length() == 0 {
			form.Find("button").EachWithBreak(func(_ int, b *goquery.Selection) bool {
				if submitHintRe.MatchString(b.Text()) {
					submit = b
					return false
				}
				return true
			})
		}
		if submit.Length() > 0 {
			scan.SubmitSelector = elementSelector(submit)
		}
		return false
	})
	return scan, nil
}

func (s *staticSession) Fill(context.Context, string, string) error {
	return crawler.ErrInteractionUnsupported
}

func (s *staticSession) Click(context.Context, string) error {
	return crawler.ErrInteractionUnsupported
}

func (s *staticSession) PressKey(context.Context, string, string) error {
	return crawler.ErrInteractionUnsupported
}

func (s *staticSession) WaitForSettle(context.Context, time.Duration) error { return nil }

func (s *staticSession) Interactive() bool { return false }

func (s *staticSession) Close(context.Context) error { return nil }

// get runs one request on a collector clone and blocks for the response,
// the caller's context, or the timeout, whichever comes first.
func (s *staticSession) get(ctx context.Context, rawURL string, timeout time.Duration) (staticResponse, error) {
	collector := s.collector.Clone()
	resultCh := make(chan staticResponse, 1)
	var once sync.Once
	send := func(res staticResponse) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(staticResponse{
			finalURL:   r.Request.URL.String(),
			statusCode: r.StatusCode,
			body:       append([]byte{}, r.Body...),
		})
	})
	collector.OnError(func(r *colly.Response, err error) {
		send(staticResponse{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return staticResponse{}, fmt.Errorf("visit: %w", err)
	}

	done := make(chan struct{})
	go func() {
		collector.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return staticResponse{}, ctx.Err()
	case <-timer.C:
		return staticResponse{}, fmt.Errorf("request timed out after %s", timeout)
	case <-done:
	}

	select {
	case res := <-resultCh:
		if res.err != nil {
			return staticResponse{}, res.err
		}
		return res, nil
	default:
		return staticResponse{}, fmt.Errorf("no response received")
	}
}

func elementSelector(sel *goquery.Selection) string {
	if id := sel.AttrOr("id", ""); id != "" {
		return "#" + id
	}
	if name := sel.AttrOr("name", ""); name != "" {
		return goquery.NodeName(sel) + `[name="` + name + `"]`
	}
	return ""
}
