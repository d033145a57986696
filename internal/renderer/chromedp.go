// Package renderer provides PageRenderer implementations: a chromedp-driven
// headless browser and a static HTTP fallback for environments without
// Chrome.
package renderer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/filehound/filehound/internal/crawler"
)

// ChromedpFactory owns the shared browser allocator. Every worker session
// gets its own browser context so no renderer state crosses workers.
type ChromedpFactory struct {
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	userAgent       string
	logger          *zap.Logger
}

// NewChromedpFactory configures the headless Chrome allocator.
func NewChromedpFactory(userAgent string, logger *zap.Logger) *ChromedpFactory {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(userAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromedpFactory{
		allocatorCtx:    allocatorCtx,
		allocatorCancel: allocatorCancel,
		userAgent:       userAgent,
		logger:          logger,
	}
}

// NewSession starts a fresh browser context for one worker.
func (f *ChromedpFactory) NewSession(ctx context.Context) (crawler.PageRenderer, error) {
	browserCtx, browserCancel := chromedp.NewContext(f.allocatorCtx)
	warmup := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(f.userAgent),
	}
	if err := runBounded(ctx, browserCtx, 30*time.Second, warmup); err != nil {
		browserCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	return &chromedpSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        f.logger,
	}, nil
}

// Close tears down the allocator and every remaining browser context.
func (f *ChromedpFactory) Close() {
	f.allocatorCancel()
}

type chromedpSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *zap.Logger
}

// Navigate loads rawURL and waits for the document body. Chrome aborts
// navigations that answer with attachment content; that outcome is reported
// as ErrNavigationAborted so the worker can fall back to a direct download.
func (s *chromedpSession) Navigate(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	var finalURL string
	tasks := chromedp.Tasks{
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
	}
	if err := runBounded(ctx, s.browserCtx, timeout, tasks); err != nil {
		if strings.Contains(err.Error(), "net::ERR_ABORTED") {
			return "", fmt.Errorf("navigate %s: %w", rawURL, crawler.ErrNavigationAborted)
		}
		return "", fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	return finalURL, nil
}

func (s *chromedpSession) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := runBounded(ctx, s.browserCtx, 10*time.Second, chromedp.Tasks{chromedp.Location(&location)}); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

const extractLinksScript = `Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`

func (s *chromedpSession) ExtractLinks(ctx context.Context) ([]string, error) {
	var links []string
	tasks := chromedp.Tasks{chromedp.Evaluate(extractLinksScript, &links)}
	if err := runBounded(ctx, s.browserCtx, 15*time.Second, tasks); err != nil {
		return nil, fmt.Errorf("extract links: %w", err)
	}
	return links, nil
}

// rawGetScript fetches the target inside the page so the request carries the
// session's cookies, and returns the body base64-encoded; CDP cannot pass
// raw bytes through Evaluate.
const rawGetScript = `(async (target) => {
	const resp = await fetch(target, {credentials: 'include'});
	if (!resp.ok) {
		throw new Error('fetch failed with status ' + resp.status);
	}
	const bytes = new Uint8Array(await resp.arrayBuffer());
	let binary = '';
	const chunk = 0x8000;
	for (let i = 0; i < bytes.length; i += chunk) {
		binary += String.fromCharCode.apply(null, bytes.subarray(i, i + chunk));
	}
	return btoa(binary);
})(%q)`

func (s *chromedpSession) RawGet(ctx context.Context, rawURL string) ([]byte, error) {
	var encoded string
	tasks := chromedp.Tasks{
		chromedp.Evaluate(fmt.Sprintf(rawGetScript, rawURL), &encoded, awaitPromise),
	}
	if err := runBounded(ctx, s.browserCtx, 60*time.Second, tasks); err != nil {
		return nil, fmt.Errorf("raw get %s: %w", rawURL, err)
	}
	body, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode body of %s: %w", rawURL, err)
	}
	return body, nil
}

// loginFormProbeScript walks every form looking for a password input plus a
// username-like text/email input (name, id, or placeholder containing
// "user", "email", or "login"). It also locates a submit control: an
// explicit submit type, or any button whose text reads like a login action.
const loginFormProbeScript = `(() => {
	const hintRe = /(user|email|login)/i;
	const submitRe = /(login|sign in|submit)/i;
	const selector = (el) => {
		if (!el) return '';
		if (el.id) return '#' + CSS.escape(el.id);
		const name = el.getAttribute('name');
		if (name) return el.tagName.toLowerCase() + '[name="' + name + '"]';
		return '';
	};
	const empty = {
		hasPassword: false, usernameSelector: '', usernameName: '',
		usernamePlaceholder: '', passwordSelector: '', submitSelector: '',
	};
	for (const form of Array.from(document.querySelectorAll('form'))) {
		const password = form.querySelector('input[type="password"]');
		if (!password) continue;
		const inputs = Array.from(form.querySelectorAll('input')).filter((el) => {
			const type = (el.getAttribute('type') || 'text').toLowerCase();
			return type === 'text' || type === 'email';
		});
		const username = inputs.find((el) =>
			hintRe.test(el.getAttribute('name') || '') ||
			hintRe.test(el.id || '') ||
			hintRe.test(el.getAttribute('placeholder') || ''));
		let submit = form.querySelector('button[type="submit"], input[type="submit"]');
		if (!submit) {
			submit = Array.from(form.querySelectorAll('button'))
				.find((b) => submitRe.test(b.textContent || ''));
		}
		return {
			hasPassword: true,
			usernameSelector: selector(username),
			usernameName: username ? (username.getAttribute('name') || '') : '',
			usernamePlaceholder: username ? (username.getAttribute('placeholder') || '') : '',
			passwordSelector: selector(password),
			submitSelector: selector(submit),
		};
	}
	return empty;
})()`

func (s *chromedpSession) QueryLoginForm(ctx context.Context) (*crawler.LoginFormScan, error) {
	var scan crawler.LoginFormScan
	tasks := chromedp.Tasks{chromedp.Evaluate(loginFormProbeScript, &scan)}
	if err := runBounded(ctx, s.browserCtx, 15*time.Second, tasks); err != nil {
		return nil, fmt.Errorf("login form probe: %w", err)
	}
	return &scan, nil
}

func (s *chromedpSession) Fill(ctx context.Context, selector, value string) error {
	tasks := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	}
	if err := runBounded(ctx, s.browserCtx, 15*time.Second, tasks); err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (s *chromedpSession) Click(ctx context.Context, selector string) error {
	tasks := chromedp.Tasks{chromedp.Click(selector, chromedp.ByQuery)}
	if err := runBounded(ctx, s.browserCtx, 15*time.Second, tasks); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *chromedpSession) PressKey(ctx context.Context, selector, key string) error {
	tasks := chromedp.Tasks{chromedp.SendKeys(selector, mapKey(key), chromedp.ByQuery)}
	if err := runBounded(ctx, s.browserCtx, 15*time.Second, tasks); err != nil {
		return fmt.Errorf("press %s in %s: %w", key, selector, err)
	}
	return nil
}

// WaitForSettle sleeps inside the browser context. Login redirects and
// client-side navigation rarely announce themselves, so a short fixed settle
// is the pragmatic choice.
func (s *chromedpSession) WaitForSettle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := runBounded(ctx, s.browserCtx, d+5*time.Second, chromedp.Tasks{chromedp.Sleep(d)}); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	return nil
}

func (s *chromedpSession) Interactive() bool { return true }

func (s *chromedpSession) Close(context.Context) error {
	s.browserCancel()
	return nil
}

func awaitPromise(p *cdpruntime.EvaluateParams) *cdpruntime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// runBounded executes tasks on the session's browser context with a
// deadline, while also honoring cancellation of the caller's context.
func runBounded(callerCtx, browserCtx context.Context, timeout time.Duration, tasks chromedp.Tasks) error {
	taskCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()
	stop := forwardCancel(callerCtx, cancel)
	defer stop()
	return chromedp.Run(taskCtx, tasks)
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func mapKey(key string) string {
	switch strings.ToLower(key) {
	case "enter", "return":
		return kb.Enter
	case "tab":
		return kb.Tab
	default:
		return key
	}
}
