package crawler

import (
	"context"
	"time"
)

// PageRenderer is the external rendering capability each worker drives. One
// session maps to one browser context; sessions are never shared across
// workers. Every call is fallible and must be bounded by the caller-supplied
// context or timeout.
type PageRenderer interface {
	// Navigate loads url and returns the URL the page settled on after
	// redirects. A refusal to render downloadable content is reported as an
	// error wrapping ErrNavigationAborted.
	Navigate(ctx context.Context, url string, timeout time.Duration) (finalURL string, err error)
	// CurrentURL reports the URL of the currently loaded page.
	CurrentURL(ctx context.Context) (string, error)
	// ExtractLinks returns the href of every anchor on the current page,
	// already resolved to absolute form.
	ExtractLinks(ctx context.Context) ([]string, error)
	// RawGet fetches url as raw bytes using the session's network stack, so
	// cookies obtained through a login carry over.
	RawGet(ctx context.Context, url string) ([]byte, error)
	// QueryLoginForm runs the form-field discovery query against the current
	// DOM and returns its structured result.
	QueryLoginForm(ctx context.Context) (*LoginFormScan, error)
	// Fill sets the value of the input matched by selector.
	Fill(ctx context.Context, selector, value string) error
	// Click activates the element matched by selector.
	Click(ctx context.Context, selector string) error
	// PressKey sends a key press to the element matched by selector.
	PressKey(ctx context.Context, selector, key string) error
	// WaitForSettle blocks until in-flight page activity has quieted down,
	// up to d.
	WaitForSettle(ctx context.Context, d time.Duration) error
	// Interactive reports whether Fill, Click, and PressKey are usable.
	Interactive() bool
	// Close tears down the session.
	Close(ctx context.Context) error
}

// RendererFactory creates one PageRenderer session per worker.
type RendererFactory interface {
	NewSession(ctx context.Context) (PageRenderer, error)
}

// LoginFormScan is the structured result of the DOM query used for
// form-field discovery. Selectors are empty when the corresponding element
// was not found.
type LoginFormScan struct {
	HasPassword         bool   `json:"hasPassword"`
	UsernameSelector    string `json:"usernameSelector"`
	UsernameName        string `json:"usernameName"`
	UsernamePlaceholder string `json:"usernamePlaceholder"`
	PasswordSelector    string `json:"passwordSelector"`
	SubmitSelector      string `json:"submitSelector"`
}

// CredentialPrompter obtains credentials from the operator. Invoked only on
// a credential-store miss.
type CredentialPrompter interface {
	Prompt(ctx context.Context, hint string) (Credentials, error)
}

// RobotsPolicy answers allow/deny for a URL. Implementations are read-only
// after construction and safe for concurrent use.
type RobotsPolicy interface {
	Allowed(rawURL string) bool
}
