package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// AuthState names the terminal states of the login state machine.
type AuthState string

// Terminal authentication outcomes.
const (
	AuthNoForm       AuthState = "no_form"
	AuthLoggedIn     AuthState = "logged_in"
	AuthSubmitFailed AuthState = "submit_failed"
)

// FormAuthenticator detects login forms on rendered pages, resolves
// credentials from the run's cache or the external prompt, and drives the
// submission through the renderer session. Failure is never fatal: the
// worker proceeds to link extraction regardless of the outcome.
type FormAuthenticator struct {
	state    *CrawlState
	prompter CredentialPrompter
	settle   time.Duration
	logger   *zap.Logger
}

// NewFormAuthenticator wires the authenticator to the run's shared state.
func NewFormAuthenticator(state *CrawlState, prompter CredentialPrompter, settle time.Duration, logger *zap.Logger) *FormAuthenticator {
	return &FormAuthenticator{
		state:    state,
		prompter: prompter,
		settle:   settle,
		logger:   logger,
	}
}

// Attempt runs the state machine against the page currently loaded in
// session and returns the terminal state.
//
// NoForm: no form with both a username-like field and a password field.
// LoggedIn: the page URL changed after submission; freshly entered
// credentials are cached under the form's signature on this transition only.
// SubmitFailed: the URL did not change, or any fill/submit step errored.
func (a *FormAuthenticator) Attempt(ctx context.Context, session PageRenderer, pageURL string) AuthState {
	if a == nil || a.prompter == nil {
		return AuthNoForm
	}
	if !session.Interactive() {
		a.logger.Debug("renderer cannot interact with forms; skipping login detection", zap.String("url", pageURL))
		return AuthNoForm
	}

	scan, err := session.QueryLoginForm(ctx)
	if err != nil {
		a.logger.Debug("form scan failed", zap.String("url", pageURL), zap.Error(err))
		return AuthNoForm
	}
	if scan == nil || !scan.HasPassword {
		return AuthNoForm
	}
	// A password field without an identifiable username field (or vice
	// versa) is a generic form, not a login form.
	if scan.UsernameSelector == "" || scan.PasswordSelector == "" {
		return AuthNoForm
	}

	sig := NewFormSignature(hostOf(pageURL), scan.UsernameName+" "+scan.UsernamePlaceholder)
	creds, cached := a.state.Credentials(sig)
	if !cached {
		creds, err = a.prompter.Prompt(ctx, sig.Domain)
		if err != nil {
			a.logger.Warn("credential prompt failed", zap.String("url", pageURL), zap.Error(err))
			return AuthSubmitFailed
		}
	} else {
		a.logger.Debug("reusing cached credentials", zap.String("domain", sig.Domain))
	}

	before, err := session.CurrentURL(ctx)
	if err != nil || before == "" {
		before = pageURL
	}

	TotalLoginAttempts.Inc()
	if err := a.submit(ctx, session, scan, creds); err != nil {
		a.logger.Warn("login submission failed", zap.String("url", pageURL), zap.Error(err))
		return AuthSubmitFailed
	}
	if err := session.WaitForSettle(ctx, a.settle); err != nil {
		a.logger.Debug("post-submit settle interrupted", zap.Error(err))
	}

	after, err := session.CurrentURL(ctx)
	if err != nil {
		a.logger.Warn("could not read page URL after login", zap.Error(err))
		return AuthSubmitFailed
	}
	if after == before {
		a.logger.Info("login did not change page URL; treating as failed", zap.String("url", pageURL))
		return AuthSubmitFailed
	}

	if !cached {
		a.state.StoreCredentials(sig, creds)
	}
	TotalLoginSuccesses.Inc()
	a.logger.Info("logged in", zap.String("domain", sig.Domain), zap.String("landed_on", after))
	return AuthLoggedIn
}

func (a *FormAuthenticator) submit(ctx context.Context, session PageRenderer, scan *LoginFormScan, creds Credentials) error {
	if err := session.Fill(ctx, scan.UsernameSelector, creds.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := session.Fill(ctx, scan.PasswordSelector, creds.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if scan.SubmitSelector != "" {
		if err := session.Click(ctx, scan.SubmitSelector); err != nil {
			return fmt.Errorf("click submit: %w", err)
		}
		return nil
	}
	// No submit control found; pressing Enter in the password field submits
	// most login forms.
	if err := session.PressKey(ctx, scan.PasswordSelector, "Enter"); err != nil {
		return fmt.Errorf("press enter: %w", err)
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
