package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeSite is the canned website shared by all fake sessions in a test.
type fakeSite struct {
	mu    sync.Mutex
	pages map[string]fakePage
	files map[string][]byte
	gets  []string
}

type fakePage struct {
	finalURL string
	links    []string
	scan     *LoginFormScan
	navErr   error
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages: make(map[string]fakePage),
		files: make(map[string][]byte),
	}
}

func (s *fakeSite) recordGet(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = append(s.gets, url)
}

func (s *fakeSite) getCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, g := range s.gets {
		if g == url {
			n++
		}
	}
	return n
}

type fakeFactory struct {
	site     *fakeSite
	mu       sync.Mutex
	sessions int
}

func (f *fakeFactory) NewSession(context.Context) (PageRenderer, error) {
	f.mu.Lock()
	f.sessions++
	f.mu.Unlock()
	return &fakeSession{site: f.site}, nil
}

// fakeSession serves canned pages and file bytes. It satisfies PageRenderer
// without a browser; form interaction is a no-op.
type fakeSession struct {
	site       *fakeSite
	currentURL string
}

func (s *fakeSession) Navigate(_ context.Context, url string, _ time.Duration) (string, error) {
	page, ok := s.site.pages[url]
	if !ok {
		return "", fmt.Errorf("no canned page for %s", url)
	}
	if page.navErr != nil {
		return "", page.navErr
	}
	final := page.finalURL
	if final == "" {
		final = url
	}
	s.currentURL = final
	return final, nil
}

func (s *fakeSession) CurrentURL(context.Context) (string, error) {
	return s.currentURL, nil
}

func (s *fakeSession) ExtractLinks(context.Context) ([]string, error) {
	page, ok := s.site.pages[s.currentURL]
	if !ok {
		return nil, fmt.Errorf("no page loaded")
	}
	return page.links, nil
}

func (s *fakeSession) RawGet(_ context.Context, url string) ([]byte, error) {
	s.site.recordGet(url)
	body, ok := s.site.files[url]
	if !ok {
		return nil, fmt.Errorf("no canned bytes for %s", url)
	}
	return body, nil
}

func (s *fakeSession) QueryLoginForm(context.Context) (*LoginFormScan, error) {
	page := s.site.pages[s.currentURL]
	if page.scan == nil {
		return &LoginFormScan{}, nil
	}
	return page.scan, nil
}

func (s *fakeSession) Fill(context.Context, string, string) error     { return nil }
func (s *fakeSession) Click(context.Context, string) error            { return nil }
func (s *fakeSession) PressKey(context.Context, string, string) error { return nil }

func (s *fakeSession) WaitForSettle(context.Context, time.Duration) error { return nil }
func (s *fakeSession) Interactive() bool                                  { return true }
func (s *fakeSession) Close(context.Context) error                       { return nil }
