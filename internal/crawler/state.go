package crawler

import "sync"

// CrawlState is the shared mutable state of one crawl run: the visited set,
// the set of successfully downloaded URLs, and the credential cache. It is
// constructed once by the Dispatcher and shared by reference across workers.
// A single mutex guards every check-then-act sequence; none of these
// structures sit on a hot numeric path.
type CrawlState struct {
	mu      sync.Mutex
	visited map[string]struct{}
	found   map[string]struct{}
	creds   map[FormSignature]Credentials
}

// NewCrawlState returns empty state for a fresh run.
func NewCrawlState() *CrawlState {
	return &CrawlState{
		visited: make(map[string]struct{}),
		found:   make(map[string]struct{}),
		creds:   make(map[FormSignature]Credentials),
	}
}

// MarkVisited records url as processed and reports whether it was new. The
// membership check and insert are one atomic step so two workers can never
// both claim the same URL.
func (s *CrawlState) MarkVisited(url string) bool {
	if url == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visited[url]; ok {
		return false
	}
	s.visited[url] = struct{}{}
	return true
}

// Visited reports whether url has already been claimed by a worker.
func (s *CrawlState) Visited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visited[url]
	return ok
}

// VisitedCount returns the number of processed URLs.
func (s *CrawlState) VisitedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}

// ReserveDownload atomically claims url for downloading. It returns false if
// the URL was already downloaded or is being downloaded by another worker.
func (s *CrawlState) ReserveDownload(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.found[url]; ok {
		return false
	}
	s.found[url] = struct{}{}
	return true
}

// ReleaseDownload drops a reservation whose download did not complete, so
// the URL is not counted as a success.
func (s *CrawlState) ReleaseDownload(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.found, url)
}

// FilesDownloaded returns the number of URLs downloaded so far.
func (s *CrawlState) FilesDownloaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.found)
}

// Credentials looks up cached credentials for sig.
func (s *CrawlState) Credentials(sig FormSignature) (Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.creds[sig]
	return creds, ok
}

// StoreCredentials caches credentials for sig. Entries are never evicted for
// the lifetime of the run.
func (s *CrawlState) StoreCredentials(sig FormSignature, creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[sig] = creds
}
