package crawler

import (
	"context"
	"errors"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
)

// Worker drains the frontier, applying the robots gate and the classifier
// decision rules to every dequeued URL, delegating to the download manager
// and the authenticator, and feeding newly discovered links back into the
// frontier. Each worker drives its own renderer session.
type Worker struct {
	cfg           Config
	frontier      *Frontier
	state         *CrawlState
	robots        RobotsPolicy
	downloads     *DownloadManager
	auth          *FormAuthenticator
	limiter       *HostLimiter
	pagesRendered *atomic.Int64
	logger        *zap.Logger
}

// Run consumes frontier items until the idle window elapses or ctx ends. A
// panic during processing terminates only this worker; the rest of the pool
// is unaffected.
func (w *Worker) Run(ctx context.Context, session PageRenderer) {
	defer func() {
		if rec := recover(); rec != nil {
			w.logger.Error("worker terminated by panic",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	for {
		target, err := w.frontier.Dequeue(ctx, w.cfg.IdleTimeout)
		if err != nil {
			if errors.Is(err, ErrFrontierIdle) {
				w.logger.Debug("frontier idle; worker exiting")
			}
			return
		}
		w.process(ctx, session, target)
	}
}

// process applies the decision rules in order; first match wins.
func (w *Worker) process(ctx context.Context, session PageRenderer, target CrawlTarget) {
	log := w.logger.With(zap.String("url", target.URL))

	if !IsValidLink(target.URL) {
		return
	}
	if !w.state.MarkVisited(target.URL) {
		return
	}
	if !w.robots.Allowed(target.URL) {
		log.Info("skipping URL disallowed by robots.txt")
		TotalPolicySkips.Inc()
		return
	}
	if err := w.limiter.Wait(ctx, target.URL); err != nil {
		return
	}

	ext := w.cfg.Extension
	if IsTargetFile(target.URL, ext) {
		w.download(ctx, session, target.URL, log)
		return
	}
	if HasDownloadMarker(target.URL) {
		if HasExtensionSignal(target.URL, ext) {
			log.Info("download endpoint matches target extension; fetching directly")
			w.download(ctx, session, target.URL, log)
		} else {
			log.Debug("skipping download endpoint for unrelated extension")
		}
		return
	}

	log.Info("visiting page")
	finalURL, err := session.Navigate(ctx, target.URL, w.cfg.NavTimeout)
	if err != nil {
		TotalNavigationErrors.Inc()
		if errors.Is(err, ErrNavigationAborted) &&
			HasDownloadMarker(target.URL) && HasExtensionToken(target.URL, ext) {
			log.Info("navigation aborted; attempting direct download instead")
			w.download(ctx, session, target.URL, log)
			return
		}
		log.Warn("navigation failed", zap.Error(err))
		return
	}
	w.pagesRendered.Add(1)
	TotalPagesRendered.Inc()

	switch w.auth.Attempt(ctx, session, finalURL) {
	case AuthLoggedIn:
		log.Info("authenticated; continuing crawl with session cookies")
	case AuthSubmitFailed:
		log.Warn("login attempt failed; continuing unauthenticated")
	case AuthNoForm:
	}

	links, err := session.ExtractLinks(ctx)
	if err != nil {
		log.Warn("link extraction failed", zap.Error(err))
		return
	}
	for _, link := range links {
		if !IsValidLink(link) {
			continue
		}
		if !IsInScope(link, w.cfg.BaseDomain, w.cfg.SameDomainOnly) {
			continue
		}
		if IsTargetFile(link, ext) {
			// Direct file links skip the frontier, so the robots gate has to
			// run here instead of at dequeue.
			if !w.robots.Allowed(link) {
				log.Info("skipping link disallowed by robots.txt", zap.String("link", link))
				TotalPolicySkips.Inc()
				continue
			}
			w.download(ctx, session, link, log)
			continue
		}
		if w.state.Visited(link) {
			continue
		}
		w.frontier.Enqueue(CrawlTarget{
			URL:       link,
			Depth:     target.Depth + 1,
			SourceURL: target.URL,
		})
	}
}

func (w *Worker) download(ctx context.Context, session PageRenderer, rawURL string, log *zap.Logger) {
	n, err := w.downloads.Fetch(ctx, session, rawURL)
	if err != nil {
		log.Warn("download failed", zap.String("file_url", rawURL), zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("downloaded file", zap.String("file_url", rawURL), zap.Int("bytes", n))
	}
}
