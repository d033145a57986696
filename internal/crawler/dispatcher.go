package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher exclusively owns the frontier lifecycle: it seeds the start
// URL, spawns the worker pool, and reports run statistics once every worker
// has independently drained out. Termination is emergent: there is no done
// signal, only all workers hitting the idle timeout together once the
// frontier stays empty.
type Dispatcher struct {
	cfg      Config
	factory  RendererFactory
	prompter CredentialPrompter
	robots   RobotsPolicy
	state    *CrawlState
	frontier *Frontier
	logger   *zap.Logger
}

// NewDispatcher derives the crawl's base domain from the start URL; a start
// URL that cannot be parsed is an unrecoverable setup failure.
func NewDispatcher(cfg Config, factory RendererFactory, prompter CredentialPrompter, robots RobotsPolicy, logger *zap.Logger) (*Dispatcher, error) {
	parsed, err := url.Parse(cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url %s: %w", cfg.StartURL, err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("start url %s has no host", cfg.StartURL)
	}
	cfg.BaseDomain = parsed.Host

	return &Dispatcher{
		cfg:      cfg,
		factory:  factory,
		prompter: prompter,
		robots:   robots,
		state:    NewCrawlState(),
		frontier: NewFrontier(),
		logger:   logger,
	}, nil
}

// State exposes the run's shared state, mostly for tests and summaries.
func (d *Dispatcher) State() *CrawlState {
	return d.state
}

// Run executes the crawl and blocks until every worker has exited.
func (d *Dispatcher) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	downloads, err := NewDownloadManager(d.cfg.OutputDir, d.state, d.logger)
	if err != nil {
		return Stats{}, err
	}
	auth := NewFormAuthenticator(d.state, d.prompter, d.cfg.SettleTimeout, d.logger)
	limiter := NewHostLimiter(d.cfg.DomainQPS)

	runID := uuid.NewString()
	d.logger.Info("starting crawl",
		zap.String("run_id", runID),
		zap.String("start_url", d.cfg.StartURL),
		zap.String("ext", d.cfg.Extension),
		zap.String("base_domain", d.cfg.BaseDomain),
		zap.Bool("same_domain_only", d.cfg.SameDomainOnly),
		zap.Int("threads", d.cfg.Threads),
	)

	d.frontier.Enqueue(CrawlTarget{URL: d.cfg.StartURL})

	var pagesRendered atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < d.cfg.Threads; i++ {
		group.Go(func() error {
			workerID := uuid.NewString()[:8]
			logger := d.logger.With(
				zap.String("run_id", runID),
				zap.String("worker_id", workerID),
			)

			session, err := d.factory.NewSession(groupCtx)
			if err != nil {
				// This worker is lost but the rest of the pool keeps going.
				logger.Error("renderer session init failed", zap.Error(err))
				return nil
			}
			defer func() {
				if cerr := session.Close(context.Background()); cerr != nil {
					logger.Warn("renderer session close failed", zap.Error(cerr))
				}
			}()

			w := &Worker{
				cfg:           d.cfg,
				frontier:      d.frontier,
				state:         d.state,
				robots:        d.robots,
				downloads:     downloads,
				auth:          auth,
				limiter:       limiter,
				pagesRendered: &pagesRendered,
				logger:        logger,
			}
			w.Run(groupCtx, session)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		FilesDownloaded: d.state.FilesDownloaded(),
		PagesRendered:   pagesRendered.Load(),
		Elapsed:         time.Since(start),
	}
	d.logger.Info("crawl finished",
		zap.String("run_id", runID),
		zap.Int("files_downloaded", stats.FilesDownloaded),
		zap.Int64("pages_rendered", stats.PagesRendered),
		zap.Int("urls_visited", d.state.VisitedCount()),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}
