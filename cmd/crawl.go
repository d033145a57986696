package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/filehound/filehound/internal/crawler"
	"github.com/filehound/filehound/internal/logging"
	"github.com/filehound/filehound/internal/prompt"
	"github.com/filehound/filehound/internal/renderer"
)

// sessionFactory is what the crawl command needs from a renderer package:
// the engine's factory contract plus process-level teardown.
type sessionFactory interface {
	crawler.RendererFactory
	Close()
}

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a website and download matching files",
		Long: `Starts a concurrent crawl from --start-url, following in-scope links
and downloading every file whose URL matches --ext. The crawl ends once all
workers have been idle for the configured window.`,

		RunE: runCrawlCommand,
	}

	cmd.Flags().String("start-url", "", "seed URL to start crawling from (required)")
	cmd.Flags().String("ext", "pdf", "target file extension (e.g. pdf, csv)")
	cmd.Flags().String("output-dir", "downloads", "directory downloaded files are written to")
	cmd.Flags().Bool("same-domain-only", false, "only follow links whose host contains the seed's domain")
	cmd.Flags().Int("threads", 4, "number of concurrent crawl workers")
	cmd.Flags().String("renderer", "chromedp", "page renderer: chromedp or static")
	cmd.Flags().Duration("idle-timeout", 20*time.Second, "how long an idle worker waits before exiting")
	cmd.Flags().Duration("nav-timeout", 30*time.Second, "page navigation timeout")
	cmd.Flags().String("user-agent", "", "override the User-Agent header")
	cmd.Flags().Float64("domain-qps", 0, "per-host request budget, 0 disables")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, empty disables")

	bindFlag("crawler.start_url", cmd.Flags().Lookup("start-url"))
	bindFlag("crawler.ext", cmd.Flags().Lookup("ext"))
	bindFlag("crawler.output_dir", cmd.Flags().Lookup("output-dir"))
	bindFlag("crawler.same_domain_only", cmd.Flags().Lookup("same-domain-only"))
	bindFlag("crawler.threads", cmd.Flags().Lookup("threads"))
	bindFlag("crawler.renderer", cmd.Flags().Lookup("renderer"))
	bindFlag("crawler.idle_timeout", cmd.Flags().Lookup("idle-timeout"))
	bindFlag("crawler.nav_timeout", cmd.Flags().Lookup("nav-timeout"))
	bindFlag("crawler.user_agent", cmd.Flags().Lookup("user-agent"))
	bindFlag("crawler.domain_qps", cmd.Flags().Lookup("domain-qps"))
	bindFlag("server.metrics_addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}
	logger := logging.L

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	factory, err := buildRendererFactory(cfg, logger)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	defer factory.Close()

	robots := crawler.NewRobotsGate(ctx, cfg.StartURL, cfg.UserAgent, nil, logger)
	prompter := prompt.NewTerminal(os.Stdin, os.Stderr)

	dispatcher, err := crawler.NewDispatcher(cfg, factory, prompter, robots, logger)
	if err != nil {
		return err
	}
	stats, err := dispatcher.Run(ctx)
	if err != nil {
		return fmt.Errorf("run crawl: %w", err)
	}

	fmt.Printf("\nDone! Downloaded %d .%s file(s) in %s.\n",
		stats.FilesDownloaded, cfg.Extension, stats.Elapsed.Round(time.Millisecond))
	return nil
}

func buildRendererFactory(cfg crawler.Config, logger *zap.Logger) (sessionFactory, error) {
	switch cfg.Renderer {
	case crawler.RendererStatic:
		return renderer.NewStaticFactory(cfg.UserAgent, cfg.NavTimeout, logger), nil
	case crawler.RendererChromedp:
		return renderer.NewChromedpFactory(cfg.UserAgent, logger), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}
}

func newMetricsServer(addr string) *http.Server {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
