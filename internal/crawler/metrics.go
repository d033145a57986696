package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesRendered tracks pages successfully rendered for link extraction.
	TotalPagesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehound_pages_rendered_total",
		Help: "The total number of pages rendered and scanned for links.",
	})
	// TotalFilesDownloaded tracks files written to the output directory.
	TotalFilesDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehound_files_downloaded_total",
		Help: "The total number of target files downloaded.",
	})
	// TotalDownloadErrors tracks failed byte fetches or file writes.
	TotalDownloadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehound_download_errors_total",
		Help: "The total number of downloads that failed.",
	})
	// TotalPolicySkips tracks URLs discarded by the robots.txt gate.
	TotalPolicySkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehound_policy_skips_total",
		Help: "The total number of URLs skipped due to robots.txt rules.",
	})
	// TotalNavigationErrors tracks page loads that failed or timed out.
	TotalNavigationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehound_navigation_errors_total",
		Help: "The total number of failed page navigations.",
	})
	// TotalLoginAttempts tracks login form submissions.
	TotalLoginAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehound_login_attempts_total",
		Help: "The total number of login form submissions attempted.",
	})
	// TotalLoginSuccesses tracks submissions that landed on a new URL.
	TotalLoginSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehound_login_successes_total",
		Help: "The total number of successful logins.",
	})
)
