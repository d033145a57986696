package crawler

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Renderer mode names accepted by Config.Renderer.
const (
	RendererChromedp = "chromedp"
	RendererStatic   = "static"
)

// Config holds the settings for one crawl run. It is decoupled from Viper so
// the engine stays testable without configuration plumbing.
type Config struct {
	StartURL       string
	Extension      string
	OutputDir      string
	SameDomainOnly bool
	Threads        int
	UserAgent      string
	Renderer       string
	IdleTimeout    time.Duration
	NavTimeout     time.Duration
	SettleTimeout  time.Duration
	DomainQPS      float64
	MetricsAddr    string

	// BaseDomain is derived from StartURL by the Dispatcher; it is not a
	// configuration knob.
	BaseDomain string
}

// LoadConfig constructs a Config by reading from Viper. All values originate
// from Viper so the crawler can be configured via files, env vars, or CLI
// flags.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		StartURL:       v.GetString("crawler.start_url"),
		Extension:      normalizeExtension(v.GetString("crawler.ext")),
		OutputDir:      v.GetString("crawler.output_dir"),
		SameDomainOnly: v.GetBool("crawler.same_domain_only"),
		Threads:        v.GetInt("crawler.threads"),
		UserAgent:      v.GetString("crawler.user_agent"),
		Renderer:       strings.ToLower(v.GetString("crawler.renderer")),
		IdleTimeout:    v.GetDuration("crawler.idle_timeout"),
		NavTimeout:     v.GetDuration("crawler.nav_timeout"),
		SettleTimeout:  v.GetDuration("crawler.settle_timeout"),
		DomainQPS:      v.GetFloat64("crawler.domain_qps"),
		MetricsAddr:    v.GetString("server.metrics_addr"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for unusable configuration combinations.
func (c Config) Validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("crawler.start_url must be set")
	}
	parsed, err := url.Parse(c.StartURL)
	if err != nil {
		return fmt.Errorf("crawler.start_url is not a valid URL: %w", err)
	}
	if !IsValidLink(c.StartURL) || parsed.Host == "" {
		return fmt.Errorf("crawler.start_url must be an absolute http(s) URL")
	}
	if c.Extension == "" {
		return fmt.Errorf("crawler.ext must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.Threads <= 0 {
		return fmt.Errorf("crawler.threads must be > 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Renderer != RendererChromedp && c.Renderer != RendererStatic {
		return fmt.Errorf("crawler.renderer must be %q or %q", RendererChromedp, RendererStatic)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("crawler.idle_timeout must be > 0")
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("crawler.nav_timeout must be > 0")
	}
	if c.SettleTimeout < 0 {
		return fmt.Errorf("crawler.settle_timeout must be >= 0")
	}
	if c.DomainQPS < 0 {
		return fmt.Errorf("crawler.domain_qps must be >= 0")
	}
	return nil
}

func normalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}
