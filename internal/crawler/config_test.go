package crawler

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validViper() *viper.Viper {
	v := viper.New()
	v.Set("crawler.start_url", "https://x.com/")
	v.Set("crawler.ext", "PDF")
	v.Set("crawler.output_dir", "downloads")
	v.Set("crawler.same_domain_only", true)
	v.Set("crawler.threads", 4)
	v.Set("crawler.user_agent", "test-agent/1.0")
	v.Set("crawler.renderer", "Chromedp")
	v.Set("crawler.idle_timeout", "20s")
	v.Set("crawler.nav_timeout", "30s")
	v.Set("crawler.settle_timeout", "500ms")
	v.Set("crawler.domain_qps", 2.5)
	v.Set("server.metrics_addr", ":9090")
	return v
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(validViper())
	require.NoError(t, err)

	assert.Equal(t, "https://x.com/", cfg.StartURL)
	assert.Equal(t, "pdf", cfg.Extension, "extension is lowercased")
	assert.Equal(t, RendererChromedp, cfg.Renderer, "renderer name is lowercased")
	assert.Equal(t, 20*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleTimeout)
	assert.Equal(t, 2.5, cfg.DomainQPS)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.True(t, cfg.SameDomainOnly)
	assert.Empty(t, cfg.BaseDomain, "base domain is derived later, not configured")
}

func TestLoadConfigStripsExtensionDot(t *testing.T) {
	t.Parallel()

	v := validViper()
	v.Set("crawler.ext", ".docx")
	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "docx", cfg.Extension)
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{"missing start url", func(v *viper.Viper) { v.Set("crawler.start_url", "") }, "start_url"},
		{"relative start url", func(v *viper.Viper) { v.Set("crawler.start_url", "/just/a/path") }, "start_url"},
		{"ftp start url", func(v *viper.Viper) { v.Set("crawler.start_url", "ftp://x.com/") }, "start_url"},
		{"missing extension", func(v *viper.Viper) { v.Set("crawler.ext", "") }, "ext"},
		{"missing output dir", func(v *viper.Viper) { v.Set("crawler.output_dir", "") }, "output_dir"},
		{"zero threads", func(v *viper.Viper) { v.Set("crawler.threads", 0) }, "threads"},
		{"unknown renderer", func(v *viper.Viper) { v.Set("crawler.renderer", "lynx") }, "renderer"},
		{"zero idle timeout", func(v *viper.Viper) { v.Set("crawler.idle_timeout", "0s") }, "idle_timeout"},
		{"negative qps", func(v *viper.Viper) { v.Set("crawler.domain_qps", -1.0) }, "domain_qps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validViper()
			tt.mutate(v)
			_, err := LoadConfig(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
