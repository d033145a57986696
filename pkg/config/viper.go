// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file, environment variables, and command-line flags, providing a unified
// configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/filehound/filehound/internal/logging"
)

// InitConfig initializes the application's configuration using Viper. It
// sets up default values, defines configuration search paths, and enables
// reading from environment variables. Call once at startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.filehound")
	viper.AddConfigPath("/etc/filehound/")

	const defaultUA = "FileHound/1.0 (+https://github.com/filehound/filehound)"
	viper.SetDefault("crawler.ext", "pdf")
	viper.SetDefault("crawler.output_dir", "downloads")
	viper.SetDefault("crawler.same_domain_only", false)
	viper.SetDefault("crawler.threads", 4)
	viper.SetDefault("crawler.user_agent", defaultUA)
	viper.SetDefault("crawler.renderer", "chromedp")
	viper.SetDefault("crawler.idle_timeout", "20s")
	viper.SetDefault("crawler.nav_timeout", "30s")
	viper.SetDefault("crawler.settle_timeout", "500ms")
	viper.SetDefault("crawler.domain_qps", 0.0)
	viper.SetDefault("server.metrics_addr", "")
	viper.SetDefault("logging.level", "INFO")
	viper.SetDefault("logging.file", false)

	viper.SetEnvPrefix("FILEHOUND") // e.g. FILEHOUND_CRAWLER_THREADS=8
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Debug("config file not found; using defaults and environment variables")
		} else {
			logging.L.Error("error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
