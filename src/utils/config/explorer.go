package config

import (
	"time"

	"github.com/spf13/viper"
)

type Explorer struct {
	// Etherscan compatible API url. Empty disables ABI lookups
	Url string

	// API key
	ApiKey string

	// Timeout for HTTP requests
	Timeout time.Duration

	// How long fetched ABIs are kept in memory
	CacheTTL time.Duration
}

func setExplorerDefaults() {
	viper.SetDefault("Explorer.Url", "")
	viper.SetDefault("Explorer.ApiKey", "")
	viper.SetDefault("Explorer.Timeout", "30s")
	viper.SetDefault("Explorer.CacheTTL", "1h")
}
