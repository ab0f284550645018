package config

import (
	"time"

	"github.com/spf13/viper"
)

type Helius struct {
	// NFT events API url
	ApiUrl string

	// API key appended to every request
	ApiKey string

	// Max events requested per page
	PageLimit int

	// Max time one page request may take
	RequestTimeout time.Duration
}

func setHeliusDefaults() {
	viper.SetDefault("Helius.ApiUrl", "https://api.helius.xyz")
	viper.SetDefault("Helius.ApiKey", "")
	viper.SetDefault("Helius.PageLimit", "1000")
	viper.SetDefault("Helius.RequestTimeout", "30s")
}
