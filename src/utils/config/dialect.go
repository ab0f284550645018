package config

import (
	"time"

	"github.com/spf13/viper"
)

type Dialect struct {
	// Messaging API url
	ApiUrl string

	// API key of the sending "monitor" wallet
	ApiKey string

	// Max time one messaging call may take
	RequestTimeout time.Duration
}

func setDialectDefaults() {
	viper.SetDefault("Dialect.ApiUrl", "https://dialectapi.to")
	viper.SetDefault("Dialect.ApiKey", "")
	viper.SetDefault("Dialect.RequestTimeout", "10s")
}
