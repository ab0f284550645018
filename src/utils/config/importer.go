package config

import (
	"time"

	"github.com/spf13/viper"
)

type Importer struct {
	// Max time between failed retries of a page fetch
	BackoffMaxInterval time.Duration

	// Max time a page fetch is retried before the import fails. 0 means no limit.
	BackoffMaxElapsedTime time.Duration
}

func setImporterDefaults() {
	viper.SetDefault("Importer.BackoffMaxInterval", "30s")
	viper.SetDefault("Importer.BackoffMaxElapsedTime", "5m")
}
