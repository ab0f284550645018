package config

import (
	"github.com/spf13/viper"
)

type Notifier struct {
	// Name of the redis channel processed events are published to
	RedisChannelName string
}

func setNotifierDefaults() {
	viper.SetDefault("Notifier.RedisChannelName", "marketsync/events")
}
