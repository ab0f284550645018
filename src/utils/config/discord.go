package config

import (
	"time"

	"github.com/spf13/viper"
)

type Discord struct {
	// Discord REST API url
	ApiUrl string

	// Bot token
	BotToken string

	// Max time one REST call may take
	RequestTimeout time.Duration
}

func setDiscordDefaults() {
	viper.SetDefault("Discord.ApiUrl", "https://discord.com/api/v10")
	viper.SetDefault("Discord.BotToken", "")
	viper.SetDefault("Discord.RequestTimeout", "10s")
}
