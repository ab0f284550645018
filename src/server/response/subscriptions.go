package response

type DialectSubscription struct {
	DeliveryAddress string `json:"delivery_address"`
}

type DiscordSubscription struct {
	GuildId   string `json:"guild_id"`
	ChannelId string `json:"channel_id"`
}

type Subscriptions struct {
	Success bool                 `json:"success"`
	Dialect *DialectSubscription `json:"dialect"`
	Discord *DiscordSubscription `json:"discord"`
}
