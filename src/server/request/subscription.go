package request

const (
	ChannelDialect = "dialect"
	ChannelDiscord = "discord"
)

type SetSubscription struct {
	// dialect | discord
	Channel string `json:"channel" binding:"required"`

	// false removes the subscription
	Enabled *bool `json:"enabled" binding:"required"`

	// Wallet the dialect thread is created with
	DeliveryAddress string `json:"delivery_address"`

	// Discord target
	GuildId   string `json:"guild_id"`
	ChannelId string `json:"channel_id"`

	// Mint for per-NFT subscriptions, ignored on the boutique path
	Mint string `json:"mint"`
}
