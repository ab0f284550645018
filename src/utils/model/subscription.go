package model

const TableDialectSubscriptions = "dialect_subscriptions"
const TableDiscordSubscriptions = "discord_subscriptions"

// ScopeBoutique subscribes to activity of all tracked boutique collections.
// Any other scope value is a single mint address.
const ScopeBoutique = "boutique"

// DialectSubscription delivers notifications to a wallet-linked
// messaging thread. One setting per user per scope.
type DialectSubscription struct {
	UserId          string `gorm:"primaryKey" json:"user_id"`
	Scope           string `gorm:"primaryKey" json:"scope"`
	DeliveryAddress string `json:"delivery_address"`
}

func (DialectSubscription) TableName() string {
	return TableDialectSubscriptions
}

// DiscordSubscription delivers notifications to a guild channel
type DiscordSubscription struct {
	UserId    string `gorm:"primaryKey" json:"user_id"`
	Scope     string `gorm:"primaryKey" json:"scope"`
	GuildId   string `json:"guild_id"`
	ChannelId string `json:"channel_id"`
}

func (DiscordSubscription) TableName() string {
	return TableDiscordSubscriptions
}
