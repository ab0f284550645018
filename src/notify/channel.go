package notify

import (
	"context"
)

const (
	ChannelNameDialect = "dialect"
	ChannelNameDiscord = "discord"
)

// Recipient is one resolved delivery target. Identity dedups recipients
// subscribed through multiple matching scopes.
type Recipient struct {
	UserId          string
	DeliveryAddress string
	GuildId         string
	ChannelId       string
}

func (self *Recipient) Identity() string {
	if self.ChannelId != "" {
		return self.GuildId + "/" + self.ChannelId
	}
	return self.DeliveryAddress
}

// Channel is one delivery medium. Implementations resolve their own
// subscriber set and deliver independently of each other.
type Channel interface {
	Name() string
	ResolveRecipients(ctx context.Context, scopes []string) ([]Recipient, error)
	Deliver(ctx context.Context, recipient *Recipient, notification *Notification) error
}
