package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/utils/discord"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

type DiscordSubscriberSource interface {
	GetDiscordSubscribers(ctx context.Context, scopes []string) ([]model.DiscordSubscription, error)
}

type DiscordMessenger interface {
	GetChannel(ctx context.Context, guildId, channelId string) (*discord.Channel, error)
	SendEmbed(ctx context.Context, channelId string, embed *discord.Embed) error
}

// DiscordChannel delivers embeds to subscribed guild channels
type DiscordChannel struct {
	subscribers DiscordSubscriberSource
	messenger   DiscordMessenger
	log         *logrus.Entry
}

func NewDiscordChannel() (self *DiscordChannel) {
	self = new(DiscordChannel)
	self.log = logger.NewSublogger("discord-channel")
	return
}

func (self *DiscordChannel) WithSubscriberSource(subscribers DiscordSubscriberSource) *DiscordChannel {
	self.subscribers = subscribers
	return self
}

func (self *DiscordChannel) WithMessenger(messenger DiscordMessenger) *DiscordChannel {
	self.messenger = messenger
	return self
}

func (self *DiscordChannel) Name() string {
	return ChannelNameDiscord
}

func (self *DiscordChannel) ResolveRecipients(ctx context.Context, scopes []string) (recipients []Recipient, err error) {
	subscriptions, err := self.subscribers.GetDiscordSubscribers(ctx, scopes)
	if err != nil {
		return
	}

	recipients = make([]Recipient, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		recipients = append(recipients, Recipient{
			UserId:    subscription.UserId,
			GuildId:   subscription.GuildId,
			ChannelId: subscription.ChannelId,
		})
	}
	return
}

func (self *DiscordChannel) Deliver(ctx context.Context, recipient *Recipient, notification *Notification) (err error) {
	// Verifies the channel still belongs to the subscribed guild before
	// posting into it
	channel, err := self.messenger.GetChannel(ctx, recipient.GuildId, recipient.ChannelId)
	if err != nil {
		return
	}
	return self.messenger.SendEmbed(ctx, channel.Id, notification.Embed)
}
