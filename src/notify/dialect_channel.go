package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/utils/dialect"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

type DialectSubscriberSource interface {
	GetDialectSubscribers(ctx context.Context, scopes []string) ([]model.DialectSubscription, error)
}

type DialectMessenger interface {
	FindOrCreateThread(ctx context.Context, deliveryAddress string) (*dialect.Thread, bool, error)
	SendMessage(ctx context.Context, thread *dialect.Thread, text string) error
}

// DialectChannel delivers plain text messages to subscriber wallets over
// Dialect threads
type DialectChannel struct {
	subscribers DialectSubscriberSource
	messenger   DialectMessenger
	log         *logrus.Entry
}

func NewDialectChannel() (self *DialectChannel) {
	self = new(DialectChannel)
	self.log = logger.NewSublogger("dialect-channel")
	return
}

func (self *DialectChannel) WithSubscriberSource(subscribers DialectSubscriberSource) *DialectChannel {
	self.subscribers = subscribers
	return self
}

func (self *DialectChannel) WithMessenger(messenger DialectMessenger) *DialectChannel {
	self.messenger = messenger
	return self
}

func (self *DialectChannel) Name() string {
	return ChannelNameDialect
}

func (self *DialectChannel) ResolveRecipients(ctx context.Context, scopes []string) (recipients []Recipient, err error) {
	subscriptions, err := self.subscribers.GetDialectSubscribers(ctx, scopes)
	if err != nil {
		return
	}

	recipients = make([]Recipient, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		recipients = append(recipients, Recipient{
			UserId:          subscription.UserId,
			DeliveryAddress: subscription.DeliveryAddress,
		})
	}
	return
}

func (self *DialectChannel) Deliver(ctx context.Context, recipient *Recipient, notification *Notification) (err error) {
	thread, isNew, err := self.messenger.FindOrCreateThread(ctx, recipient.DeliveryAddress)
	if err != nil {
		return
	}
	if isNew {
		self.log.WithField("address", recipient.DeliveryAddress).Debug("Created new thread")
	}
	return self.messenger.SendMessage(ctx, thread, notification.Text)
}
