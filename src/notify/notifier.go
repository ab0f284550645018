package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/monitoring"
)

// Notifier fans one notification out to every channel's subscribers.
// Channels are isolated, a failure in one never blocks another.
type Notifier struct {
	channels []Channel
	monitor  monitoring.Monitor
	log      *logrus.Entry
}

func NewNotifier() (self *Notifier) {
	self = new(Notifier)
	self.log = logger.NewSublogger("notifier")
	return
}

func (self *Notifier) WithChannel(channel Channel) *Notifier {
	self.channels = append(self.channels, channel)
	return self
}

func (self *Notifier) WithMonitor(monitor monitoring.Monitor) *Notifier {
	self.monitor = monitor
	return self
}

// Notify delivers to every recipient of every channel. Each recipient is
// delivered to at most once per channel, a failed delivery is logged and
// skipped. Returns the last error encountered, nil when everything went out.
func (self *Notifier) Notify(ctx context.Context, scopes []string, notification *Notification) (lastErr error) {
	for _, channel := range self.channels {
		recipients, err := channel.ResolveRecipients(ctx, scopes)
		if err != nil {
			self.log.WithError(err).
				WithField("channel", channel.Name()).
				Error("Failed to resolve recipients")
			self.countFailure(channel.Name())
			lastErr = err
			continue
		}

		delivered := make(map[string]struct{}, len(recipients))
		for i := range recipients {
			recipient := &recipients[i]
			if _, isDone := delivered[recipient.Identity()]; isDone {
				continue
			}
			delivered[recipient.Identity()] = struct{}{}

			err = channel.Deliver(ctx, recipient, notification)
			if err != nil {
				self.log.WithError(err).
					WithField("channel", channel.Name()).
					WithField("user_id", recipient.UserId).
					Error("Failed to deliver notification")
				self.countFailure(channel.Name())
				lastErr = err
			}
		}
	}
	return
}

func (self *Notifier) countFailure(channelName string) {
	if self.monitor == nil {
		return
	}
	errors := &self.monitor.GetReport().Tracker.Errors
	switch channelName {
	case ChannelNameDialect:
		errors.NotifierDialectFailures.Inc()
	case ChannelNameDiscord:
		errors.NotifierDiscordFailures.Inc()
	}
}
