package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/one-of-one-tools/marketsync/src/events"
	monitor_tracker "github.com/one-of-one-tools/marketsync/src/utils/monitoring/tracker"
)

type fakeChannel struct {
	name       string
	recipients []Recipient
	resolveErr error
	deliverErr map[string]error

	delivered []string
}

func (self *fakeChannel) Name() string {
	return self.name
}

func (self *fakeChannel) ResolveRecipients(ctx context.Context, scopes []string) ([]Recipient, error) {
	if self.resolveErr != nil {
		return nil, self.resolveErr
	}
	return self.recipients, nil
}

func (self *fakeChannel) Deliver(ctx context.Context, recipient *Recipient, notification *Notification) error {
	if err, isFailing := self.deliverErr[recipient.Identity()]; isFailing {
		return err
	}
	self.delivered = append(self.delivered, recipient.Identity())
	return nil
}

func testNotification() *Notification {
	return NewNotification(&events.MarketEvent{
		Kind:   events.KindSale,
		Mint:   "M1",
		Amount: 2_000_000_000,
	})
}

func TestFanoutIsolation(t *testing.T) {
	resolveErr := errors.New("wallet channel down")
	failing := &fakeChannel{name: "dialect", resolveErr: resolveErr}
	healthy := &fakeChannel{
		name:       "discord",
		recipients: []Recipient{{UserId: "u1", GuildId: "g", ChannelId: "c"}},
	}

	notifier := NewNotifier().
		WithChannel(failing).
		WithChannel(healthy)

	err := notifier.Notify(context.Background(), Scopes("M1"), testNotification())

	assert.ErrorIs(t, err, resolveErr)
	assert.Equal(t, []string{"g/c"}, healthy.delivered)
}

func TestRecipientDeduplication(t *testing.T) {
	// Subscribed via both the boutique scope and the mint scope, still
	// one message
	channel := &fakeChannel{
		name: "dialect",
		recipients: []Recipient{
			{UserId: "u1", DeliveryAddress: "addr-1"},
			{UserId: "u1", DeliveryAddress: "addr-1"},
			{UserId: "u2", DeliveryAddress: "addr-2"},
		},
	}

	notifier := NewNotifier().WithChannel(channel)

	err := notifier.Notify(context.Background(), Scopes("M1"), testNotification())
	assert.NoError(t, err)
	assert.Equal(t, []string{"addr-1", "addr-2"}, channel.delivered)
}

func TestPerRecipientFailuresAreSkipped(t *testing.T) {
	deliverErr := errors.New("thread uncreatable")
	channel := &fakeChannel{
		name: "dialect",
		recipients: []Recipient{
			{UserId: "u1", DeliveryAddress: "addr-1"},
			{UserId: "u2", DeliveryAddress: "addr-2"},
		},
		deliverErr: map[string]error{"addr-1": deliverErr},
	}

	notifier := NewNotifier().WithChannel(channel)

	err := notifier.Notify(context.Background(), Scopes("M1"), testNotification())
	assert.ErrorIs(t, err, deliverErr)
	assert.Equal(t, []string{"addr-2"}, channel.delivered)
}

func TestLastErrorWins(t *testing.T) {
	firstErr := errors.New("first channel error")
	secondErr := errors.New("second channel error")

	notifier := NewNotifier().
		WithChannel(&fakeChannel{name: "dialect", resolveErr: firstErr}).
		WithChannel(&fakeChannel{name: "discord", resolveErr: secondErr})

	err := notifier.Notify(context.Background(), Scopes("M1"), testNotification())
	assert.ErrorIs(t, err, secondErr)
}

func TestChannelFailuresAreCounted(t *testing.T) {
	monitor := monitor_tracker.NewMonitor().
		WithMaxHistorySize(5)

	dialect := &fakeChannel{
		name: ChannelNameDialect,
		recipients: []Recipient{
			{UserId: "u1", DeliveryAddress: "addr-1"},
			{UserId: "u2", DeliveryAddress: "addr-2"},
		},
		deliverErr: map[string]error{"addr-1": errors.New("thread uncreatable")},
	}
	discord := &fakeChannel{name: ChannelNameDiscord, resolveErr: errors.New("guild lookup down")}

	notifier := NewNotifier().
		WithMonitor(monitor).
		WithChannel(dialect).
		WithChannel(discord)

	err := notifier.Notify(context.Background(), Scopes("M1"), testNotification())
	assert.Error(t, err)

	trackerErrors := &monitor.GetReport().Tracker.Errors
	assert.EqualValues(t, 1, trackerErrors.NotifierDialectFailures.Load())
	assert.EqualValues(t, 1, trackerErrors.NotifierDiscordFailures.Load())
}

func TestScopes(t *testing.T) {
	assert.Equal(t, []string{"boutique", "M1"}, Scopes("M1"))
}
