package notify

import (
	"fmt"
	"strings"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/utils/discord"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

// Notification carries both renderings of one market event, plain text for
// messaging threads and an embed for Discord channels
type Notification struct {
	Text  string
	Embed *discord.Embed
}

// Scopes returns the subscription scopes a mint's event fans out to,
// the boutique-wide scope plus the mint itself
func Scopes(mint string) []string {
	return []string{model.ScopeBoutique, mint}
}

var embedColors = map[events.Kind]int{
	events.KindSale:          0x2ecc71,
	events.KindMint:          0x2ecc71,
	events.KindListing:       0x3498db,
	events.KindBid:           0x9b59b6,
	events.KindCancelListing: 0x95a5a6,
	events.KindBidCancelled:  0x95a5a6,
}

// NewNotification renders a processed event for delivery
func NewNotification(event *events.MarketEvent) (self *Notification) {
	self = new(Notification)
	self.Text = event.Description

	embed := &discord.Embed{
		Title:       embedTitle(event),
		Description: event.Description,
		Color:       embedColors[event.Kind],
	}
	if event.ContributesToVolume() || event.Kind == events.KindListing || event.Kind == events.KindBid {
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:   "Price",
			Value:  fmt.Sprintf("%.2f SOL", event.DisplayAmount()),
			Inline: true,
		})
	}
	if event.Source != "" {
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:   "Marketplace",
			Value:  event.Source,
			Inline: true,
		})
	}
	self.Embed = embed
	return
}

func embedTitle(event *events.MarketEvent) string {
	name := event.Mint
	if len(event.NFTs) > 0 && event.NFTs[0].Name != "" {
		name = event.NFTs[0].Name
	}

	switch event.Kind {
	case events.KindSale:
		return fmt.Sprintf("%s was sold", name)
	case events.KindMint:
		return fmt.Sprintf("%s was minted", name)
	case events.KindListing:
		return fmt.Sprintf("%s was listed", name)
	case events.KindCancelListing:
		return fmt.Sprintf("Listing of %s was cancelled", name)
	case events.KindBid:
		return fmt.Sprintf("%s received a bid", name)
	case events.KindBidCancelled:
		return fmt.Sprintf("A bid on %s was cancelled", name)
	default:
		kind := strings.ReplaceAll(strings.ToLower(string(event.Kind)), "_", " ")
		return fmt.Sprintf("%s: %s", name, kind)
	}
}
