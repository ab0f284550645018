package events

import (
	"encoding/json"

	"github.com/mr-tron/base58"
)

// Kind is the upstream transaction type carried through untyped, so new
// kinds added by the event provider don't break normalization.
type Kind string

const (
	KindSale             Kind = "NFT_SALE"
	KindListing          Kind = "NFT_LISTING"
	KindCancelListing    Kind = "NFT_CANCEL_LISTING"
	KindBid              Kind = "NFT_BID"
	KindBidCancelled     Kind = "NFT_BID_CANCELLED"
	KindMint             Kind = "NFT_MINT"
	KindAuctionCreated   Kind = "NFT_AUCTION_CREATED"
	KindAuctionUpdated   Kind = "NFT_AUCTION_UPDATED"
	KindAuctionCancelled Kind = "NFT_AUCTION_CANCELLED"
	KindBurn             Kind = "BURN"
	KindBurnNFT          Kind = "BURN_NFT"
	KindTransfer         Kind = "TRANSFER"
	KindStake            Kind = "STAKE_TOKEN"
	KindUnstake          Kind = "UNSTAKE_TOKEN"
)

// AllKinds is the allow-list sent with upstream event queries.
var AllKinds = []Kind{
	KindBid,
	KindBidCancelled,
	KindListing,
	KindCancelListing,
	KindSale,
	KindMint,
	KindAuctionCreated,
	KindAuctionUpdated,
	KindAuctionCancelled,
	KindBurn,
	KindBurnNFT,
	KindTransfer,
	KindStake,
	KindUnstake,
}

// LamportsPerSol converts the chain's base unit to the display unit.
const LamportsPerSol = 1_000_000_000

type NFTRef struct {
	Mint string `json:"mint"`
	Name string `json:"name,omitempty"`
}

// MarketEvent is the canonical representation of one marketplace action,
// used uniformly regardless of the upstream payload shape.
// Signature+Mint is the idempotency key.
type MarketEvent struct {
	Signature   string   `json:"signature"`
	Kind        Kind     `json:"type"`
	Mint        string   `json:"mint"`
	Amount      uint64   `json:"amount"`
	Timestamp   int64    `json:"timestamp"`
	Source      string   `json:"source,omitempty"`
	Description string   `json:"description,omitempty"`
	NFTs        []NFTRef `json:"nfts,omitempty"`
}

// DisplayAmount returns the amount in the display unit
func (self *MarketEvent) DisplayAmount() float64 {
	return float64(self.Amount) / LamportsPerSol
}

// ContributesToVolume tells whether this event's amount counts towards
// the collection's volume stats
func (self *MarketEvent) ContributesToVolume() bool {
	return self.Kind == KindSale || self.Kind == KindMint
}

// MarshalBinary makes events publishable to redis
func (self *MarketEvent) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}

// IsValidAddress checks that s decodes as a 32 byte base58 account address
func IsValidAddress(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}
