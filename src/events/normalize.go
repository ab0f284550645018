package events

import (
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
)

// Token standards that describe a single 1-of-1 asset. An empty standard is
// accepted, older payloads don't carry the field.
func isOneOfOneStandard(standard string) bool {
	switch standard {
	case "", "NonFungible", "ProgrammableNonFungible":
		return true
	default:
		return false
	}
}

// Normalize maps one upstream NFT event onto the canonical shape.
// Returns ok=false when the payload does not describe a single-asset
// event: no NFT list, an unusable mint address, or edition semantics.
// Unknown event kinds are passed through untyped.
func Normalize(raw *helius.NFTEvent) (event MarketEvent, ok bool) {
	if raw == nil || len(raw.NFTs) == 0 {
		return
	}

	first := raw.NFTs[0]
	if !IsValidAddress(first.Mint) {
		return
	}

	for _, nft := range raw.NFTs {
		if !isOneOfOneStandard(nft.TokenStandard) {
			return
		}
	}

	nfts := make([]NFTRef, 0, len(raw.NFTs))
	for _, nft := range raw.NFTs {
		nfts = append(nfts, NFTRef{Mint: nft.Mint, Name: nft.Name})
	}

	event = MarketEvent{
		Signature:   raw.Signature,
		Kind:        Kind(raw.Type),
		Mint:        first.Mint,
		Amount:      raw.Amount,
		Timestamp:   raw.Timestamp,
		Source:      raw.Source,
		Description: raw.Description,
		NFTs:        nfts,
	}
	ok = true
	return
}
