package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/one-of-one-tools/marketsync/src/utils/helius"
)

const (
	mintA = "So11111111111111111111111111111111111111112"
	mintB = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
)

func saleEvent(mint string) *helius.NFTEvent {
	return &helius.NFTEvent{
		Type:        "NFT_SALE",
		Source:      "MAGIC_EDEN",
		Signature:   "sig-1",
		Amount:      2_000_000_000,
		Timestamp:   1700000000,
		Description: "sold",
		NFTs: []helius.NFT{
			{Mint: mint, Name: "Piece #1", TokenStandard: "NonFungible"},
		},
	}
}

func TestNormalizeSale(t *testing.T) {
	event, ok := Normalize(saleEvent(mintA))
	assert.True(t, ok)
	assert.Equal(t, KindSale, event.Kind)
	assert.Equal(t, mintA, event.Mint)
	assert.Equal(t, uint64(2_000_000_000), event.Amount)
	assert.Equal(t, "sig-1", event.Signature)
	assert.Len(t, event.NFTs, 1)
	assert.Equal(t, 2.0, event.DisplayAmount())
	assert.True(t, event.ContributesToVolume())
}

func TestNormalizeRejectsNil(t *testing.T) {
	_, ok := Normalize(nil)
	assert.False(t, ok)
}

func TestNormalizeRejectsMissingNFTs(t *testing.T) {
	raw := saleEvent(mintA)
	raw.NFTs = nil
	_, ok := Normalize(raw)
	assert.False(t, ok)
}

func TestNormalizeRejectsInvalidMint(t *testing.T) {
	raw := saleEvent("not-a-mint")
	_, ok := Normalize(raw)
	assert.False(t, ok)
}

func TestNormalizeRejectsEditions(t *testing.T) {
	raw := saleEvent(mintA)
	raw.NFTs[0].TokenStandard = "FungibleAsset"
	_, ok := Normalize(raw)
	assert.False(t, ok)
}

func TestNormalizeAcceptsEmptyStandard(t *testing.T) {
	raw := saleEvent(mintA)
	raw.NFTs[0].TokenStandard = ""
	_, ok := Normalize(raw)
	assert.True(t, ok)
}

func TestNormalizePassesUnknownKindsThrough(t *testing.T) {
	raw := saleEvent(mintB)
	raw.Type = "NFT_SOMETHING_NEW"
	event, ok := Normalize(raw)
	assert.True(t, ok)
	assert.Equal(t, Kind("NFT_SOMETHING_NEW"), event.Kind)
	assert.False(t, event.ContributesToVolume())
}

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress(mintA))
	assert.True(t, IsValidAddress(mintB))
	assert.False(t, IsValidAddress(""))
	assert.False(t, IsValidAddress("0x0123456789abcdef"))
	assert.False(t, IsValidAddress("abc"))
}
