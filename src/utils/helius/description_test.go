package helius

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func transaction(kind string, amount uint64) *EnrichedTransaction {
	return &EnrichedTransaction{
		Signature: "sig-1",
		Type:      kind,
		Events: TransactionEvents{
			NFT: &NFTEvent{
				Type:   kind,
				Amount: amount,
				NFTs:   []NFT{{Mint: "So11111111111111111111111111111111111111112", Name: "Piece #1"}},
			},
		},
	}
}

func TestHumanReadableTransaction(t *testing.T) {
	assert.Equal(t, "Piece #1 sold for 2 SOL", HumanReadableTransaction(transaction("NFT_SALE", 2_000_000_000)))
	assert.Equal(t, "Piece #1 was listed for 1.5 SOL", HumanReadableTransaction(transaction("NFT_LISTING", 1_500_000_000)))
	assert.Equal(t, "Listing of Piece #1 was cancelled", HumanReadableTransaction(transaction("NFT_CANCEL_LISTING", 0)))
	assert.Equal(t, "Piece #1 was burned", HumanReadableTransaction(transaction("BURN", 0)))
}

func TestHumanReadableFallsBackToName(t *testing.T) {
	tx := transaction("NFT_SALE", 1_000_000_000)
	tx.Events.NFT.NFTs[0].Name = ""
	assert.Equal(t, "So11…1112 sold for 1 SOL", HumanReadableTransaction(tx))
}

func TestHumanReadableUnknownKind(t *testing.T) {
	tx := transaction("NFT_SOMETHING_NEW", 0)
	assert.Equal(t, "Piece #1 had marketplace activity (NFT_SOMETHING_NEW)", HumanReadableTransaction(tx))
}

func TestHumanReadableWithoutNFTEvent(t *testing.T) {
	tx := &EnrichedTransaction{Description: "raw description"}
	assert.Equal(t, "raw description", HumanReadableTransaction(tx))
}
