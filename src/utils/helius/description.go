package helius

import (
	"fmt"
)

const lamportsPerSol = 1_000_000_000

func shortAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "…" + address[len(address)-4:]
}

func nftName(event *NFTEvent) string {
	if len(event.NFTs) > 0 && event.NFTs[0].Name != "" {
		return event.NFTs[0].Name
	}
	if len(event.NFTs) > 0 {
		return shortAddress(event.NFTs[0].Mint)
	}
	return "an NFT"
}

func solAmount(lamports uint64) string {
	return fmt.Sprintf("%g SOL", float64(lamports)/lamportsPerSol)
}

// HumanReadableTransaction renders one webhook transaction as a short
// notification line. Falls back to the upstream description when the
// event kind has no dedicated wording.
func HumanReadableTransaction(transaction *EnrichedTransaction) string {
	event := transaction.Events.NFT
	if event == nil {
		return transaction.Description
	}

	name := nftName(event)
	switch event.Type {
	case "NFT_SALE":
		return fmt.Sprintf("%s sold for %s", name, solAmount(event.Amount))
	case "NFT_MINT":
		return fmt.Sprintf("%s was minted for %s", name, solAmount(event.Amount))
	case "NFT_LISTING":
		return fmt.Sprintf("%s was listed for %s", name, solAmount(event.Amount))
	case "NFT_CANCEL_LISTING":
		return fmt.Sprintf("Listing of %s was cancelled", name)
	case "NFT_BID":
		return fmt.Sprintf("%s received a bid of %s", name, solAmount(event.Amount))
	case "NFT_BID_CANCELLED":
		return fmt.Sprintf("A bid on %s was cancelled", name)
	case "NFT_AUCTION_CREATED":
		return fmt.Sprintf("An auction of %s started", name)
	case "NFT_AUCTION_UPDATED":
		return fmt.Sprintf("The auction of %s was updated", name)
	case "NFT_AUCTION_CANCELLED":
		return fmt.Sprintf("The auction of %s was cancelled", name)
	case "BURN", "BURN_NFT":
		return fmt.Sprintf("%s was burned", name)
	case "TRANSFER":
		return fmt.Sprintf("%s was transferred", name)
	default:
		if event.Description != "" {
			return event.Description
		}
		return fmt.Sprintf("%s had marketplace activity (%s)", name, event.Type)
	}
}
