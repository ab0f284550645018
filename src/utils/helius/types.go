package helius

// Payloads of the NFT events API and of the webhook it pushes.
// Only fields this service reads are mapped, the raw payload is carried
// through the task queue untouched.

type NFT struct {
	Mint          string `json:"mint"`
	Name          string `json:"name,omitempty"`
	TokenStandard string `json:"tokenStandard,omitempty"`
}

type NFTEvent struct {
	Type        string `json:"type"`
	Source      string `json:"source,omitempty"`
	Signature   string `json:"signature"`
	Amount      uint64 `json:"amount"`
	Timestamp   int64  `json:"timestamp"`
	SaleType    string `json:"saleType,omitempty"`
	Buyer       string `json:"buyer,omitempty"`
	Seller      string `json:"seller,omitempty"`
	Description string `json:"description,omitempty"`
	NFTs        []NFT  `json:"nfts"`
}

type TransactionEvents struct {
	NFT *NFTEvent `json:"nft,omitempty"`
}

// EnrichedTransaction is one webhook-delivered transaction
type EnrichedTransaction struct {
	Signature   string            `json:"signature"`
	Type        string            `json:"type"`
	Source      string            `json:"source,omitempty"`
	Timestamp   int64             `json:"timestamp"`
	Description string            `json:"description,omitempty"`
	Events      TransactionEvents `json:"events"`
}

type CollectionFilters struct {
	FirstVerifiedCreator      []string `json:"firstVerifiedCreator,omitempty"`
	VerifiedCollectionAddress []string `json:"verifiedCollectionAddress,omitempty"`
}

// EventsQuery scopes one paginated events request
type EventsQuery struct {
	Types                []string          `json:"types"`
	NFTCollectionFilters CollectionFilters `json:"nftCollectionFilters"`
}

type queryOptions struct {
	Limit           int    `json:"limit"`
	PaginationToken string `json:"paginationToken,omitempty"`
}

type eventsRequest struct {
	Query   EventsQuery  `json:"query"`
	Options queryOptions `json:"options"`
}

type eventsResponse struct {
	Result          []NFTEvent `json:"result"`
	PaginationToken string     `json:"paginationToken,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// EventsPage is one page of upstream history.
// NextCursor is opaque and single use, empty means the history is exhausted.
type EventsPage struct {
	Events     []NFTEvent
	NextCursor string
}

type creator struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

type collectionRef struct {
	Key      string `json:"key"`
	Verified bool   `json:"verified"`
}

type onChainMetadata struct {
	Collection *collectionRef `json:"collection,omitempty"`
	Creators   []creator      `json:"creators,omitempty"`
}

type tokenMetadata struct {
	Account         string           `json:"account"`
	OnChainMetadata *onChainMetadata `json:"onChainMetadata,omitempty"`
}

type tokenMetadataRequest struct {
	MintAccounts []string `json:"mintAccounts"`
}
