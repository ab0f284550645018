package model

import (
	"github.com/jackc/pgtype"
)

const TableCollections = "collections"
const TableCollectionMints = "collection_mints"

// Collection is one tracked boutique collection together with its
// aggregate stats. Stats columns are rewritten wholesale, a write is one
// atomic replace of all of them.
type Collection struct {
	Slug string `gorm:"primaryKey" json:"slug"`
	Name string `json:"name"`

	// Query filters, immutable once resolved
	CollectionAddress    string `json:"collection_address"`
	FirstVerifiedCreator string `json:"first_verified_creator"`

	TotalSupply int `json:"total_supply"`

	// Aggregate stats
	TotalVolume float64      `json:"total_volume"`
	MonthVolume float64      `json:"month_volume"`
	WeekVolume  float64      `json:"week_volume"`
	DayVolume   float64      `json:"day_volume"`
	AthSale     pgtype.JSONB `json:"ath_sale"`
	Floor       pgtype.JSONB `json:"floor"`

	// Tracked mints, loaded from the collection_mints table
	MintAddresses []string `gorm:"-" json:"mint_addresses"`
}

func (Collection) TableName() string {
	return TableCollections
}

// HasFilters tells whether the collection can scope an upstream query
func (self *Collection) HasFilters() bool {
	return self.FirstVerifiedCreator != "" || self.CollectionAddress != ""
}

// Tracked returns the mint set for membership checks
func (self *Collection) Tracked() map[string]struct{} {
	tracked := make(map[string]struct{}, len(self.MintAddresses))
	for _, mint := range self.MintAddresses {
		tracked[mint] = struct{}{}
	}
	return tracked
}

// CollectionMint is one tracked mint address, append only
type CollectionMint struct {
	CollectionSlug string `gorm:"primaryKey" json:"collection_slug"`
	Mint           string `gorm:"primaryKey" json:"mint"`
}

func (CollectionMint) TableName() string {
	return TableCollectionMints
}
