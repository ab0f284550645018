package model

import (
	"github.com/jackc/pgtype"
)

const TableCollectionEvents = "collection_events"

// CollectionEvent is one persisted history row. The composite primary key
// (collection_slug, signature, mint) doubles as the idempotency guard for
// redelivered webhook tasks.
type CollectionEvent struct {
	CollectionSlug string `gorm:"primaryKey" json:"collection_slug"`
	Signature      string `gorm:"primaryKey" json:"signature"`
	Mint           string `gorm:"primaryKey" json:"mint"`

	Kind        string `json:"kind"`
	Amount      uint64 `json:"amount"`
	Timestamp   int64  `json:"timestamp"`
	Source      string `json:"source"`
	Description string `json:"description"`

	// Wall clock of the moment this row was written
	SyncTimestamp int64 `json:"sync_timestamp"`

	// Raw upstream payload
	Payload pgtype.JSONB `json:"payload"`
}

func (CollectionEvent) TableName() string {
	return TableCollectionEvents
}
