package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgtype"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/stats"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

var ErrCollectionNotFound = errors.New("collection not found")

// Store is the persistence access layer. Every method returns an explicit
// error, nothing panics across this boundary.
type Store struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewStore() (self *Store) {
	self = new(Store)
	self.log = logger.NewSublogger("store")
	return
}

func (self *Store) WithDB(db *gorm.DB) *Store {
	self.db = db
	return self
}

func (self *Store) GetCollection(ctx context.Context, slug string) (collection *model.Collection, err error) {
	collection = new(model.Collection)
	err = self.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(collection).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrCollectionNotFound
		}
		return nil, err
	}

	err = self.loadMints(ctx, collection)
	if err != nil {
		return nil, err
	}
	return
}

// GetCollectionForMint resolves which collection tracks the given mint.
// Returns (nil, nil) when no collection does, an expected outcome on the
// broadly subscribed webhook path.
func (self *Store) GetCollectionForMint(ctx context.Context, mint string) (collection *model.Collection, err error) {
	var mintRow model.CollectionMint
	err = self.db.WithContext(ctx).
		Where("mint = ?", mint).
		First(&mintRow).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return self.GetCollection(ctx, mintRow.CollectionSlug)
}

func (self *Store) loadMints(ctx context.Context, collection *model.Collection) (err error) {
	var mints []model.CollectionMint
	err = self.db.WithContext(ctx).
		Where("collection_slug = ?", collection.Slug).
		Order("mint ASC").
		Find(&mints).
		Error
	if err != nil {
		return
	}

	collection.MintAddresses = make([]string, 0, len(mints))
	for _, mint := range mints {
		collection.MintAddresses = append(collection.MintAddresses, mint.Mint)
	}
	return
}

// SetFilters caches the resolved query filters. Filters are immutable once
// set, only empty columns are filled in.
func (self *Store) SetFilters(ctx context.Context, slug, collectionAddress, firstVerifiedCreator string, totalSupply int) (err error) {
	updates := map[string]interface{}{
		"total_supply": totalSupply,
	}
	if collectionAddress != "" {
		updates["collection_address"] = gorm.Expr(
			"CASE WHEN collection_address = '' THEN ? ELSE collection_address END", collectionAddress)
	}
	if firstVerifiedCreator != "" {
		updates["first_verified_creator"] = gorm.Expr(
			"CASE WHEN first_verified_creator = '' THEN ? ELSE first_verified_creator END", firstVerifiedCreator)
	}

	return self.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("slug = ?", slug).
		Updates(updates).
		Error
}

// AddMintsAsTracked appends mints to the tracked set, existing rows are kept
func (self *Store) AddMintsAsTracked(ctx context.Context, slug string, mints []string) (err error) {
	if len(mints) == 0 {
		return
	}

	rows := make([]model.CollectionMint, 0, len(mints))
	for _, mint := range mints {
		rows = append(rows, model.CollectionMint{CollectionSlug: slug, Mint: mint})
	}

	return self.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).
		Error
}

// AddEvent persists one history row. Returns inserted=false when the
// (slug, signature, mint) key already exists, which is how redelivered
// tasks are detected.
func (self *Store) AddEvent(ctx context.Context, slug string, event *events.MarketEvent, raw []byte) (inserted bool, err error) {
	payload := pgtype.JSONB{}
	if len(raw) > 0 {
		err = payload.Set(raw)
	} else {
		err = payload.Set(nil)
	}
	if err != nil {
		return
	}

	row := model.CollectionEvent{
		CollectionSlug: slug,
		Signature:      event.Signature,
		Mint:           event.Mint,
		Kind:           string(event.Kind),
		Amount:         event.Amount,
		Timestamp:      event.Timestamp,
		Source:         event.Source,
		Description:    event.Description,
		SyncTimestamp:  time.Now().Unix(),
		Payload:        payload,
	}

	result := self.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		err = result.Error
		return
	}

	inserted = result.RowsAffected > 0
	return
}

// RemoveEvent deletes one history row. Undoes the dedup guard when the
// matching aggregate write fails, so a redelivered task gets a clean retry
// instead of a duplicate no-op.
func (self *Store) RemoveEvent(ctx context.Context, slug, signature, mint string) (err error) {
	return self.db.WithContext(ctx).
		Where("collection_slug = ? AND signature = ? AND mint = ?", slug, signature, mint).
		Delete(&model.CollectionEvent{}).
		Error
}

// SetStats replaces the collection's aggregate in one atomic write
func (self *Store) SetStats(ctx context.Context, slug string, aggregate *stats.Aggregate) (err error) {
	athSale, err := toJSONB(aggregate.AthSale)
	if err != nil {
		return
	}
	floor, err := toJSONB(aggregate.Floor)
	if err != nil {
		return
	}

	return self.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("slug = ?", slug).
		Updates(map[string]interface{}{
			"total_volume": aggregate.TotalVolume,
			"month_volume": aggregate.MonthVolume,
			"week_volume":  aggregate.WeekVolume,
			"day_volume":   aggregate.DayVolume,
			"ath_sale":     athSale,
			"floor":        floor,
		}).
		Error
}

// Aggregate decodes the stats columns of a loaded collection
func (self *Store) Aggregate(collection *model.Collection) (aggregate *stats.Aggregate, err error) {
	aggregate = &stats.Aggregate{
		TotalVolume: collection.TotalVolume,
		MonthVolume: collection.MonthVolume,
		WeekVolume:  collection.WeekVolume,
		DayVolume:   collection.DayVolume,
	}

	if collection.AthSale.Status == pgtype.Present {
		athSale := new(events.MarketEvent)
		err = json.Unmarshal(collection.AthSale.Bytes, athSale)
		if err != nil {
			return nil, err
		}
		aggregate.AthSale = athSale
	}

	if collection.Floor.Status == pgtype.Present {
		floor := new(stats.Floor)
		err = json.Unmarshal(collection.Floor.Bytes, floor)
		if err != nil {
			return nil, err
		}
		aggregate.Floor = floor
	}

	return
}

func toJSONB(value interface{}) (out pgtype.JSONB, err error) {
	switch v := value.(type) {
	case *events.MarketEvent:
		if v == nil {
			err = out.Set(nil)
			return
		}
	case *stats.Floor:
		if v == nil {
			err = out.Set(nil)
			return
		}
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	err = out.Set(encoded)
	return
}

func (self *Store) GetDialectSubscribers(ctx context.Context, scopes []string) (subscribers []model.DialectSubscription, err error) {
	err = self.db.WithContext(ctx).
		Where("scope IN ?", scopes).
		Find(&subscribers).
		Error
	return
}

func (self *Store) GetDiscordSubscribers(ctx context.Context, scopes []string) (subscribers []model.DiscordSubscription, err error) {
	err = self.db.WithContext(ctx).
		Where("scope IN ?", scopes).
		Find(&subscribers).
		Error
	return
}

func (self *Store) GetDialectSubscriptionsByUser(ctx context.Context, userId string) (subscriptions []model.DialectSubscription, err error) {
	err = self.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Find(&subscriptions).
		Error
	return
}

func (self *Store) GetDiscordSubscriptionsByUser(ctx context.Context, userId string) (subscriptions []model.DiscordSubscription, err error) {
	err = self.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Find(&subscriptions).
		Error
	return
}

func (self *Store) SetDialectSubscription(ctx context.Context, subscription *model.DialectSubscription) (err error) {
	return self.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "scope"}},
			UpdateAll: true,
		}).
		Create(subscription).
		Error
}

func (self *Store) RemoveDialectSubscription(ctx context.Context, userId, scope string) (err error) {
	return self.db.WithContext(ctx).
		Where("user_id = ? AND scope = ?", userId, scope).
		Delete(&model.DialectSubscription{}).
		Error
}

func (self *Store) SetDiscordSubscription(ctx context.Context, subscription *model.DiscordSubscription) (err error) {
	return self.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "scope"}},
			UpdateAll: true,
		}).
		Create(subscription).
		Error
}

func (self *Store) RemoveDiscordSubscription(ctx context.Context, userId, scope string) (err error) {
	return self.db.WithContext(ctx).
		Where("user_id = ? AND scope = ?", userId, scope).
		Delete(&model.DiscordSubscription{}).
		Error
}
