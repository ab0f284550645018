package stats

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

// FloorCalculator recomputes the floor from persisted history: for every
// tracked mint the most recent of (listing, cancel, sale) decides whether a
// listing is still active, the cheapest active listing is the floor.
type FloorCalculator struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewFloorCalculator() (self *FloorCalculator) {
	self = new(FloorCalculator)
	self.log = logger.NewSublogger("floor")
	return
}

func (self *FloorCalculator) WithDB(db *gorm.DB) *FloorCalculator {
	self.db = db
	return self
}

// Recalculate returns nil without error when no listing is active
func (self *FloorCalculator) Recalculate(ctx context.Context, collection *model.Collection) (floor *Floor, err error) {
	var latest []model.CollectionEvent

	err = self.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (mint) *
			FROM `+model.TableCollectionEvents+`
			WHERE collection_slug = ?
			AND kind IN (?, ?, ?)
			ORDER BY mint, timestamp DESC, sync_timestamp DESC`,
			collection.Slug,
			string(events.KindListing), string(events.KindCancelListing), string(events.KindSale)).
		Scan(&latest).
		Error
	if err != nil {
		return
	}

	tracked := collection.Tracked()
	for i := range latest {
		row := &latest[i]
		if row.Kind != string(events.KindListing) || row.Amount == 0 {
			continue
		}
		if _, isTracked := tracked[row.Mint]; !isTracked {
			continue
		}
		if floor != nil && row.Amount >= floor.Amount {
			continue
		}

		floor = &Floor{
			Listing: events.MarketEvent{
				Signature:   row.Signature,
				Kind:        events.Kind(row.Kind),
				Mint:        row.Mint,
				Amount:      row.Amount,
				Timestamp:   row.Timestamp,
				Source:      row.Source,
				Description: row.Description,
			},
			Amount: row.Amount,
		}
	}

	return
}
