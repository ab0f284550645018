package stats

import (
	"github.com/one-of-one-tools/marketsync/src/events"
)

// Floor is the best currently-active listing among a collection's
// tracked mints
type Floor struct {
	Listing events.MarketEvent `json:"listing"`
	Amount  uint64             `json:"amount"`
}

// Aggregate is the rolled up statistics of one collection. Volumes are in
// the display unit. The trailing windows are measured relative to
// aggregation time, so recomputing against the same history at a later
// time yields different window figures.
type Aggregate struct {
	TotalVolume float64             `json:"total_volume"`
	MonthVolume float64             `json:"month_volume"`
	WeekVolume  float64             `json:"week_volume"`
	DayVolume   float64             `json:"day_volume"`
	AthSale     *events.MarketEvent `json:"ath_sale,omitempty"`
	Floor       *Floor              `json:"floor,omitempty"`
}
