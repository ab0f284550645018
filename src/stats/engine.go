package stats

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
)

const (
	dayWindow   = 24 * time.Hour
	weekWindow  = 7 * 24 * time.Hour
	monthWindow = 30 * 24 * time.Hour
)

// Engine folds canonical events into a collection's aggregate.
// Apply calls mutating one aggregate must be serialized by the caller,
// volume additions are not safe under concurrent partial application.
type Engine struct {
	log *logrus.Entry
	now func() time.Time
}

func NewEngine() (self *Engine) {
	self = new(Engine)
	self.log = logger.NewSublogger("stats")
	self.now = time.Now
	return
}

// WithNow pins the aggregation clock, used in tests
func (self *Engine) WithNow(now func() time.Time) *Engine {
	self.now = now
	return self
}

// Apply folds one event into the aggregate. Only sale and mint events
// whose mint is in the tracked set contribute to volume, every other
// tracked event is history-only and leaves the aggregate untouched.
// Floor is not maintained here, callers recompute it through the
// FloorCalculator when their sync cycle completes.
func (self *Engine) Apply(aggregate *Aggregate, tracked map[string]struct{}, event *events.MarketEvent) {
	if _, isTracked := tracked[event.Mint]; !isTracked {
		return
	}
	if !event.ContributesToVolume() {
		return
	}

	amount := event.DisplayAmount()
	nowInSeconds := self.now().Unix()

	aggregate.TotalVolume += amount
	if event.Timestamp > nowInSeconds-int64(dayWindow.Seconds()) {
		aggregate.DayVolume += amount
	}
	if event.Timestamp > nowInSeconds-int64(weekWindow.Seconds()) {
		aggregate.WeekVolume += amount
	}
	if event.Timestamp > nowInSeconds-int64(monthWindow.Seconds()) {
		aggregate.MonthVolume += amount
	}

	// Strictly greater, so the earlier-seen event wins ties
	if aggregate.AthSale == nil || event.Amount > aggregate.AthSale.Amount {
		athSale := *event
		aggregate.AthSale = &athSale
	}
}
