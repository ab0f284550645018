package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/one-of-one-tools/marketsync/src/events"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine().WithNow(func() time.Time { return now })
}

func sale(mint string, amount uint64, timestamp time.Time) *events.MarketEvent {
	return &events.MarketEvent{
		Signature: "sig-" + timestamp.String(),
		Kind:      events.KindSale,
		Mint:      mint,
		Amount:    amount,
		Timestamp: timestamp.Unix(),
	}
}

func TestWindowCorrectness(t *testing.T) {
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}
	aggregate := new(Aggregate)

	for _, age := range []time.Duration{
		23 * time.Hour,
		2 * 24 * time.Hour,
		10 * 24 * time.Hour,
		40 * 24 * time.Hour,
	} {
		engine.Apply(aggregate, tracked, sale("M1", 1_000_000_000, now.Add(-age)))
	}

	assert.Equal(t, 4.0, aggregate.TotalVolume)
	assert.Equal(t, 3.0, aggregate.MonthVolume)
	assert.Equal(t, 2.0, aggregate.WeekVolume)
	assert.Equal(t, 1.0, aggregate.DayVolume)
}

func TestDisplayUnits(t *testing.T) {
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}
	aggregate := new(Aggregate)

	engine.Apply(aggregate, tracked, sale("M1", 2_000_000_000, now))

	assert.Equal(t, 2.0, aggregate.TotalVolume)
	assert.Equal(t, 2.0, aggregate.DayVolume)
	assert.Equal(t, 2.0, aggregate.WeekVolume)
	assert.Equal(t, 2.0, aggregate.MonthVolume)
}

func TestAthTieBreak(t *testing.T) {
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}
	aggregate := new(Aggregate)

	first := sale("M1", 5_000_000_000, now.Add(-2*time.Hour))
	first.Signature = "first"
	second := sale("M1", 5_000_000_000, now.Add(-time.Hour))
	second.Signature = "second"

	engine.Apply(aggregate, tracked, first)
	engine.Apply(aggregate, tracked, second)

	assert.NotNil(t, aggregate.AthSale)
	assert.Equal(t, "first", aggregate.AthSale.Signature)
}

func TestAthReplacedByHigherSale(t *testing.T) {
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}
	aggregate := new(Aggregate)

	engine.Apply(aggregate, tracked, sale("M1", 1_000_000_000, now))
	engine.Apply(aggregate, tracked, sale("M1", 3_000_000_000, now))

	assert.Equal(t, uint64(3_000_000_000), aggregate.AthSale.Amount)
}

func TestMintEventsCountTowardsVolumeAndAth(t *testing.T) {
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}
	aggregate := new(Aggregate)

	mint := sale("M1", 1_500_000_000, now)
	mint.Kind = events.KindMint

	engine.Apply(aggregate, tracked, mint)

	assert.Equal(t, 1.5, aggregate.TotalVolume)
	assert.NotNil(t, aggregate.AthSale)
}

func TestUntrackedMintSkipped(t *testing.T) {
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}
	aggregate := new(Aggregate)

	engine.Apply(aggregate, tracked, sale("M2", 1_000_000_000, now))

	assert.Equal(t, 0.0, aggregate.TotalVolume)
	assert.Nil(t, aggregate.AthSale)
}

func TestNonVolumeKindsLeaveAggregateUntouched(t *testing.T) {
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}
	aggregate := new(Aggregate)

	listing := sale("M1", 1_000_000_000, now)
	listing.Kind = events.KindListing

	engine.Apply(aggregate, tracked, listing)

	assert.Equal(t, 0.0, aggregate.TotalVolume)
	assert.Nil(t, aggregate.AthSale)
}

func TestRedeliveryGuardedByCaller(t *testing.T) {
	// Applying the same event twice doubles volume by design, callers
	// dedup on the (signature, mint) key before calling Apply
	engine := testEngine()
	tracked := map[string]struct{}{"M1": {}}

	once := new(Aggregate)
	engine.Apply(once, tracked, sale("M1", 2_000_000_000, now))

	twice := new(Aggregate)
	engine.Apply(twice, tracked, sale("M1", 2_000_000_000, now))
	engine.Apply(twice, tracked, sale("M1", 2_000_000_000, now))

	assert.Equal(t, once.TotalVolume*2, twice.TotalVolume)
}
