package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/stats"
	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

func TestImporterTestSuite(t *testing.T) {
	suite.Run(t, new(ImporterTestSuite))
}

type ImporterTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
}

func (s *ImporterTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
	s.config.Importer.BackoffMaxElapsedTime = 10 * time.Millisecond
	s.config.Importer.BackoffMaxInterval = time.Millisecond
}

func (s *ImporterTestSuite) TearDownSuite() {
	s.cancel()
}

type fakeSource struct {
	pages []*helius.EventsPage
	err   error
	calls int
}

func (self *fakeSource) FetchEventsPage(ctx context.Context, query *helius.EventsQuery, cursor string) (*helius.EventsPage, error) {
	self.calls++
	if self.err != nil {
		return nil, self.err
	}
	page := self.pages[0]
	self.pages = self.pages[1:]
	return page, nil
}

type fakeStore struct {
	events     []*events.MarketEvent
	aggregates []*stats.Aggregate
}

func (self *fakeStore) AddEvent(ctx context.Context, slug string, event *events.MarketEvent, raw []byte) (bool, error) {
	self.events = append(self.events, event)
	return true, nil
}

func (self *fakeStore) SetStats(ctx context.Context, slug string, aggregate *stats.Aggregate) error {
	self.aggregates = append(self.aggregates, aggregate)
	return nil
}

type fakeFloors struct {
	floor *stats.Floor
	err   error
}

func (self *fakeFloors) Recalculate(ctx context.Context, collection *model.Collection) (*stats.Floor, error) {
	if self.err != nil {
		return nil, self.err
	}
	return self.floor, nil
}

func (s *ImporterTestSuite) collection() *model.Collection {
	return &model.Collection{
		Slug:                 "foo",
		FirstVerifiedCreator: "C1",
		MintAddresses:        []string{"M1"},
	}
}

func (s *ImporterTestSuite) importer(source *fakeSource, store *fakeStore, floors *fakeFloors) *Importer {
	return NewImporter(s.config).
		WithEventSource(source).
		WithStore(store).
		WithFloorSource(floors)
}

func (s *ImporterTestSuite) TestUnscopedCollectionFailsFast() {
	source := new(fakeSource)
	importer := s.importer(source, new(fakeStore), new(fakeFloors))

	collection := s.collection()
	collection.FirstVerifiedCreator = ""
	collection.CollectionAddress = ""

	result, err := importer.ImportAll(s.ctx, collection)
	assert.ErrorIs(s.T(), err, ErrUnscopedCollection)
	assert.Nil(s.T(), result)
	assert.Zero(s.T(), source.calls)
}

func (s *ImporterTestSuite) TestSingleSaleRebuildsAggregate() {
	source := &fakeSource{
		pages: []*helius.EventsPage{
			{
				Events: []helius.NFTEvent{
					{
						Type:      "NFT_SALE",
						Signature: "sig-1",
						Amount:    2_000_000_000,
						Timestamp: time.Now().Unix(),
						NFTs:      []helius.NFT{{Mint: "M1"}},
					},
				},
			},
		},
	}
	store := new(fakeStore)
	floors := new(fakeFloors)

	importer := s.importer(source, store, floors)

	collection := s.collection()
	collection.MintAddresses = []string{"So11111111111111111111111111111111111111112"}
	source.pages[0].Events[0].NFTs[0].Mint = collection.MintAddresses[0]

	result, err := importer.ImportAll(s.ctx, collection)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), 1, result.Pages)
	assert.Equal(s.T(), 1, result.EventsTotal)
	assert.Equal(s.T(), 1, result.EventsStored)
	assert.Len(s.T(), store.events, 1)

	assert.Len(s.T(), store.aggregates, 1)
	aggregate := store.aggregates[0]
	assert.Equal(s.T(), 2.0, aggregate.TotalVolume)
	assert.Equal(s.T(), 2.0, aggregate.DayVolume)
	assert.Equal(s.T(), 2.0, aggregate.WeekVolume)
	assert.Equal(s.T(), 2.0, aggregate.MonthVolume)
	assert.NotNil(s.T(), aggregate.AthSale)
	assert.Equal(s.T(), "sig-1", aggregate.AthSale.Signature)
	assert.Nil(s.T(), aggregate.Floor)
}

func (s *ImporterTestSuite) TestPaginationFollowsCursor() {
	mint := "So11111111111111111111111111111111111111112"
	page := func(signature, cursor string) *helius.EventsPage {
		return &helius.EventsPage{
			Events: []helius.NFTEvent{
				{
					Type:      "NFT_SALE",
					Signature: signature,
					Amount:    1_000_000_000,
					Timestamp: time.Now().Unix(),
					NFTs:      []helius.NFT{{Mint: mint}},
				},
			},
			NextCursor: cursor,
		}
	}
	source := &fakeSource{
		pages: []*helius.EventsPage{page("sig-1", "cursor-1"), page("sig-2", "cursor-2"), page("sig-3", "")},
	}
	store := new(fakeStore)

	importer := s.importer(source, store, new(fakeFloors))

	collection := s.collection()
	collection.MintAddresses = []string{mint}

	result, err := importer.ImportAll(s.ctx, collection)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 3, source.calls)
	assert.Equal(s.T(), 3, result.Pages)
	assert.Len(s.T(), store.events, 3)
	assert.Len(s.T(), store.aggregates, 1)
	assert.Equal(s.T(), 3.0, store.aggregates[0].TotalVolume)
}

func (s *ImporterTestSuite) TestUpstreamFailureLeavesStatsUntouched() {
	source := &fakeSource{err: errors.New("upstream down")}
	store := new(fakeStore)

	importer := s.importer(source, store, new(fakeFloors))

	result, err := importer.ImportAll(s.ctx, s.collection())
	assert.Error(s.T(), err)
	assert.Nil(s.T(), result)
	assert.Empty(s.T(), store.aggregates)
}

func (s *ImporterTestSuite) TestFloorFailureStillSavesStats() {
	mint := "So11111111111111111111111111111111111111112"
	source := &fakeSource{
		pages: []*helius.EventsPage{
			{
				Events: []helius.NFTEvent{
					{
						Type:      "NFT_SALE",
						Signature: "sig-1",
						Amount:    2_000_000_000,
						Timestamp: time.Now().Unix(),
						NFTs:      []helius.NFT{{Mint: mint}},
					},
				},
			},
		},
	}
	store := new(fakeStore)
	floors := &fakeFloors{err: errors.New("floor query failed")}

	importer := s.importer(source, store, floors)

	collection := s.collection()
	collection.MintAddresses = []string{mint}

	// A transient floor error must not discard the replayed volumes
	result, err := importer.ImportAll(s.ctx, collection)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), store.aggregates, 1)
	assert.Equal(s.T(), 2.0, store.aggregates[0].TotalVolume)
	assert.Nil(s.T(), store.aggregates[0].Floor)
	assert.Nil(s.T(), result.Aggregate.Floor)
}

func (s *ImporterTestSuite) TestUntrackedMintsAreHistoryFiltered() {
	tracked := "So11111111111111111111111111111111111111112"
	other := "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	source := &fakeSource{
		pages: []*helius.EventsPage{
			{
				Events: []helius.NFTEvent{
					{
						Type:      "NFT_SALE",
						Signature: "sig-1",
						Amount:    1_000_000_000,
						Timestamp: time.Now().Unix(),
						NFTs:      []helius.NFT{{Mint: other}},
					},
				},
			},
		},
	}
	store := new(fakeStore)

	importer := s.importer(source, store, new(fakeFloors))

	collection := s.collection()
	collection.MintAddresses = []string{tracked}

	result, err := importer.ImportAll(s.ctx, collection)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, result.EventsTotal)
	assert.Zero(s.T(), result.EventsStored)
	assert.Empty(s.T(), store.events)
	assert.Equal(s.T(), 0.0, store.aggregates[0].TotalVolume)
}
