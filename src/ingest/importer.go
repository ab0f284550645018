package ingest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/stats"
	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
	"github.com/one-of-one-tools/marketsync/src/utils/monitoring"
	"github.com/one-of-one-tools/marketsync/src/utils/task"
)

// ErrUnscopedCollection means the collection has neither a verified
// collection address nor a first verified creator, so an upstream query
// would scan the whole chain.
var ErrUnscopedCollection = errors.New("collection has no query filters")

// EventSource fetches one page of enriched transactions for a collection
type EventSource interface {
	FetchEventsPage(ctx context.Context, query *helius.EventsQuery, cursor string) (*helius.EventsPage, error)
}

// Store is the slice of the persistence layer the importer writes through
type Store interface {
	AddEvent(ctx context.Context, slug string, event *events.MarketEvent, raw []byte) (bool, error)
	SetStats(ctx context.Context, slug string, aggregate *stats.Aggregate) error
}

// FloorSource recalculates the floor from persisted history
type FloorSource interface {
	Recalculate(ctx context.Context, collection *model.Collection) (*stats.Floor, error)
}

type Result struct {
	Pages        int              `json:"pages"`
	EventsTotal  int              `json:"events_total"`
	EventsStored int              `json:"events_stored"`
	Aggregate    *stats.Aggregate `json:"aggregate"`
}

// Importer replays a collection's full upstream history and rebuilds the
// aggregate from scratch. Pages are folded sequentially, pagination cursors
// only make sense in order.
type Importer struct {
	config *config.Config
	log    *logrus.Entry

	source  EventSource
	store   Store
	floors  FloorSource
	engine  *stats.Engine
	monitor monitoring.Monitor
}

func NewImporter(config *config.Config) (self *Importer) {
	self = new(Importer)
	self.config = config
	self.log = logger.NewSublogger("importer")
	self.engine = stats.NewEngine()
	return
}

func (self *Importer) WithEventSource(source EventSource) *Importer {
	self.source = source
	return self
}

func (self *Importer) WithStore(store Store) *Importer {
	self.store = store
	return self
}

func (self *Importer) WithFloorSource(floors FloorSource) *Importer {
	self.floors = floors
	return self
}

func (self *Importer) WithEngine(engine *stats.Engine) *Importer {
	self.engine = engine
	return self
}

func (self *Importer) WithMonitor(monitor monitoring.Monitor) *Importer {
	self.monitor = monitor
	return self
}

// ImportAll fetches every page of history for the collection, persists each
// qualifying event and writes the rebuilt aggregate once at the end. On
// upstream failure the aggregate is left untouched.
func (self *Importer) ImportAll(ctx context.Context, collection *model.Collection) (result *Result, err error) {
	if !collection.HasFilters() {
		return nil, ErrUnscopedCollection
	}

	query := &helius.EventsQuery{
		Types: kindNames(),
	}
	// Prefer the creator filter, it also matches pre-certification mints
	if collection.FirstVerifiedCreator != "" {
		query.NFTCollectionFilters.FirstVerifiedCreator = []string{collection.FirstVerifiedCreator}
	} else {
		query.NFTCollectionFilters.VerifiedCollectionAddress = []string{collection.CollectionAddress}
	}

	tracked := collection.Tracked()
	aggregate := new(stats.Aggregate)
	result = new(Result)

	cursor := ""
	for {
		var page *helius.EventsPage
		err = task.NewRetry().
			WithContext(ctx).
			WithMaxInterval(self.config.Importer.BackoffMaxInterval).
			WithMaxElapsedTime(self.config.Importer.BackoffMaxElapsedTime).
			WithOnError(func(err error, isDurationAcceptable bool) error {
				self.log.WithError(err).
					WithField("slug", collection.Slug).
					WithField("page", result.Pages).
					Warn("Failed to fetch events page, retrying")
				if self.monitor != nil {
					self.monitor.GetReport().Tracker.Errors.ImporterPageFailures.Inc()
				}
				return err
			}).
			Run(func() (err error) {
				page, err = self.source.FetchEventsPage(ctx, query, cursor)
				return
			})
		if err != nil {
			self.log.WithError(err).
				WithField("slug", collection.Slug).
				Error("Import aborted, upstream page fetch failed")
			return nil, err
		}

		result.Pages += 1
		result.EventsTotal += len(page.Events)

		for i := range page.Events {
			self.applyEvent(ctx, collection, tracked, aggregate, &page.Events[i], result)
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	floor, err := self.floors.Recalculate(ctx, collection)
	if err != nil {
		// The rebuilt volumes are worth keeping even without a floor, the
		// next processed event recomputes it anyway
		self.log.WithError(err).
			WithField("slug", collection.Slug).
			Error("Failed to recalculate floor, saving stats without it")
		if self.monitor != nil {
			self.monitor.GetReport().Tracker.Errors.FloorRecalcFailures.Inc()
		}
	} else {
		aggregate.Floor = floor
	}

	err = self.store.SetStats(ctx, collection.Slug, aggregate)
	if err != nil {
		return nil, err
	}

	result.Aggregate = aggregate
	return
}

func (self *Importer) applyEvent(ctx context.Context, collection *model.Collection, tracked map[string]struct{}, aggregate *stats.Aggregate, raw *helius.NFTEvent, result *Result) {
	event, ok := events.Normalize(raw)
	if !ok {
		return
	}
	if _, isTracked := tracked[event.Mint]; !isTracked {
		return
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		payload = nil
	}

	inserted, err := self.store.AddEvent(ctx, collection.Slug, &event, payload)
	if err != nil {
		// The aggregate is still advanced, a single lost history row
		// must not skew the rebuilt totals
		self.log.WithError(err).
			WithField("slug", collection.Slug).
			WithField("signature", event.Signature).
			Error("Failed to persist imported event")
	} else if inserted {
		result.EventsStored += 1
	}

	self.engine.Apply(aggregate, tracked, &event)
}

func kindNames() (out []string) {
	out = make([]string, 0, len(events.AllKinds))
	for _, kind := range events.AllKinds {
		out = append(out, string(kind))
	}
	return
}

