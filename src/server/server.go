package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/ingest"
	"github.com/one-of-one-tools/marketsync/src/notify"
	"github.com/one-of-one-tools/marketsync/src/stats"
	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/discord"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
	"github.com/one-of-one-tools/marketsync/src/utils/monitoring"
	"github.com/one-of-one-tools/marketsync/src/utils/task"
)

// TaskQueue enqueues idempotently named units of work
type TaskQueue interface {
	CreateTask(ctx context.Context, name, callbackUrl string, headers map[string]string, body []byte) error
}

// Store is the slice of the persistence layer the API touches
type Store interface {
	GetCollection(ctx context.Context, slug string) (*model.Collection, error)
	GetCollectionForMint(ctx context.Context, mint string) (*model.Collection, error)
	SetFilters(ctx context.Context, slug, collectionAddress, firstVerifiedCreator string, totalSupply int) error
	AddMintsAsTracked(ctx context.Context, slug string, mints []string) error
	AddEvent(ctx context.Context, slug string, event *events.MarketEvent, raw []byte) (bool, error)
	RemoveEvent(ctx context.Context, slug, signature, mint string) error
	SetStats(ctx context.Context, slug string, aggregate *stats.Aggregate) error
	Aggregate(collection *model.Collection) (*stats.Aggregate, error)
	GetDialectSubscriptionsByUser(ctx context.Context, userId string) ([]model.DialectSubscription, error)
	GetDiscordSubscriptionsByUser(ctx context.Context, userId string) ([]model.DiscordSubscription, error)
	SetDialectSubscription(ctx context.Context, subscription *model.DialectSubscription) error
	RemoveDialectSubscription(ctx context.Context, userId, scope string) error
	SetDiscordSubscription(ctx context.Context, subscription *model.DiscordSubscription) error
	RemoveDiscordSubscription(ctx context.Context, userId, scope string) error
}

// FilterResolver resolves a collection's query filters from one of its mints
type FilterResolver interface {
	ResolveCollectionFilters(ctx context.Context, mint string) (collectionAddress, firstVerifiedCreator string, err error)
}

// ImportRunner replays a collection's history
type ImportRunner interface {
	ImportAll(ctx context.Context, collection *model.Collection) (*ingest.Result, error)
}

// Fanout broadcasts one notification to subscribers
type Fanout interface {
	Notify(ctx context.Context, scopes []string, notification *notify.Notification) error
}

// ChannelVerifier checks a Discord channel before a subscription is stored
type ChannelVerifier interface {
	GetChannel(ctx context.Context, guildId, channelId string) (*discord.Channel, error)
}

// Rest API server, receives webhooks, task callbacks and user requests
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	monitor  monitoring.Monitor
	store    Store
	queue    TaskQueue
	filters  FilterResolver
	importer ImportRunner
	notifier Fanout
	verifier ChannelVerifier
	floors   ingest.FloorSource
	engine   *stats.Engine

	// Processed events, consumed by the redis publisher
	output chan *events.MarketEvent

	// Caches mint -> collection resolution on the task handler path
	collectionCache *cache.Cache
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop).
		WithWorkerPool(config.Server.DispatchNumWorkers, config.Server.DispatchWorkerQueueSize)

	if config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()

	if config.Profiler.Enabled {
		pprof.Register(self.Router)
	}

	self.engine = stats.NewEngine()
	self.collectionCache = cache.New(config.Server.CollectionCacheTTL, config.Server.CollectionCacheCleanupInterval)

	self.httpServer = &http.Server{
		Addr:    config.Server.ListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) WithStore(store Store) *Server {
	self.store = store
	return self
}

func (self *Server) WithTaskQueue(queue TaskQueue) *Server {
	self.queue = queue
	return self
}

func (self *Server) WithFilterResolver(filters FilterResolver) *Server {
	self.filters = filters
	return self
}

func (self *Server) WithImporter(importer ImportRunner) *Server {
	self.importer = importer
	return self
}

func (self *Server) WithNotifier(notifier Fanout) *Server {
	self.notifier = notifier
	return self
}

func (self *Server) WithChannelVerifier(verifier ChannelVerifier) *Server {
	self.verifier = verifier
	return self
}

func (self *Server) WithFloorSource(floors ingest.FloorSource) *Server {
	self.floors = floors
	return self
}

func (self *Server) WithOutputChannel(output chan *events.MarketEvent) *Server {
	self.output = output
	return self
}

func (self *Server) WithEngine(engine *stats.Engine) *Server {
	self.engine = engine
	return self
}

func (self *Server) run() (err error) {
	v1 := self.Router.Group("v1")
	{
		v1.POST("webhook", self.onWebhook())
		v1.POST("webhook/handle-task", self.onHandleTask())
		v1.POST("collections/:slug/import", self.onImportCollection())
		v1.GET("notifications/boutique", self.onGetSubscriptions(scopeFromBoutique))
		v1.POST("notifications/boutique", self.onSetSubscription(scopeFromBoutique))
		v1.GET("notifications/nfts", self.onGetSubscriptions(scopeFromMint))
		v1.POST("notifications/nfts", self.onSetSubscription(scopeFromMint))
	}

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}
