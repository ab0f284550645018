package server

import (
	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/ingest"
	"github.com/one-of-one-tools/marketsync/src/notify"
	"github.com/one-of-one-tools/marketsync/src/stats"
	"github.com/one-of-one-tools/marketsync/src/storage"
	"github.com/one-of-one-tools/marketsync/src/utils/cloudtasks"
	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/dialect"
	"github.com/one-of-one-tools/marketsync/src/utils/discord"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
	"github.com/one-of-one-tools/marketsync/src/utils/monitoring"
	monitor_tracker "github.com/one-of-one-tools/marketsync/src/utils/monitoring/tracker"
	"github.com/one-of-one-tools/marketsync/src/utils/publisher"
	"github.com/one-of-one-tools/marketsync/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the tracker. Sets up ingestion, processing,
// fanout and the two HTTP surfaces.
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "tracker")
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_tracker.NewMonitor().
		WithMaxHistorySize(30)

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	// External clients
	heliusClient := helius.NewClient(&config.Helius)
	taskQueue := cloudtasks.NewClient(&config.CloudTasks)
	dialectClient := dialect.NewClient(&config.Dialect)
	discordClient := discord.NewClient(&config.Discord)

	// Persistence
	store := storage.NewStore().
		WithDB(db)

	floors := stats.NewFloorCalculator().
		WithDB(db)

	// Backfill
	importer := ingest.NewImporter(config).
		WithEventSource(heliusClient).
		WithStore(store).
		WithFloorSource(floors).
		WithMonitor(monitor)

	// Fanout
	notifier := notify.NewNotifier().
		WithMonitor(monitor).
		WithChannel(notify.NewDialectChannel().
			WithSubscriberSource(store).
			WithMessenger(dialectClient)).
		WithChannel(notify.NewDiscordChannel().
			WithSubscriberSource(store).
			WithMessenger(discordClient))

	// Processed events go out on a redis channel as well
	output := make(chan *events.MarketEvent, config.Redis.MaxQueueSize)
	redisPublisher := publisher.NewRedisPublisher[*events.MarketEvent](config, "redis-publisher").
		WithChannelName(config.Notifier.RedisChannelName).
		WithMonitor(monitor).
		WithInputChannel(output)

	// Public API
	server := NewServer(config).
		WithMonitor(monitor).
		WithStore(store).
		WithTaskQueue(taskQueue).
		WithFilterResolver(heliusClient).
		WithImporter(importer).
		WithNotifier(notifier).
		WithChannelVerifier(discordClient).
		WithFloorSource(floors).
		WithOutputChannel(output)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(redisPublisher.Task).
		WithSubtask(server.Task)

	return
}
