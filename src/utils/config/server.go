package config

import (
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	// Public API address, receives webhooks and import requests
	ListenAddress string

	// Max time one request may take
	RequestTimeout time.Duration

	// Max time the dispatcher waits for a webhook batch to be enqueued
	DispatchTimeout time.Duration

	// Shared secret expected in the Authorization header of webhook calls
	WebhookSecret string

	// URL the task queue calls back with a single transaction
	TaskCallbackURL string

	// Num of workers that enqueue dispatched tasks
	DispatchNumWorkers int

	// Max num of pending enqueues in the worker's queue
	DispatchWorkerQueueSize int

	// How long a mint->collection resolution stays cached
	CollectionCacheTTL time.Duration

	// How often expired cache entries are evicted
	CollectionCacheCleanupInterval time.Duration
}

func setServerDefaults() {
	viper.SetDefault("Server.ListenAddress", ":8080")
	viper.SetDefault("Server.RequestTimeout", "30s")
	viper.SetDefault("Server.DispatchTimeout", "25s")
	viper.SetDefault("Server.WebhookSecret", "")
	viper.SetDefault("Server.TaskCallbackURL", "http://localhost:8080/v1/webhook/handle-task")
	viper.SetDefault("Server.DispatchNumWorkers", "10")
	viper.SetDefault("Server.DispatchWorkerQueueSize", "100")
	viper.SetDefault("Server.CollectionCacheTTL", "10m")
	viper.SetDefault("Server.CollectionCacheCleanupInterval", "15m")
}
