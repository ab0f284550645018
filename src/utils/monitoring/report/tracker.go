package report

import (
	"go.uber.org/atomic"
)

type TrackerErrors struct {
	ImporterPageFailures        atomic.Uint64 `json:"importer_page_failures"`
	ImporterRunFailures         atomic.Uint64 `json:"importer_run_failures"`
	DispatcherEnqueueFailures   atomic.Uint64 `json:"dispatcher_enqueue_failures"`
	HandlerAuthFailures         atomic.Uint64 `json:"handler_auth_failures"`
	HandlerProcessingFailures   atomic.Uint64 `json:"handler_processing_failures"`
	FloorRecalcFailures         atomic.Uint64 `json:"floor_recalc_failures"`
	NotifierDialectFailures     atomic.Uint64 `json:"notifier_dialect_failures"`
	NotifierDiscordFailures     atomic.Uint64 `json:"notifier_discord_failures"`
	PublisherRedisFailures      atomic.Uint64 `json:"publisher_redis_failures"`
	PublisherPersistentFailures atomic.Uint64 `json:"publisher_persistent_failures"`
}

type TrackerState struct {
	EventsImported                    atomic.Uint64  `json:"events_imported"`
	TasksEnqueued                     atomic.Uint64  `json:"tasks_enqueued"`
	TasksDeduplicated                 atomic.Uint64  `json:"tasks_deduplicated"`
	EventsProcessed                   atomic.Uint64  `json:"events_processed"`
	EventsSkippedUntracked            atomic.Uint64  `json:"events_skipped_untracked"`
	EventsSkippedDuplicate            atomic.Uint64  `json:"events_skipped_duplicate"`
	EventsPublished                   atomic.Uint64  `json:"events_published"`
	NotificationsSent                 atomic.Uint64  `json:"notifications_sent"`
	AverageEventsProcessedPerMinute   atomic.Float64 `json:"average_events_processed_per_minute"`
	AverageNotificationsSentPerMinute atomic.Float64 `json:"average_notifications_sent_per_minute"`
}

type TrackerReport struct {
	State  TrackerState  `json:"state"`
	Errors TrackerErrors `json:"errors"`
}
