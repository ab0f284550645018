package monitor_tracker

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	StartTimestamp                    *prometheus.Desc
	UpForSeconds                      *prometheus.Desc
	EventsImported                    *prometheus.Desc
	TasksEnqueued                     *prometheus.Desc
	TasksDeduplicated                 *prometheus.Desc
	EventsProcessed                   *prometheus.Desc
	EventsSkippedUntracked            *prometheus.Desc
	EventsSkippedDuplicate            *prometheus.Desc
	EventsPublished                   *prometheus.Desc
	NotificationsSent                 *prometheus.Desc
	AverageEventsProcessedPerMinute   *prometheus.Desc
	AverageNotificationsSentPerMinute *prometheus.Desc

	ImporterPageFailures        *prometheus.Desc
	ImporterRunFailures         *prometheus.Desc
	DispatcherEnqueueFailures   *prometheus.Desc
	HandlerAuthFailures         *prometheus.Desc
	HandlerProcessingFailures   *prometheus.Desc
	FloorRecalcFailures         *prometheus.Desc
	NotifierDialectFailures     *prometheus.Desc
	NotifierDiscordFailures     *prometheus.Desc
	PublisherRedisFailures      *prometheus.Desc
	PublisherPersistentFailures *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "marketsync",
	}

	return &Collector{
		StartTimestamp:                    prometheus.NewDesc("start_timestamp", "", nil, labels),
		UpForSeconds:                      prometheus.NewDesc("up_for_seconds", "", nil, labels),
		EventsImported:                    prometheus.NewDesc("events_imported", "", nil, labels),
		TasksEnqueued:                     prometheus.NewDesc("tasks_enqueued", "", nil, labels),
		TasksDeduplicated:                 prometheus.NewDesc("tasks_deduplicated", "", nil, labels),
		EventsProcessed:                   prometheus.NewDesc("events_processed", "", nil, labels),
		EventsSkippedUntracked:            prometheus.NewDesc("events_skipped_untracked", "", nil, labels),
		EventsSkippedDuplicate:            prometheus.NewDesc("events_skipped_duplicate", "", nil, labels),
		EventsPublished:                   prometheus.NewDesc("events_published", "", nil, labels),
		NotificationsSent:                 prometheus.NewDesc("notifications_sent", "", nil, labels),
		AverageEventsProcessedPerMinute:   prometheus.NewDesc("average_events_processed_per_minute", "", nil, labels),
		AverageNotificationsSentPerMinute: prometheus.NewDesc("average_notifications_sent_per_minute", "", nil, labels),

		// Errors
		ImporterPageFailures:        prometheus.NewDesc("error_importer_page", "", nil, labels),
		ImporterRunFailures:         prometheus.NewDesc("error_importer_run", "", nil, labels),
		DispatcherEnqueueFailures:   prometheus.NewDesc("error_dispatcher_enqueue", "", nil, labels),
		HandlerAuthFailures:         prometheus.NewDesc("error_handler_auth", "", nil, labels),
		HandlerProcessingFailures:   prometheus.NewDesc("error_handler_processing", "", nil, labels),
		FloorRecalcFailures:         prometheus.NewDesc("error_floor_recalc", "", nil, labels),
		NotifierDialectFailures:     prometheus.NewDesc("error_notifier_dialect", "", nil, labels),
		NotifierDiscordFailures:     prometheus.NewDesc("error_notifier_discord", "", nil, labels),
		PublisherRedisFailures:      prometheus.NewDesc("error_publisher_redis", "", nil, labels),
		PublisherPersistentFailures: prometheus.NewDesc("error_publisher_persistent", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.StartTimestamp
	ch <- self.UpForSeconds
	ch <- self.EventsImported
	ch <- self.TasksEnqueued
	ch <- self.TasksDeduplicated
	ch <- self.EventsProcessed
	ch <- self.EventsSkippedUntracked
	ch <- self.EventsSkippedDuplicate
	ch <- self.EventsPublished
	ch <- self.NotificationsSent
	ch <- self.AverageEventsProcessedPerMinute
	ch <- self.AverageNotificationsSentPerMinute

	// Errors
	ch <- self.ImporterPageFailures
	ch <- self.ImporterRunFailures
	ch <- self.DispatcherEnqueueFailures
	ch <- self.HandlerAuthFailures
	ch <- self.HandlerProcessingFailures
	ch <- self.FloorRecalcFailures
	ch <- self.NotifierDialectFailures
	ch <- self.NotifierDiscordFailures
	ch <- self.PublisherRedisFailures
	ch <- self.PublisherPersistentFailures
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	state := &self.monitor.Report.Tracker.State
	errors := &self.monitor.Report.Tracker.Errors

	ch <- prometheus.MustNewConstMetric(self.StartTimestamp, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.StartTimestamp.Load()))
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsImported, prometheus.CounterValue, float64(state.EventsImported.Load()))
	ch <- prometheus.MustNewConstMetric(self.TasksEnqueued, prometheus.CounterValue, float64(state.TasksEnqueued.Load()))
	ch <- prometheus.MustNewConstMetric(self.TasksDeduplicated, prometheus.CounterValue, float64(state.TasksDeduplicated.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsProcessed, prometheus.CounterValue, float64(state.EventsProcessed.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsSkippedUntracked, prometheus.CounterValue, float64(state.EventsSkippedUntracked.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsSkippedDuplicate, prometheus.CounterValue, float64(state.EventsSkippedDuplicate.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsPublished, prometheus.CounterValue, float64(state.EventsPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.NotificationsSent, prometheus.CounterValue, float64(state.NotificationsSent.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageEventsProcessedPerMinute, prometheus.GaugeValue, state.AverageEventsProcessedPerMinute.Load())
	ch <- prometheus.MustNewConstMetric(self.AverageNotificationsSentPerMinute, prometheus.GaugeValue, state.AverageNotificationsSentPerMinute.Load())

	// Errors
	ch <- prometheus.MustNewConstMetric(self.ImporterPageFailures, prometheus.CounterValue, float64(errors.ImporterPageFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ImporterRunFailures, prometheus.CounterValue, float64(errors.ImporterRunFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.DispatcherEnqueueFailures, prometheus.CounterValue, float64(errors.DispatcherEnqueueFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.HandlerAuthFailures, prometheus.CounterValue, float64(errors.HandlerAuthFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.HandlerProcessingFailures, prometheus.CounterValue, float64(errors.HandlerProcessingFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.FloorRecalcFailures, prometheus.CounterValue, float64(errors.FloorRecalcFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.NotifierDialectFailures, prometheus.CounterValue, float64(errors.NotifierDialectFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.NotifierDiscordFailures, prometheus.CounterValue, float64(errors.NotifierDiscordFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherRedisFailures, prometheus.CounterValue, float64(errors.PublisherRedisFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherPersistentFailures, prometheus.CounterValue, float64(errors.PublisherPersistentFailures.Load()))
}
