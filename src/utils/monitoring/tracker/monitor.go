package monitor_tracker

import (
	"math"
	"net/http"
	"time"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/one-of-one-tools/marketsync/src/utils/monitoring/report"
	"github.com/one-of-one-tools/marketsync/src/utils/task"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Processing speed
	EventsProcessed   *deque.Deque[uint64]
	NotificationsSent *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:     &report.RunReport{},
		Tracker: &report.TrackerReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorEvents).
		WithPeriodicSubtaskFunc(time.Minute, self.monitorNotifications)
	return
}

func (self *Monitor) Clear() {
	self.EventsProcessed.Clear()
	self.NotificationsSent.Clear()
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize

	self.EventsProcessed = deque.New[uint64](self.historySize)
	self.NotificationsSent = deque.New[uint64](self.historySize)

	return self
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure event processing speed
func (self *Monitor) monitorEvents() (err error) {
	loaded := self.Report.Tracker.State.EventsProcessed.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.EventsProcessed.PushBack(loaded)
	if self.EventsProcessed.Len() > self.historySize {
		self.EventsProcessed.PopFront()
	}
	value := float64(self.EventsProcessed.Back()-self.EventsProcessed.Front()) / float64(self.EventsProcessed.Len())
	self.Report.Tracker.State.AverageEventsProcessedPerMinute.Store(round(value))
	return
}

// Measure notification fanout speed
func (self *Monitor) monitorNotifications() (err error) {
	loaded := self.Report.Tracker.State.NotificationsSent.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.NotificationsSent.PushBack(loaded)
	if self.NotificationsSent.Len() > self.historySize {
		self.NotificationsSent.PopFront()
	}
	value := float64(self.NotificationsSent.Back()-self.NotificationsSent.Front()) / float64(self.NotificationsSent.Len())
	self.Report.Tracker.State.AverageNotificationsSentPerMinute.Store(round(value))
	return
}

func (self *Monitor) IsOK() bool {
	now := time.Now().Unix()
	if now-self.Report.Run.State.StartTimestamp.Load() < 300 {
		return true
	}

	// Up long enough, persistent publish failures mean the pipeline is stuck
	return self.Report.Tracker.Errors.PublisherPersistentFailures.Load() == 0
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
