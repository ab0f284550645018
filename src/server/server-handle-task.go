package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/notify"
	"github.com/one-of-one-tools/marketsync/src/server/response"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	. "github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

// Processes one queued transaction. The queue delivers at least once, the
// composite key on the events table turns a redelivery into a no-op.
func (self *Server) onHandleTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != self.Config.Server.WebhookSecret {
			self.monitor.GetReport().Tracker.Errors.HandlerAuthFailures.Inc()
			LOGE(c, nil, http.StatusUnauthorized).Error("Invalid task secret")
			return
		}

		raw, err := c.GetRawData()
		if err != nil {
			LOGE(c, err, http.StatusBadRequest).Error("Failed to read task body")
			return
		}

		var transaction helius.EnrichedTransaction
		err = json.Unmarshal(raw, &transaction)
		if err != nil {
			LOGE(c, err, http.StatusBadRequest).Error("Failed to parse transaction")
			return
		}

		nftEvent := transaction.Events.NFT
		if nftEvent != nil {
			// Webhook payloads nest the event, some carry the shared
			// fields only at the transaction level
			if nftEvent.Signature == "" {
				nftEvent.Signature = transaction.Signature
			}
			if nftEvent.Type == "" {
				nftEvent.Type = transaction.Type
			}
			if nftEvent.Timestamp == 0 {
				nftEvent.Timestamp = transaction.Timestamp
			}
			if nftEvent.Source == "" {
				nftEvent.Source = transaction.Source
			}
			nftEvent.Description = helius.HumanReadableTransaction(&transaction)
		}

		event, ok := events.Normalize(nftEvent)
		if !ok {
			// The dispatcher only enqueues transactions that looked like
			// single-asset events, so this is unexpected. Report it and
			// let the queue decide about redelivery.
			self.monitor.GetReport().Tracker.Errors.HandlerProcessingFailures.Inc()
			LOGE(c, nil, http.StatusInternalServerError).
				WithField("signature", transaction.Signature).
				Error("Transaction did not normalize to a usable event")
			return
		}

		collection, err := self.resolveCollection(c, event.Mint)
		if err != nil {
			self.monitor.GetReport().Tracker.Errors.HandlerProcessingFailures.Inc()
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to resolve collection")
			return
		}
		if collection == nil {
			// The webhook is subscribed broadly, untracked mints are routine
			self.monitor.GetReport().Tracker.State.EventsSkippedUntracked.Inc()
			c.JSON(http.StatusOK, response.Status{Success: true, Message: "mint is not tracked"})
			return
		}

		inserted, err := self.store.AddEvent(c.Request.Context(), collection.Slug, &event, raw)
		if err != nil {
			self.monitor.GetReport().Tracker.Errors.HandlerProcessingFailures.Inc()
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to persist event")
			return
		}
		if !inserted {
			self.monitor.GetReport().Tracker.State.EventsSkippedDuplicate.Inc()
			c.JSON(http.StatusOK, response.Status{Success: true, Message: "event already processed"})
			return
		}

		aggregate, err := self.store.Aggregate(collection)
		if err != nil {
			self.revertEvent(c, collection.Slug, &event)
			self.monitor.GetReport().Tracker.Errors.HandlerProcessingFailures.Inc()
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to decode aggregate")
			return
		}

		self.engine.Apply(aggregate, collection.Tracked(), &event)

		floor, err := self.floors.Recalculate(c.Request.Context(), collection)
		if err != nil {
			// The floor is derived from persisted history, a failed
			// recompute keeps the previous value until the next event
			self.monitor.GetReport().Tracker.Errors.FloorRecalcFailures.Inc()
			LOG(c).WithError(err).Error("Failed to recalculate floor")
		} else {
			aggregate.Floor = floor
		}

		err = self.store.SetStats(c.Request.Context(), collection.Slug, aggregate)
		if err != nil {
			self.revertEvent(c, collection.Slug, &event)
			self.monitor.GetReport().Tracker.Errors.HandlerProcessingFailures.Inc()
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to persist aggregate")
			return
		}

		self.monitor.GetReport().Tracker.State.EventsProcessed.Inc()

		// Aggregate is committed, everything below is best effort
		if self.output != nil {
			select {
			case self.output <- &event:
			default:
				LOG(c).Warn("Publisher output channel is full, event not published")
			}
		}

		if self.notifier != nil {
			err = self.notifier.Notify(c.Request.Context(), notify.Scopes(event.Mint), notify.NewNotification(&event))
			if err != nil {
				LOG(c).WithError(err).Error("Notification fanout finished with errors")
			} else {
				self.monitor.GetReport().Tracker.State.NotificationsSent.Inc()
			}
		}

		c.JSON(http.StatusCreated, response.Status{Success: true})
	}
}

// revertEvent removes the just-inserted history row after a failed aggregate
// write. Without this the queue's redelivery would hit the dedup guard and be
// answered as a no-op, losing the event's volume delta for good.
func (self *Server) revertEvent(c *gin.Context, slug string, event *events.MarketEvent) {
	err := self.store.RemoveEvent(c.Request.Context(), slug, event.Signature, event.Mint)
	if err != nil {
		LOG(c).WithError(err).
			WithField("signature", event.Signature).
			Error("Failed to remove event after aggregate write failure, redelivery will skip it")
	}
}

func (self *Server) resolveCollection(c *gin.Context, mint string) (collection *model.Collection, err error) {
	if cached, isCached := self.collectionCache.Get(mint); isCached {
		if cached == nil {
			return nil, nil
		}
		return cached.(*model.Collection), nil
	}

	collection, err = self.store.GetCollectionForMint(c.Request.Context(), mint)
	if err != nil {
		return
	}

	if collection == nil {
		self.collectionCache.SetDefault(mint, nil)
	} else {
		self.collectionCache.SetDefault(mint, collection)
	}
	return
}
