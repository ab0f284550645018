package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/atomic"

	"github.com/one-of-one-tools/marketsync/src/server/response"
	"github.com/one-of-one-tools/marketsync/src/utils/cloudtasks"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	. "github.com/one-of-one-tools/marketsync/src/utils/logger"
)

// TaskName derives the deterministic queue name for one (mint, signature)
// pair. The queue rejects duplicate names, which dedups redelivered batches.
func TaskName(mint, signature string) string {
	head, tail := mint, mint
	if len(mint) > 4 {
		head = mint[:4]
		tail = mint[len(mint)-4:]
	}
	return fmt.Sprintf("%s_%s-%s", head, tail, signature)
}

func qualifies(transaction *helius.EnrichedTransaction) (mint string, ok bool) {
	if transaction.Signature == "" {
		return
	}
	nftEvent := transaction.Events.NFT
	if nftEvent == nil || len(nftEvent.NFTs) == 0 {
		return
	}
	mint = nftEvent.NFTs[0].Mint
	ok = mint != ""
	return
}

// Dispatches a batch of raw transactions onto the task queue, one task per
// qualifying transaction. Enqueues run concurrently, each one independent,
// the batch succeeds even when single items fail.
func (self *Server) onWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != self.Config.Server.WebhookSecret {
			self.monitor.GetReport().Tracker.Errors.HandlerAuthFailures.Inc()
			LOGE(c, nil, http.StatusUnauthorized).Error("Invalid webhook secret")
			return
		}

		var batch []json.RawMessage
		err := c.ShouldBindJSON(&batch)
		if err != nil {
			LOGE(c, err, http.StatusBadRequest).Error("Failed to parse webhook batch")
			return
		}

		headers := map[string]string{
			"Authorization": self.Config.Server.WebhookSecret,
			"Content-Type":  "application/json",
		}

		var wg sync.WaitGroup
		var enqueued, deduplicated, failed, skipped atomic.Int64

		// Workers may outlive the request when the dispatch times out, so
		// they get the server's context and a logger captured up front
		log := LOG(c)

		for _, raw := range batch {
			raw := raw

			var transaction helius.EnrichedTransaction
			err = json.Unmarshal(raw, &transaction)
			if err != nil {
				LOG(c).WithError(err).Warn("Skipping unparsable transaction")
				skipped.Inc()
				continue
			}

			mint, ok := qualifies(&transaction)
			if !ok {
				skipped.Inc()
				continue
			}

			name := TaskName(mint, transaction.Signature)

			wg.Add(1)
			submitted := self.SubmitToWorker(func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(self.Ctx, self.Config.CloudTasks.RequestTimeout)
				defer cancel()

				err := self.queue.CreateTask(ctx, name, self.Config.Server.TaskCallbackURL, headers, raw)
				switch {
				case err == nil:
					enqueued.Inc()
					self.monitor.GetReport().Tracker.State.TasksEnqueued.Inc()
				case errors.Is(err, cloudtasks.ErrTaskAlreadyExists):
					deduplicated.Inc()
					self.monitor.GetReport().Tracker.State.TasksDeduplicated.Inc()
				default:
					failed.Inc()
					self.monitor.GetReport().Tracker.Errors.DispatcherEnqueueFailures.Inc()
					log.WithError(err).
						WithField("task", name).
						Error("Failed to enqueue task")
				}
			})
			if !submitted {
				wg.Done()
				failed.Inc()
				self.monitor.GetReport().Tracker.Errors.DispatcherEnqueueFailures.Inc()
				log.WithField("task", name).Error("Dispatch queue is full, task dropped")
			}
		}

		// The webhook sender expects a timely response, a slow queue must
		// not hold the whole batch hostage
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(self.Config.Server.DispatchTimeout):
			log.Warn("Dispatch timed out, responding before all enqueues finished")
		}

		c.JSON(http.StatusOK, response.Dispatch{
			Success:      true,
			Received:     len(batch),
			Enqueued:     int(enqueued.Load()),
			Deduplicated: int(deduplicated.Load()),
			Failed:       int(failed.Load()),
			Skipped:      int(skipped.Load()),
		})
	}
}
