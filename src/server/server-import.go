package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/ingest"
	"github.com/one-of-one-tools/marketsync/src/server/request"
	"github.com/one-of-one-tools/marketsync/src/server/response"
	"github.com/one-of-one-tools/marketsync/src/storage"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	. "github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

// Triggers a full history backfill for one collection. Resolves and caches
// the collection's query filters on first use, they are immutable afterwards.
func (self *Server) onImportCollection() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		var in request.Import
		if c.Request.ContentLength > 0 {
			err := c.ShouldBindJSON(&in)
			if err != nil {
				LOGE(c, err, http.StatusBadRequest).Error("Failed to parse import request")
				return
			}
		}

		for _, mint := range in.Mints {
			if !events.IsValidAddress(mint) {
				LOGE(c, nil, http.StatusBadRequest).
					WithField("mint", mint).
					Error("Mint is not a valid address")
				return
			}
		}

		collection, err := self.store.GetCollection(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, storage.ErrCollectionNotFound) {
				LOGE(c, err, http.StatusNotFound).WithField("slug", slug).Error("Unknown collection")
				return
			}
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to load collection")
			return
		}

		if len(in.Mints) > 0 {
			err = self.store.AddMintsAsTracked(c.Request.Context(), slug, in.Mints)
			if err != nil {
				LOGE(c, err, http.StatusInternalServerError).Error("Failed to track mints")
				return
			}
			collection, err = self.store.GetCollection(c.Request.Context(), slug)
			if err != nil {
				LOGE(c, err, http.StatusInternalServerError).Error("Failed to reload collection")
				return
			}
		}

		if len(collection.MintAddresses) == 0 {
			LOGE(c, nil, http.StatusInternalServerError).
				WithField("slug", slug).
				Error("Collection has no tracked mints")
			return
		}

		err = self.ensureFilters(c, collection)
		if err != nil {
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to resolve collection filters")
			return
		}

		result, err := self.importer.ImportAll(c.Request.Context(), collection)
		if err != nil {
			self.monitor.GetReport().Tracker.Errors.ImporterRunFailures.Inc()
			if errors.Is(err, ingest.ErrUnscopedCollection) {
				LOGE(c, err, http.StatusBadRequest).Error("Collection cannot be scoped")
				return
			}
			LOGE(c, err, http.StatusInternalServerError).Error("Import failed")
			return
		}

		self.monitor.GetReport().Tracker.State.EventsImported.Add(uint64(result.EventsStored))

		LOG(c).WithField("slug", slug).
			WithField("pages", result.Pages).
			WithField("events", result.EventsStored).
			Info("Import finished")

		c.JSON(http.StatusOK, response.Import{Success: true, Result: result})
	}
}

// ensureFilters resolves collectionAddress/firstVerifiedCreator from the
// first tracked mint when neither is known yet, then persists them
func (self *Server) ensureFilters(c *gin.Context, collection *model.Collection) (err error) {
	if collection.HasFilters() {
		return
	}

	mint := collection.MintAddresses[0]
	collectionAddress, firstVerifiedCreator, err := self.filters.ResolveCollectionFilters(c.Request.Context(), mint)
	if err != nil {
		if errors.Is(err, helius.ErrNoVerifiedCreator) {
			return fmt.Errorf("mint %s has no verified creator: %w", mint, err)
		}
		return
	}

	err = self.store.SetFilters(c.Request.Context(), collection.Slug, collectionAddress, firstVerifiedCreator, len(collection.MintAddresses))
	if err != nil {
		return
	}

	collection.CollectionAddress = collectionAddress
	collection.FirstVerifiedCreator = firstVerifiedCreator
	return
}
