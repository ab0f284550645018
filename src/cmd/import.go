package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/one-of-one-tools/marketsync/src/ingest"
	"github.com/one-of-one-tools/marketsync/src/stats"
	"github.com/one-of-one-tools/marketsync/src/storage"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

func init() {
	RootCmd.AddCommand(importCmd)
}

// One-shot backfill of a single collection, without starting the server
var importCmd = &cobra.Command{
	Use:   "import <slug>",
	Short: "Rebuild one collection's stats from its full event history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		slug := args[0]
		log := logger.NewSublogger("import-cmd")

		db, err := model.NewConnection(ctx, conf, "import")
		if err != nil {
			return
		}

		store := storage.NewStore().
			WithDB(db)

		floors := stats.NewFloorCalculator().
			WithDB(db)

		heliusClient := helius.NewClient(&conf.Helius)

		importer := ingest.NewImporter(conf).
			WithEventSource(heliusClient).
			WithStore(store).
			WithFloorSource(floors)

		collection, err := store.GetCollection(ctx, slug)
		if err != nil {
			return
		}

		if !collection.HasFilters() {
			if len(collection.MintAddresses) == 0 {
				return errors.New("collection has no tracked mints")
			}

			collectionAddress, firstVerifiedCreator, err := heliusClient.ResolveCollectionFilters(ctx, collection.MintAddresses[0])
			if err != nil {
				return err
			}
			err = store.SetFilters(ctx, slug, collectionAddress, firstVerifiedCreator, len(collection.MintAddresses))
			if err != nil {
				return err
			}
			collection.CollectionAddress = collectionAddress
			collection.FirstVerifiedCreator = firstVerifiedCreator
		}

		result, err := importer.ImportAll(ctx, collection)
		if err != nil {
			return
		}

		log.WithField("slug", slug).
			WithField("pages", result.Pages).
			WithField("events_total", result.EventsTotal).
			WithField("events_stored", result.EventsStored).
			Info("Import finished")
		return
	},
}
