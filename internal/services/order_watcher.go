package services

import (
	"context"
	"time"

	"godeliver/internal/models"
	"godeliver/pkg/database"
	"godeliver/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const watchRetryDelay = 5 * time.Second

// OrderWatcher tails the orders change stream and feeds every document
// change to the dispatch orchestrator and the cleanup listener. It is the
// serverless document-trigger surface of the engine: each event is handled
// in its own goroutine, so changes to different orders run fully in
// parallel.
type OrderWatcher struct {
	collection *mongo.Collection
	dispatch   DispatchService
	cleanup    CleanupService
	logger     *logger.Logger
}

func NewOrderWatcher(db *database.MongoDB, dispatch DispatchService, cleanup CleanupService, log *logger.Logger) *OrderWatcher {
	return &OrderWatcher{
		collection: db.Collection("orders"),
		dispatch:   dispatch,
		cleanup:    cleanup,
		logger:     log,
	}
}

type orderChangeEvent struct {
	OperationType            string        `bson:"operationType"`
	FullDocument             *models.Order `bson:"fullDocument"`
	FullDocumentBeforeChange *models.Order `bson:"fullDocumentBeforeChange"`
}

// Run blocks until ctx is cancelled, reopening the stream after transient
// failures. A failed event handler is logged and dropped, never propagated:
// crashing the watcher would make the platform replay the whole stream.
func (w *OrderWatcher) Run(ctx context.Context) {
	for {
		if err := w.watch(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.WithError(err).Warn("Order change stream closed, reopening")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}
	}
}

func (w *OrderWatcher) watch(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.M{"$in": []string{"insert", "update", "replace"}}},
		}}},
	}

	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)

	stream, err := w.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	w.logger.Info("Watching order collection for dispatch triggers")

	for stream.Next(ctx) {
		var event orderChangeEvent
		if err := stream.Decode(&event); err != nil {
			w.logger.WithError(err).Error("Failed to decode order change event")
			continue
		}

		go w.handle(ctx, event.FullDocumentBeforeChange, event.FullDocument)
	}

	return stream.Err()
}

func (w *OrderWatcher) handle(ctx context.Context, before, after *models.Order) {
	if after == nil {
		return
	}

	if err := w.dispatch.HandleOrderChange(ctx, before, after); err != nil {
		w.logger.WithError(err).WithOrderID(after.ID).Error("Dispatch handler failed")
	}

	if err := w.cleanup.HandleOrderChange(ctx, before, after); err != nil {
		w.logger.WithError(err).WithOrderID(after.ID).Error("Cleanup handler failed")
	}
}
