package worker

import (
	"context"

	"catalog-picker/internal/broker"
	"catalog-picker/internal/service"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
)

// HostWorker consumes host lifecycle events and applies them to sessions
type HostWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewHostWorker creates a new host worker
func NewHostWorker(consumer *broker.Consumer, hostEvents *service.HostEventHandler) *HostWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnHostStarted(hostEvents.HandleStarted)
	eventHandler.OnHostReady(hostEvents.HandleReady)

	return &HostWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.Named("host-worker"),
	}
}

// Start starts the worker
func (w *HostWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting host worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *HostWorker) Stop() error {
	w.logger.Info("Stopping host worker")
	return w.consumer.Close()
}
