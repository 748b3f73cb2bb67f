package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/klynn-app/orders-api/internal/awsx"
	"github.com/klynn-app/orders-api/internal/orders"
	"github.com/klynn-app/orders-api/pkg/logger"
)

// OrderStore is the slice of the store the worker needs.
type OrderStore interface {
	Get(ctx context.Context, id string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, id string, expected, next orders.Status) error
}

// Metrics records processed-order counts.
type Metrics interface {
	OrdersProcessed(ctx context.Context, count float64) error
}

// Processor consumes order-created events and advances newly created orders
// from pending to processing.
type Processor struct {
	store   OrderStore
	metrics Metrics // nil disables metric emission
	log     logger.Logger
}

func NewProcessor(store OrderStore, metrics Metrics, log logger.Logger) *Processor {
	return &Processor{
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// Handle receives an SQS batch event and processes each message. Returning an
// error makes the runtime redeliver the batch; exhausted messages go to the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	processed := 0.0
	for _, rec := range ev.Records {
		ok, err := p.processMessage(ctx, rec)
		if err != nil {
			p.log.Error("worker error", logger.Err(err))
			return err
		}
		if ok {
			processed++
		}
	}

	if p.metrics != nil && processed > 0 {
		if err := p.metrics.OrdersProcessed(ctx, processed); err != nil {
			// metrics are best effort, never fail the batch over them
			p.log.Warn("emit processed metric", logger.Err(err))
		}
	}
	return nil
}

// processMessage advances a single order. The bool result reports whether
// this delivery performed the transition (duplicates return false, nil).
func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) (bool, error) {
	var evt awsx.OrderEvent
	if err := json.Unmarshal([]byte(rec.Body), &evt); err != nil {
		return false, fmt.Errorf("invalid message body: %w", err)
	}

	msgLog := p.log.With(logger.String("order_id", evt.OrderID))
	msgLog.Info("received order event", logger.String("status", evt.Status))

	err := p.store.UpdateStatus(ctx, evt.OrderID, orders.StatusPending, orders.StatusProcessing)
	if errors.Is(err, orders.ErrStatusMismatch) {
		// Competing worker or an order the API has already moved on; look at
		// the current state to decide whether this delivery is a duplicate.
		current, getErr := p.store.Get(ctx, evt.OrderID)
		if errors.Is(getErr, orders.ErrNotFound) {
			// deleted between creation and delivery; nothing to do
			msgLog.Info("order deleted before processing")
			return false, nil
		}
		if getErr != nil {
			return false, fmt.Errorf("fetch order after mismatch: %w", getErr)
		}
		switch current.Status {
		case orders.StatusProcessing, orders.StatusShipped, orders.StatusDelivered:
			msgLog.Info("duplicate delivery, order already advanced",
				logger.String("status", string(current.Status)))
			return false, nil
		case orders.StatusCanceled:
			msgLog.Info("order canceled before processing")
			return false, nil
		default:
			return false, fmt.Errorf("unexpected status for order %s: %s", evt.OrderID, current.Status)
		}
	}
	if err != nil {
		return false, fmt.Errorf("update status to processing: %w", err)
	}

	msgLog.Info("order moved to processing")
	return true, nil
}
