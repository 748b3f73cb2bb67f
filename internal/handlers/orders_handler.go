package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/klynn-app/orders-api/internal/awsx"
	"github.com/klynn-app/orders-api/internal/orders"
	"github.com/klynn-app/orders-api/internal/validation"
	"github.com/klynn-app/orders-api/pkg/logger"
)

// OrderStore is the persistence surface the routes are built on.
type OrderStore interface {
	List(ctx context.Context) ([]orders.Order, error)
	Get(ctx context.Context, id string) (*orders.Order, error)
	Create(ctx context.Context, o orders.Order) (*orders.Order, error)
	Update(ctx context.Context, id string, patch orders.Patch) (*orders.Order, error)
	Delete(ctx context.Context, id string) error
}

// EventPublisher emits order lifecycle events after a successful write.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, evt awsx.OrderEvent, attributes map[string]string) error
}

// HandlerConfig groups dependencies for the orders routes.
type HandlerConfig struct {
	Store    OrderStore
	Events   EventPublisher // nil disables event publishing
	Validate *validatorv10.Validate
	Log      logger.Logger
}

// RegisterOrdersRoutes wires the order CRUD routes onto the engine.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	api := r.Group("/api")

	api.GET("/orders", func(c *gin.Context) {
		records, err := cfg.Store.List(c.Request.Context())
		if err != nil {
			writeStoreError(c, cfg.Log, err)
			return
		}
		c.JSON(http.StatusOK, records)
	})

	api.GET("/orders/:id", func(c *gin.Context) {
		record, err := cfg.Store.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeStoreError(c, cfg.Log, err)
			return
		}
		c.JSON(http.StatusOK, record)
	})

	api.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validate); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		created, err := cfg.Store.Create(ctx, req.Order())
		if err != nil {
			writeStoreError(c, cfg.Log, err)
			return
		}

		if cfg.Events != nil {
			evt := awsx.OrderEvent{OrderID: created.ID, Status: string(created.Status)}
			attrs := map[string]string{
				"order_id":       created.ID,
				"correlation_id": c.GetHeader("X-Request-Id"),
			}
			// best effort: the order is already durable
			if err := cfg.Events.PublishOrderCreated(ctx, evt, attrs); err != nil {
				cfg.Log.Warn("publish order created event",
					logger.String("order_id", created.ID), logger.Err(err))
			}
		}

		c.JSON(http.StatusOK, created)
	})

	api.PUT("/orders/:id", func(c *gin.Context) {
		var req validation.UpdateOrderRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validate); err != nil {
			return
		}

		updated, err := cfg.Store.Update(c.Request.Context(), c.Param("id"), req.Patch())
		if err != nil {
			writeStoreError(c, cfg.Log, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	api.DELETE("/orders/:id", func(c *gin.Context) {
		if err := cfg.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeStoreError(c, cfg.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	})
}

// writeStoreError maps a store failure to the HTTP contract. Each error kind
// carries a stable "kind" field for client-side branching.
func writeStoreError(c *gin.Context, log logger.Logger, err error) {
	var ve *orders.ValidationError
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found", "kind": "not_found"})
	case errors.Is(err, orders.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "kind": "invalid_id"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": ve.Error(),
			"kind":    "validation_failed",
			"fields":  ve.Fields,
		})
	case errors.Is(err, orders.ErrStoreUnavailable):
		log.Error("order store unavailable", logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "kind": "store_unavailable"})
	default:
		log.Error("order store failure", logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "kind": "internal"})
	}
}
