package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/klynn-app/orders-api/internal/awsx"
	"github.com/klynn-app/orders-api/internal/config"
	"github.com/klynn-app/orders-api/internal/handlers"
	"github.com/klynn-app/orders-api/internal/orders"
	"github.com/klynn-app/orders-api/internal/validation"
	"github.com/klynn-app/orders-api/pkg/logger"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Orders API is running. See /api/orders.")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

func main() {
	// optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	ctx := context.Background()
	clients, err := awsx.NewClients(ctx, cfg.Region)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	v := validation.New()
	store := orders.NewStore(clients.DynamoDB, cfg.Store.TableName, validation.NewOrderValidator(v), cfg.Store.Timeout)

	handlerCfg := handlers.HandlerConfig{
		Store:    store,
		Validate: v,
		Log:      appLog,
	}
	if cfg.Events.QueueURL != "" {
		handlerCfg.Events = awsx.NewPublisher(clients.SQS, cfg.Events.QueueURL)
	} else {
		appLog.Warn("ORDERS_QUEUE_URL not set, order events disabled")
	}

	r := setupRouter(handlerCfg)

	if cfg.Server.RunLocal {
		addr := ":" + cfg.Server.Port
		appLog.Info("running local server", logger.String("addr", addr))
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
