package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/retail-dashboard/ledger-service/internal/events"
	"github.com/retail-dashboard/ledger-service/internal/handler"
	"github.com/retail-dashboard/ledger-service/internal/repository"
	"github.com/retail-dashboard/ledger-service/internal/sentiment"
	"github.com/retail-dashboard/ledger-service/internal/service"
	"github.com/retail-dashboard/ledger-service/pkg/config"
	"github.com/retail-dashboard/ledger-service/pkg/middleware"
	pkgtls "github.com/retail-dashboard/ledger-service/pkg/tls"
)

func main() {
	// .env is optional; real deployments configure the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	products, reviews, orders, err := newStores(cfg)
	if err != nil {
		logger.Fatal("Failed to create stores", zap.Error(err))
	}

	ledger := service.NewLedgerService(products, reviews, orders, sentiment.NewKeywordClassifier(), logger)
	ledgerHandler := handler.NewLedgerHandler(ledger, logger)

	var publisher *events.KafkaPublisher
	var consumer *events.RestockConsumer
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic, cfg.StockEventsTopic, logger)
		ledger.SetPublisher(publisher)

		consumer = events.NewRestockConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.RestockTopic, ledger, logger)
		consumer.Start()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())

	api := router.Group(cfg.APIBase)
	{
		api.GET("/products", ledgerHandler.ListProducts)
		api.GET("/products/:id", ledgerHandler.GetProduct)
		api.POST("/products", ledgerHandler.CreateProduct)
		api.PUT("/products/:id", ledgerHandler.UpdateProduct)
		api.GET("/reviews/:productId", ledgerHandler.ListReviews)
		api.POST("/reviews", ledgerHandler.CreateReview)
		api.POST("/checkout", ledgerHandler.Checkout)
		api.GET("/dashboard-data", ledgerHandler.DashboardData)
		api.POST("/restock", ledgerHandler.Restock)
		api.GET("/analytics", ledgerHandler.Analytics)
		api.GET("/health", ledgerHandler.Health)
	}

	tlsConfig, err := pkgtls.LoadTLSConfig(&cfg.TLS, logger)
	if err != nil {
		logger.Fatal("Failed to load TLS config", zap.Error(err))
	}
	defer pkgtls.Cleanup()

	srv := &http.Server{
		Addr:      ":" + cfg.Port,
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.Bool("local_mode", cfg.LocalMode),
			zap.Bool("tls", tlsConfig != nil))

		var err error
		if tlsConfig != nil {
			go pkgtls.WatchCertificates(&cfg.TLS, logger)
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if consumer != nil {
		consumer.Stop()
	}
	if publisher != nil {
		_ = publisher.Close()
	}
	logger.Info("Server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = lvl
	return zapCfg.Build()
}

func newStores(cfg *config.Config) (repository.ProductStore, repository.ReviewStore, repository.OrderStore, error) {
	if cfg.LocalMode {
		return repository.NewFileStores(cfg.DataDir)
	}

	client, err := repository.NewDynamoDBClient(context.Background(), cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return repository.NewDynamoProductStore(client, cfg.ProductTableName),
		repository.NewDynamoReviewStore(client, cfg.ReviewTableName),
		repository.NewDynamoOrderStore(client, cfg.OrderTableName),
		nil
}
