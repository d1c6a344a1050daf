package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"commerce-api/internal/cache"
	"commerce-api/internal/cart"
	"commerce-api/internal/config"
	"commerce-api/internal/database"
	"commerce-api/internal/events"
	"commerce-api/internal/handlers"
	"commerce-api/internal/obs"
	"commerce-api/internal/repository"
	"commerce-api/internal/routes"
	"commerce-api/internal/storage"
)

func main() {
	cfg := config.LoadConfig()
	logger := obs.NewLogger(slog.LevelInfo)

	var products storage.ProductStore
	var carts storage.CartStore

	switch cfg.Backend {
	case config.BackendFile:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			log.Fatal("create data dir:", err)
		}
		products = storage.NewFileProductStore(cfg.DataDir)
		carts = storage.NewFileCartStore(cfg.DataDir)
	case config.BackendMongo:
		client := database.Connect(cfg.MongoURI)
		defer database.Disconnect(client)
		db := client.Database(cfg.MongoDB)
		products = storage.NewMongoProductStore(db.Collection("products"))
		carts = storage.NewMongoCartStore(db.Collection("carts"))
	default:
		log.Fatal("unknown STORE_BACKEND: ", cfg.Backend)
	}

	sink := events.NewLogSink(logger)
	productRepo := repository.NewProductRepository(products, sink)
	cartRepo := repository.NewCartRepository(carts, products, sink)
	engine := cart.NewEngine(carts, products, sink)

	c := cache.New(cfg.CacheTTL)
	productHandler := handlers.NewProductHandler(productRepo, c, logger)
	cartHandler := handlers.NewCartHandler(cartRepo, engine, logger)

	router := gin.New()
	router.Use(gin.Recovery(), handlers.WithRequestID(), handlers.WithLogging(logger))
	routes.RegisterRoutes(router, productHandler, cartHandler)

	logger.Info("server starting", "port", cfg.Port, "backend", cfg.Backend)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
