package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/cache"
	"github.com/tradewindhq/tradewind/internal/pkg/constants"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/env"
	"github.com/tradewindhq/tradewind/internal/pkg/jobqueue"
	"github.com/tradewindhq/tradewind/internal/pkg/marketdata"
	"github.com/tradewindhq/tradewind/internal/pkg/router"
)

func main() {
	app := NewApplication()

	feedCtx, feedCancel := context.WithCancel(context.Background())
	feed := startMarketDataFeed(feedCtx)

	// graceful shutdown on SIGINT/SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		feedCancel()
		if feed != nil {
			feed.Close()
		}
		jobqueue.GetManager().Stop()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	if err := models.LoadSettings(database.GetDB()); err != nil {
		log.Printf("Settings load failed, using defaults: %v", err)
	}
	repository.InitializeFactory(database.GetDB())

	// background workers: alert mails, webhook archival, counter flushing
	jobqueue.GetManager().Start()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/tradewind to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	engine := html.New(basePath+"views", ".html")
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })

	// init fiber app
	app := fiber.New(fiber.Config{
		Views: engine,
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// member avatars
	app.Static(constants.AvatarsRoute, basePath+"public/"+constants.AvatarsPath, fiber.Static{
		CacheDuration: 10 * time.Second,
		MaxAge:        604800, // 7 days
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}

// startMarketDataFeed connects the websocket quote feed when a feed URL is
// configured. Quotes flow into the Redis cache for the portfolio and quote
// endpoints.
func startMarketDataFeed(ctx context.Context) *marketdata.Manager {
	feedURL := env.GetEnv("MARKET_FEED_URL", "")
	if feedURL == "" {
		log.Println("MARKET_FEED_URL not set, realtime quotes disabled")
		return nil
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "marketdata").Logger()
	feed := marketdata.NewManager(feedURL, logger, marketdata.WithQuoteHook(marketdata.CacheQuote))
	feed.Start(ctx)
	marketdata.SetDefault(feed)
	return feed
}
