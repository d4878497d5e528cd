package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ptocal/config"
	"ptocal/handlers"
	"ptocal/middleware"
	"ptocal/routes"
	"ptocal/services/calendar"
	"ptocal/services/pto"
	"ptocal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Sync client: Google-backed in production, in-memory in simulation mode.
	var client calendar.SyncClient
	if config.AppConfig.SimulationMode {
		logger.Sugar().Info("simulation mode: using in-memory calendar")
		client = calendar.NewMemorySyncClient(config.AppConfig.CalendarName, config.AppConfig.BusinessDayHours)
	} else {
		session := calendar.NewSessionManager(
			config.AppConfig.GoogleClientID,
			config.AppConfig.GoogleClientSecret,
			config.AppConfig.GoogleRefreshToken,
			logger,
		)
		if config.AppConfig.SessionCacheEnabled {
			utils.InitSessionCache()
			if utils.SessionClient != nil {
				session.Store = &utils.RedisSessionStore{Client: utils.SessionClient, TTL: time.Hour}
				session.Restore(context.Background())
			}
		}
		client = calendar.NewGoogleSyncClient(
			config.AppConfig.CalendarName,
			config.AppConfig.BusinessDayHours,
			session,
			logger,
		)
	}

	ptoService := &pto.DefaultPTOService{
		Client: client,
		Hours: pto.BusinessHours{
			Day:   config.AppConfig.BusinessDayHours,
			Start: config.AppConfig.BusinessDayStart,
			End:   config.AppConfig.BusinessDayEnd,
		},
		Logger: logger,
	}

	ptoHandler := handlers.NewPTOHandler(ptoService, logger)
	eventHandler := handlers.NewEventHandler(client, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router, ptoHandler, eventHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
