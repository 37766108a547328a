package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-board/infrastructure/cache"
	"job-board/infrastructure/clients/groq"
	"job-board/infrastructure/configuration"
	"job-board/infrastructure/logger"
	"job-board/infrastructure/metrics"
	"job-board/infrastructure/persistence"
	"job-board/infrastructure/realtime"
	httpHandler "job-board/interfaces/http"
	"job-board/server"
	"job-board/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// OS env keeps precedence over these files.
	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.Reload()
	logger.SetLevel(configuration.C.Logger.Level)

	app := configuration.C.App
	cacheCfg := configuration.C.Cache
	if err := app.Validate(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Refusing to start")
		os.Exit(1)
	}

	if err := persistence.Migrate(configuration.C.Database.Psql); err != nil {
		logger.GetLogger().WithField("error", err).Error("Database migration failed")
		os.Exit(1)
	}
	db, err := persistence.NewPostgreSQLDB(configuration.C.Database.Psql)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	logger.GetLogger().Info("Database connected.")

	recorder := metrics.NewRecorder(prometheus.NewRegistry())

	// The adapter connects on first use; a missing Redis only degrades reads.
	redisCache := cache.NewRedisCache(cache.Options{
		URL:            configuration.C.Redis.URL,
		ConnectTimeout: cacheCfg.ConnectTimeout(),
		OpTimeout:      cacheCfg.OpTimeout(),
		RetryBackoff:   cacheCfg.RetryBackoff(),
	}, recorder)

	userRepository := persistence.NewUserRepository(db)
	listingRepository := persistence.NewListingRepository(db)

	listingHub := realtime.NewListingHub()
	listingUsecase := usecase.NewListingUsecase(listingRepository, redisCache, usecase.ListingCacheConfig{
		PageTTL:  cacheCfg.PageTTL(),
		CountTTL: cacheCfg.CountTTL(),
		ItemTTL:  cacheCfg.ItemTTL(),
	}, recorder).WithBroadcaster(listingHub.Broadcast)
	userUsecase := usecase.NewUserUsecase(userRepository, app.SecretKey, time.Duration(app.TokenTTLHours)*time.Hour)

	var descriptionUsecase usecase.IDescriptionUsecase
	if configuration.C.LLM.APIKey != "" {
		descriptionUsecase = usecase.NewDescriptionUsecase(groq.NewChatClient(configuration.C.LLM))
	} else {
		logger.GetLogger().Info("GROQ_API_KEY not set - description generation disabled")
		descriptionUsecase = usecase.NewDescriptionUsecase(nil)
	}

	router := server.InitiateRouter(
		httpHandler.NewUserHandler(userUsecase),
		httpHandler.NewListingHandler(listingUsecase),
		httpHandler.NewDescriptionHandler(descriptionUsecase),
		httpHandler.NewHealthHandler(),
		userRepository,
		listingHub,
		recorder,
		app.SecretKey,
		app.AllowedOrigins,
	)

	logger.GetLogger().WithFields(map[string]interface{}{
		"port":  app.Port,
		"redis": configuration.C.Redis.URL,
	}).Info("Starting application")
	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case sig := <-interrupt:
		logger.GetLogger().WithField("signal", sig.String()).Info("Application shutdown requested")
	case <-ctx.Done():
	}

	// SSE streams never go idle; end them so Shutdown can drain the rest.
	listingHub.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while shutting down server")
	}
	cancel()
	if err := redisCache.Close(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while closing cache")
	}
	if err := db.Close(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while closing database")
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
