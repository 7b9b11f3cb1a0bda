package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightbot-service/internal/domain/repository"
	"flightbot-service/internal/infrastructure/config"
	"flightbot-service/internal/infrastructure/oauth"
	"flightbot-service/internal/infrastructure/persistence"
	"flightbot-service/internal/infrastructure/router"
	interfaceRepo "flightbot-service/internal/interface/repository"
	"flightbot-service/internal/interface/whatsapp"
	"flightbot-service/internal/usecase"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/metrics"
	"flightbot-service/pkg/utils"
	"flightbot-service/templates"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Flightbot Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("flightbot", prometheus.DefaultRegisterer)

	// Amadeus client, authenticated with the client credentials grant
	amadeusOAuth := oauth.NewAmadeusOAuth(cfg.AmadeusBaseURL, cfg.AmadeusAPIKey, cfg.AmadeusAPISecret, log)
	amadeusHTTP := amadeusOAuth.HTTPClient(ctx, cfg.HTTPClientTimeout)

	// Optional reference data in PostgreSQL
	var (
		referenceLocations repository.LocationRepository
		airlineRepository  repository.AirlineRepository
	)
	if cfg.PostgresURI != "" {
		log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		referenceLocations = interfaceRepo.NewGormLocationRepository(gormDB)
		airlineRepository = interfaceRepo.NewGormAirlineRepository(gormDB)
	}

	// Optional signal sink in MongoDB
	var (
		mongoClient      *mongo.Client
		signalRepository repository.SignalRepository
	)
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		signalRepository = interfaceRepo.NewMongoSignalRepository(db)
	}

	// Set up repositories
	locationRepository := interfaceRepo.NewCachedLocationRepository(
		interfaceRepo.NewChainLocationRepository(log,
			referenceLocations,
			interfaceRepo.NewAmadeusLocationRepository(amadeusHTTP, cfg.AmadeusBaseURL, log),
		),
		log,
	)
	offerRepository := interfaceRepo.NewAmadeusFlightOfferRepository(amadeusHTTP, cfg.AmadeusBaseURL, cfg.FlightSearchMax, log)
	conversationRepository := interfaceRepo.NewMemoryConversationRepository(cfg.ConversationTTL, log)
	whatsappRepository := interfaceRepo.NewGraphWhatsappRepository(
		cfg.WhatsAppAPIURL,
		cfg.WhatsAppPhoneNumberID,
		cfg.WhatsAppToken,
		cfg.HTTPClientTimeout,
		log,
	)

	// Flight flow
	signals := usecase.NewSignalRecorder(signalRepository, log)
	parser := utils.NewFlightQueryParser(locationRepository, log)
	searchService := usecase.NewFlightSearchService(offerRepository, airlineRepository, m, log)
	flightFlow := usecase.NewFlightFlow(parser, searchService, signals, m, cfg.ResultsPageSize, log)

	// Register intent handlers, order matters
	intentRouter := router.NewIntentRouter(log)
	intentRouter.Register(templates.NewResetIntentHandler(signals, log))
	intentRouter.Register(templates.NewGreetingIntentHandler())
	intentRouter.Register(templates.NewFlightIntentHandler(flightFlow))
	intentRouter.Register(templates.NewFallbackIntentHandler())

	processor := usecase.NewConversationProcessor(conversationRepository, whatsappRepository, intentRouter, m, log)
	rateLimiter := whatsapp.NewRateLimiter(cfg.RateLimitPerMinute, signals, m, log)
	webhook := whatsapp.NewWebhookHandler(processor, rateLimiter, cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, m, log)

	// Expire abandoned conversations and idle rate limiters
	go conversationRepository.StartJanitor(ctx, time.Minute)
	go rateLimiter.StartPruner(ctx, 5*time.Minute)

	// Set up HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	webhook.Register(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Server stopped", "conversations", conversationRepository.Len(), "cachedLocations", locationRepository.Len())
}
