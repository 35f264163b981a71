package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v76"
	"google.golang.org/api/option"

	"akneDenikAPI/handlers"
	"akneDenikAPI/internal/config"
	"akneDenikAPI/internal/logger"
	"akneDenikAPI/internal/metrics"
	"akneDenikAPI/internal/notification"
	"akneDenikAPI/internal/program"
	"akneDenikAPI/internal/repository"
	"akneDenikAPI/internal/storage"
	"akneDenikAPI/middleware"
	"akneDenikAPI/services"

	_ "net/http/pprof"
)

// store is implemented by every repository backend.
type store interface {
	services.DayContentStore
	services.LedgerStore
	services.MessageStore
	services.ProductStore
	services.SubscriptionStore
	handlers.Pinger
}

func main() {
	cfg, cfgErr := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfgErr != nil {
		log.Fatal("Invalid configuration", "error", cfgErr)
	}

	// Client constructors keep their context for token refreshes, so it must outlive startup.
	ctx := context.Background()

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}, firebaseCredentials(cfg, log)...)
	if err != nil {
		log.Fatal("Error initializing firebase app", "error", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatal("Error getting auth client", "error", err)
	}

	st, closeStore := openStore(ctx, cfg, app, log)
	defer closeStore()

	storageClient, err := app.Storage(ctx)
	if err != nil {
		log.Fatal("Error getting storage client", "error", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		log.Fatal("Error opening storage bucket", "bucket", cfg.FirebaseStorageBucket, "error", err)
	}

	var push services.PushNotificationProvider
	if messagingClient, err := app.Messaging(ctx); err != nil {
		log.Warn("Could not initialize FCM, replies will not be pushed", "error", err)
	} else {
		push = notification.NewFCMService(messagingClient, log.With("service", "fcm"))
		log.Info("FCM Push Provider initialized successfully")
	}

	stripe.Key = cfg.StripeSecretKey

	metrics.Register(prometheus.DefaultRegisterer)
	middleware.InitPrometheus(prometheus.DefaultRegisterer)

	contentService := services.NewContentService(st, program.NewGenerator(nil), cfg.ContentCacheTTL, log.With("service", "content"))
	progressService := services.NewProgressService(st, contentService, log.With("service", "progress"))
	photoService := services.NewPhotoService(storage.NewFirebaseBucket(bucket, cfg.FirebaseStorageBucket), log.With("service", "photos"))
	messageService := services.NewMessageService(st, push, log.With("service", "messages"))
	productService := services.NewProductService(st)
	subscriptionService := services.NewSubscriptionService(st, services.CheckoutConfig{
		Prices:     cfg.StripePrices,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	}, log.With("service", "subscriptions"))

	limiter := middleware.NewRateLimiter(5, 30)
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go limiter.Cleanup(rootCtx)

	router := handlers.NewRouter(handlers.Routes{
		Verifier:    authClient,
		Limiter:     limiter,
		Log:         log.With("middleware", "auth"),
		Health:      handlers.NewHealthHandler(st),
		Days:        handlers.NewDayHandler(progressService, photoService),
		Content:     handlers.NewContentHandler(contentService),
		Messages:    handlers.NewMessageHandler(messageService),
		Products:    handlers.NewProductHandler(productService),
		Payments:    handlers.NewPaymentHandler(subscriptionService, cfg.StripeWebhookSecret, log.With("handler", "payments")),
		Metrics:     promhttp.Handler(),
		MetricsUser: cfg.MetricsUser,
		MetricsPass: cfg.MetricsPass,
		Pprof:       http.DefaultServeMux,
		PprofSecret: cfg.PprofSecret,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting server", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Got signal", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", "error", err)
	}
	log.Info("Server shutdown complete")
}

// firebaseCredentials prefers inline JSON, then the key file, then application default credentials.
func firebaseCredentials(cfg config.Config, log *logger.Logger) []option.ClientOption {
	if len(cfg.FirebaseCredentialsJSON) > 0 {
		log.Info("Firebase: initializing from FIREBASE_CREDENTIALS_JSON")
		return []option.ClientOption{option.WithCredentialsJSON(cfg.FirebaseCredentialsJSON)}
	}
	if _, err := os.Stat(cfg.FirebaseCredentialsFile); err == nil {
		log.Info("Firebase: initializing from local file", "path", cfg.FirebaseCredentialsFile)
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredentialsFile)}
	}
	log.Info("Firebase: using application default credentials")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, app *firebase.App, log *logger.Logger) (store, func()) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to parse database URL", "error", err)
		}
		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			log.Fatal("Failed to create connection pool", "error", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Fatal("Failed to ping database", "error", err)
		}
		pg := repository.NewPostgres(dbPool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to apply schema", "error", err)
		}
		log.Info("Successfully connected to Postgres")
		return pg, func() {
			log.Info("Closing database connection pool...")
			dbPool.Close()
		}

	case config.BackendMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		return repository.NewMemory(), func() {}

	default:
		client, err := app.Firestore(ctx)
		if err != nil {
			log.Fatal("Error getting firestore client", "error", err)
		}
		log.Info("Successfully connected to Firestore")
		return repository.NewFirestore(client), func() { closeFirestore(client, log) }
	}
}

func closeFirestore(client *firestore.Client, log *logger.Logger) {
	if err := client.Close(); err != nil {
		log.Warn("Error closing firestore client", "error", err)
	}
}
