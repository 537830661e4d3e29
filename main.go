package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"gardentracker/config"
	"gardentracker/handlers"
	"gardentracker/internal/notify"
	"gardentracker/internal/store"
	"gardentracker/middleware"
	"gardentracker/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	flags := pflag.NewFlagSet("gardentracker", pflag.ExitOnError)
	configFile := flags.String("config", "", "Path to a YAML config file")
	flags.String("port", "3333", "Port to listen on")
	flags.String("assets_dir", "./assets", "Directory holding the tracker page")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	middleware.InitPrometheus()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rowStore, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize record store: ", err)
	}
	defer cleanup()

	notifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize notifier: ", err)
	}

	recordService := services.NewRecordService(rowStore, notifier, time.Now)
	recordHandler := handlers.NewRecordHandler(recordService, cfg.AssetsDir)
	healthHandler := handlers.NewHealthHandler(rowStore)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.CleanupVisitors()

	r := mux.NewRouter()
	r.Use(rateLimiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	if cfg.MetricsUser != "" {
		r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass, promhttp.Handler()))
	}
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	fs := http.FileServer(http.Dir(cfg.AssetsDir))
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", fs))

	r.HandleFunc("/", recordHandler.Index).Methods("GET")
	r.HandleFunc("/", recordHandler.Action).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type"}),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s (store backend: %s, %d recipients)",
			cfg.Port, cfg.StoreBackend, len(cfg.GardenerEmails))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server: ", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// buildStore constructs the configured RowStore and a cleanup func for its
// underlying resources.
func buildStore(ctx context.Context, cfg *config.Config) (store.RowStore, func(), error) {
	switch cfg.StoreBackend {
	case "sheets":
		opts, err := cfg.GoogleClientOptions()
		if err != nil {
			return nil, nil, err
		}
		st, err := store.NewSheetsStore(ctx, cfg.SpreadsheetID, cfg.SheetName, opts...)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using Google Sheets store (spreadsheet %s)", cfg.SpreadsheetID)
		return st, func() {}, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Println("Using PostgreSQL store")
		return store.NewPostgresStore(pool), pool.Close, nil

	default:
		log.Println("Using in-memory store; records are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}

// buildNotifier wires the Gmail notifier, or nothing when no recipients are
// configured.
func buildNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, error) {
	if len(cfg.GardenerEmails) == 0 {
		log.Println("No gardener emails configured; watering notifications disabled")
		return nil, nil
	}
	opts, err := cfg.GoogleClientOptions()
	if err != nil {
		return nil, err
	}
	return notify.NewGmailNotifier(ctx, cfg.GardenerEmails, cfg.SenderName, opts...)
}
