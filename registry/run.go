// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"a2aregistry/server/shared/logger"
)

// Application readiness state for health checks. The health endpoint
// responds immediately while initialization (database, Redis) happens.
var appReady atomic.Bool

// Global router and CORS handler - the server starts with /health only
// and gains the remaining routes once initialization completes.
var (
	globalRouter *mux.Router
	globalCORS   *cors.Cors
)

// initServerImmediately starts the HTTP server with just the /health
// endpoint so load balancer health checks pass during the potentially
// slow initialization phase. Remaining routes are added afterwards; the
// server itself never restarts.
func initServerImmediately(port string) {
	globalRouter = mux.NewRouter()

	globalCORS = cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	globalRouter.HandleFunc("/health", healthHandler).Methods("GET")

	go func() {
		handler := globalCORS.Handler(globalRouter)
		log.Printf("🚀 A2A Registry starting on port %s (status: starting)", port)
		if err := http.ListenAndServe(":"+port, handler); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Small delay to ensure the server is accepting connections
	time.Sleep(50 * time.Millisecond)
	log.Println("✅ Health endpoint ready - initialization can proceed safely")
}

// healthHandler returns health status based on initialization state.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "starting"
	if appReady.Load() {
		status = "healthy"
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"service":   "a2a-registry",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// Run is the exported entry point for the registry service.
//
// Environment variables:
//
//	PORT              - HTTP server port (default: 3000)
//	DATABASE_URL      - PostgreSQL connection string, or the separate
//	                    DATABASE_HOST/PORT/NAME/USER/PASSWORD/SSLMODE vars
//	REDIS_URL         - Redis connection URL (optional; caching disabled
//	                    when unset)
//	CACHE_TTL         - entry cache TTL as a Go duration (default: 1h)
//	SEARCH_URL        - semantic search service base URL (optional)
func Run() {
	port := getEnv("PORT", "3000")
	initServerImmediately(port)

	appLog := logger.New("registry")

	dbURL := buildDatabaseURL()
	if dbURL == "" {
		log.Fatal("❌ DATABASE_URL (or DATABASE_HOST/DATABASE_PASSWORD) required")
	}

	// Connect with retry - container DNS can take a few seconds to come
	// up after startup, so an immediate failure is not conclusive.
	ctx := context.Background()
	maxRetries := 5
	var store *EntryStore
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		store, err = OpenStore(ctx, dbURL)
		if err == nil {
			log.Printf("✅ Connected to PostgreSQL (attempt %d/%d)", attempt, maxRetries)
			break
		}
		if attempt < maxRetries {
			backoff := time.Duration(attempt*2) * time.Second
			log.Printf("⚠️  Database connection failed (attempt %d/%d): %v", attempt, maxRetries, err)
			log.Printf("   Retrying in %v...", backoff)
			time.Sleep(backoff)
		}
	}
	if err != nil {
		log.Fatalf("❌ Failed to connect to database after %d attempts: %v", maxRetries, err)
	}
	defer func() { _ = store.Close() }()

	log.Println("Running database migrations...")
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("❌ Database migrations failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Redis is optional: without it every read falls through to the store.
	var cache *EntryCache
	redisURL := os.Getenv("REDIS_URL")
	if redisURL != "" {
		cacheTTL := DefaultCacheTTL
		if v := os.Getenv("CACHE_TTL"); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				cacheTTL = parsed
			} else {
				log.Printf("⚠️  Invalid CACHE_TTL %q, using default %v", v, DefaultCacheTTL)
			}
		}

		cache, err = NewEntryCacheFromURL(ctx, redisURL, cacheTTL)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
			log.Println("Falling back to store-only reads")
			cache = nil
		} else {
			log.Printf("✅ Redis entry cache enabled (ttl=%v)", cacheTTL)
			defer func() { _ = cache.Close() }()
		}
	} else {
		log.Println("ℹ️  REDIS_URL not set - entry caching disabled")
	}

	searchURL := os.Getenv("SEARCH_URL")
	if searchURL == "" {
		log.Println("ℹ️  SEARCH_URL not set - semantic search disabled")
	} else {
		log.Printf("✅ Semantic search proxy configured: %s", searchURL)
	}

	service := NewRegistryService(store, cache, appLog)
	handlers := NewHandlers(service, NewSearchProxy(searchURL), logger.New("registry-api"))

	// Register all routes on the global router (server is already
	// running with /health)
	handlers.RegisterRoutes(globalRouter)
	globalRouter.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	appReady.Store(true)
	log.Println("✅ All initialization complete - application ready")
	log.Printf("🚀 A2A Registry fully operational on port %s", port)

	// Block forever - the server runs in its goroutine
	select {}
}

// buildDatabaseURL composes the connection string from separate env
// vars (12-Factor style), falling back to a legacy DATABASE_URL.
func buildDatabaseURL() string {
	dbHost := os.Getenv("DATABASE_HOST")
	dbPassword := os.Getenv("DATABASE_PASSWORD")

	if dbHost == "" || dbPassword == "" {
		return os.Getenv("DATABASE_URL")
	}

	dbPort := getEnv("DATABASE_PORT", "5432")
	dbName := getEnv("DATABASE_NAME", "a2a_registry")
	dbUser := getEnv("DATABASE_USER", "registry_app")
	dbSSLMode := getEnv("DATABASE_SSLMODE", "require")

	// url.UserPassword handles userinfo encoding; query escaping is the
	// wrong rule set for passwords containing '/' or ':'
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbUser, dbPassword),
		Host:     dbHost + ":" + dbPort,
		Path:     "/" + dbName,
		RawQuery: "sslmode=" + dbSSLMode,
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
