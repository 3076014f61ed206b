package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/AiGarnet/garnet-questionnaire/internal/api"
	"github.com/AiGarnet/garnet-questionnaire/internal/cache"
	"github.com/AiGarnet/garnet-questionnaire/internal/category"
	"github.com/AiGarnet/garnet-questionnaire/internal/reconcile"
	"github.com/AiGarnet/garnet-questionnaire/internal/remote"
)

func logConfig() {
	log.Println("=== Garnet Questionnaire Configuration ===")

	envVars := []struct {
		name         string
		defaultValue string
	}{
		{"GARNET_API_PORT", "8080"},
		{"GARNET_BACKEND_URL", "(none - offline mode)"},
		{"GARNET_ASK_URL", "(derived from backend URL)"},
		{"GARNET_CACHE_BACKEND", "file"},
		{"GARNET_DATA_DIR", "data"},
		{"GARNET_REDIS_ADDR", "localhost:6379"},
		{"GARNET_REDIS_DB", "0"},
		{"GARNET_CORS_ORIGINS", "* (allow all)"},
	}
	for _, ev := range envVars {
		value := os.Getenv(ev.name)
		if value == "" {
			log.Printf("  %s: %s (default)", ev.name, ev.defaultValue)
		} else {
			log.Printf("  %s: %s", ev.name, value)
		}
	}

	log.Println("==========================================")
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// openKV picks the cache backend from the environment.
func openKV(dataDir string) (cache.KV, error) {
	switch backend := envOr("GARNET_CACHE_BACKEND", "file"); backend {
	case "memory":
		return cache.NewMemory(), nil
	case "file":
		return cache.NewFile(dataDir)
	case "sqlite":
		return cache.NewSQLite(filepath.Join(dataDir, "questionnaires.db"))
	case "redis":
		db, err := strconv.Atoi(envOr("GARNET_REDIS_DB", "0"))
		if err != nil {
			return nil, fmt.Errorf("invalid GARNET_REDIS_DB: %w", err)
		}
		return cache.NewRedis(envOr("GARNET_REDIS_ADDR", "localhost:6379"), os.Getenv("GARNET_REDIS_PASSWORD"), db)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

func main() {
	logConfig()

	port := envOr("GARNET_API_PORT", "8080")
	dataDir := envOr("GARNET_DATA_DIR", "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	kv, err := openKV(dataDir)
	if err != nil {
		log.Fatalf("Failed to open cache backend: %v", err)
	}
	defer kv.Close()
	store := cache.NewStore(kv)

	classifier, err := category.New()
	if err != nil {
		log.Fatalf("Failed to load category rules: %v", err)
	}

	backendURL := os.Getenv("GARNET_BACKEND_URL")
	var backendClient *remote.Client
	if backendURL != "" {
		backendClient, err = remote.NewClient(backendURL, classifier)
		if err != nil {
			log.Fatalf("Failed to initialize backend client: %v", err)
		}
	} else {
		log.Println("Warning: GARNET_BACKEND_URL not set - running in offline mode, cache only")
	}

	askURL := os.Getenv("GARNET_ASK_URL")
	if askURL == "" && backendURL != "" {
		askURL = backendURL + "/ask"
	}

	cfg := reconcile.Config{
		Generator: generatorFor(askURL),
		Store:     store,
		OnNotFound: func(id string) {
			log.Printf("questionnaire %s not found anywhere, client redirected to %s", id, api.ListingPath)
		},
	}
	var deleter api.BackendDeleter
	if backendClient != nil {
		cfg.Backend = backendClient
		deleter = backendClient
	} else {
		cfg.Backend = offlineBackend{}
	}
	svc := reconcile.NewService(cfg)

	handler := api.NewHandler(svc, store, classifier, deleter)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	handler.RegisterRoutes(mux)

	var h http.Handler = mux
	h = api.Logger(h)
	h = api.CORS(api.CORSConfig{AllowedOrigins: os.Getenv("GARNET_CORS_ORIGINS")})(h)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation batches can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Println("Shutting down server...")
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
