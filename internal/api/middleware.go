package api

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// CORSConfig holds CORS configuration. AllowedOrigins is a
// comma-separated origin list; "*" (the default) allows all.
type CORSConfig struct {
	AllowedOrigins string
}

// CORS adds CORS headers for the configured origins.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowAll := cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*"
	origins := make(map[string]bool)
	if !allowAll {
		for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
			origins[strings.TrimSpace(o)] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && origins[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logger logs HTTP requests with status and duration.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
