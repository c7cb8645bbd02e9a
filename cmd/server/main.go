package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stillpath/stillpath/internal/api"
	"github.com/stillpath/stillpath/internal/db"
	"github.com/stillpath/stillpath/internal/middleware"
	"github.com/stillpath/stillpath/internal/utils"
)

func main() {
	addr := utils.SafeEnv("STILLPATH_ADDR", ":8080")
	commit := os.Getenv("STILLPATH_COMMIT")
	buildTime := os.Getenv("STILLPATH_BUILD_TIME")

	store, cleanup := buildStore()
	defer cleanup()

	mux := http.NewServeMux()
	api.NewRouter(store, middleware.SignToken).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Stillpath API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Frontend serving strategy (priority):
	// 1) Static files if STILLPATH_STATIC_DIR is set (fullstack image)
	// 2) Dev proxy if STILLPATH_DEV_FRONTEND_URL is set (proxy / to Vite dev)
	if staticDir := os.Getenv("STILLPATH_STATIC_DIR"); staticDir != "" {
		fs := http.FileServer(http.Dir(staticDir))
		mux.Handle("/", fs)
	} else if devURL := os.Getenv("STILLPATH_DEV_FRONTEND_URL"); devURL != "" {
		if u, err := url.Parse(devURL); err == nil {
			rp := httputil.NewSingleHostReverseProxy(u)
			// Ensure no-store headers also apply to proxied responses
			rp.ModifyResponse = func(res *http.Response) error {
				res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
				res.Header.Set("Pragma", "no-cache")
				res.Header.Set("Expires", "0")
				return nil
			}
			mux.Handle("/", rp)
		} else {
			log.Printf("invalid STILLPATH_DEV_FRONTEND_URL=%q: %v", devURL, err)
		}
	}

	handler := middleware.SecureHeaders(
		middleware.CORS(
			middleware.NoStore(
				middleware.Locale(
					middleware.WithAuth(mux)))))

	log.Printf("Stillpath server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildStore opens SQLite, runs migrations, hydrates the in-memory store
// from it, and returns the mirrored pair the router serves from. Requests
// are answered from memory; SQLite trails behind on a write queue.
func buildStore() (api.Store, func()) {
	path := utils.SafeEnv("STILLPATH_SQLITE_PATH", "stillpath.db")
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Fatalf("open sqlite at %s: %v", path, err)
	}
	if err := db.RunMigrations(conn, os.Getenv("STILLPATH_MIGRATIONS_DIR")); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	remote, err := db.NewSQLiteStore(conn)
	if err != nil {
		log.Fatalf("init sqlite store: %v", err)
	}

	if err := importLegacySnapshot(remote); err != nil {
		log.Fatalf("import legacy snapshot: %v", err)
	}

	snap, err := remote.Snapshot()
	if err != nil {
		log.Fatalf("load state from sqlite: %v", err)
	}
	local := api.NewMemoryStore()
	local.Load(snap)

	mirror := api.NewMirrorStore(local, remote)
	cleanup := func() {
		mirror.Close()
		if err := conn.Close(); err != nil {
			log.Printf("close sqlite: %v", err)
		}
	}
	return mirror, cleanup
}
