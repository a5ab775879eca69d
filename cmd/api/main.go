package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gbegne-backend/internal/archive"
	"gbegne-backend/internal/handler"
	"gbegne-backend/internal/identity"
	"gbegne-backend/internal/progress"
	"gbegne-backend/internal/saver"
	"gbegne-backend/internal/storage"
)

func main() {
	// Load .env in dev only; production injects env vars through infra.
	if os.Getenv("APP_ENV") != "production" {
		godotenv.Load()
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to open DB:", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection at startup, fail fast rather than accepting traffic.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatal("Database ping failed:", err)
	}

	// ── Local completion store ────────────────────────────────────────────────
	localDBPath := os.Getenv("LOCAL_DB_PATH")
	if localDBPath == "" {
		localDBPath = "./data/gbegne.db"
	}
	progressStore, err := progress.Open(localDBPath)
	if err != nil {
		log.Fatal("Failed to open completion store:", err)
	}
	defer progressStore.Close()
	log.Println("Completion store at", localDBPath)

	// ── Blob storage (swappable: local today, GCS in production) ──────────────
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	var blobs storage.BlobStore
	if os.Getenv("STORAGE_TYPE") == "gcs" {
		gcsStore, err := storage.NewGCSStorage(context.Background(),
			os.Getenv("GCS_BUCKET"), os.Getenv("GCS_CREDENTIALS_FILE"))
		if err != nil {
			log.Fatal("Failed to init GCS storage:", err)
		}
		defer gcsStore.Close()
		blobs = gcsStore
		log.Println("Using GCS storage, bucket", os.Getenv("GCS_BUCKET"))
	} else {
		localStore, err := storage.NewLocalStorage(uploadDir, os.Getenv("BASE_URL"))
		if err != nil {
			log.Fatal("Failed to init local storage:", err)
		}
		blobs = localStore
		log.Println("Using local storage at", uploadDir)
	}

	// ── Services & Handlers ───────────────────────────────────────────────────
	logger := slog.Default()
	identityStore := &identity.Store{DB: db}
	recordingArchive := &archive.Archive{DB: db, Blobs: blobs, Logger: logger}

	h := &handler.Handler{
		Resolver: &identity.Resolver{Sessions: identityStore, Anonymous: identityStore},
		Auth:     &identity.Auth{DB: db},
		Archive:  recordingArchive,
		Progress: progressStore,
		Saver: &saver.Orchestrator{
			Uploader: recordingArchive,
			Inserter: recordingArchive,
			Marker:   progressStore,
			Logger:   logger,
		},
	}

	// ── Router ────────────────────────────────────────────────────────────────
	r := mux.NewRouter()

	// Health check for load balancers and liveness probes.
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	api.HandleFunc("/auth/resend-verification", h.ResendVerification).Methods("POST")
	api.HandleFunc("/auth/verify", h.VerifyEmail).Methods("POST")
	api.HandleFunc("/guest", h.ContinueAsGuest).Methods("POST")
	api.HandleFunc("/texts", h.ListTexts).Methods("GET")
	api.HandleFunc("/progress", h.ListProgress).Methods("GET")
	api.HandleFunc("/recordings", h.SaveRecording).Methods("POST")
	api.HandleFunc("/recordings", h.ListRecordings).Methods("GET")
	api.HandleFunc("/recordings/{id}", h.DeleteRecording).Methods("DELETE")

	// Serve local uploads; with GCS the signed URLs bypass this route.
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))),
	)

	// ── CORS ──────────────────────────────────────────────────────────────────
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:19006"
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{allowedOrigins}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Guest-ID", "Authorization"}),
	)

	// ── HTTP Server with timeouts ─────────────────────────────────────────────
	port := os.Getenv("PORT")
	if port == "" {
		port = "8083"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      cors(r),
		ReadTimeout:  30 * time.Second, // audio uploads need the headroom
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Collection service running on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	<-quit
	log.Println("Shutdown signal received, draining requests...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown:", err)
	}
	log.Println("Server stopped cleanly")
}
