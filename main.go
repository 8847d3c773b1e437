package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mhollis/practicum-tracker/authenticator"
	"github.com/mhollis/practicum-tracker/config"
	"github.com/mhollis/practicum-tracker/controllers"
	"github.com/mhollis/practicum-tracker/database"
	authmiddleware "github.com/mhollis/practicum-tracker/middleware"
	"github.com/mhollis/practicum-tracker/repositories"
	"github.com/mhollis/practicum-tracker/services"
)

func main() {
	// Load environment variables from .env file, if present
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	db := database.GetDB()

	// Initialize repositories and services
	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(db, repos, services.NewLogNotifier())

	// Initialize controllers
	ctrl := controllers.NewControllers(srvs)

	// Initialize OpenID Connect provider
	auth, err := authenticator.NewOpenIDProvider(authenticator.OpenIDConfig{
		Domain:       cfg.Auth.Domain,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		CallbackURL:  cfg.Auth.CallbackURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize OpenID provider: %v", err)
	}

	// Set up router
	r, err := setupRouter(cfg, ctrl, auth)
	if err != nil {
		log.Fatalf("Failed to setup router: %v", err)
	}

	// Periodic sweep backfills audit events for unlock grants that lapsed
	// unobserved; grant expiry itself is enforced lazily on every access.
	if cfg.UnlockSweepMinutes > 0 {
		go runUnlockSweep(srvs.Unlock, time.Duration(cfg.UnlockSweepMinutes)*time.Minute)
	}

	fmt.Printf("Practicum tracker starting on port %s\n", cfg.Port)
	fmt.Printf("Database: %s\n", cfg.DatabasePath)

	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// setupRouter configures all routes
func setupRouter(cfg *config.Config, ctrl *controllers.Controllers, auth authenticator.Provider) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second)) // 60 second timeout for OAuth callbacks
	r.Use(chimiddleware.Compress(5))

	// Session middleware
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "practicum_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     cfg.SessionLifetime,
		Maxlifetime:    cfg.SessionLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/login", ctrl.Auth.Login(auth))
	r.Get("/callback", ctrl.Auth.Callback(auth))
	r.Get("/logout", ctrl.Auth.Logout)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "practicum-tracker"}`)
	})

	// PROTECTED ROUTES (authentication required)
	r.Route("/api", func(r chi.Router) {
		r.Use(authmiddleware.RequireAuth)

		r.Route("/trainees/{id}", func(r chi.Router) {
			r.Get("/progress", ctrl.Progress.Show)
			r.Get("/weeks", ctrl.Progress.Weeks)
			r.Get("/eligibility", ctrl.Progress.Eligibility)
			r.Post("/complete", ctrl.Progress.Complete)
		})

		r.Route("/documents/{id}", func(r chi.Router) {
			r.Post("/submit", ctrl.Review.Submit)
			r.Post("/decision", ctrl.Review.Decide)
			r.Get("/audit", ctrl.Review.Audit)
			r.Get("/entries", ctrl.Entry.List)
			r.Post("/unlock-requests", ctrl.Unlock.Request)
			r.Post("/relock", ctrl.Unlock.Relock)
		})

		r.Route("/unlock-requests/{id}", func(r chi.Router) {
			r.Post("/review", ctrl.Unlock.Review)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", ctrl.Entry.Create)
			r.Put("/{id}", ctrl.Entry.Amend)
		})
	})

	return r, nil
}

// runUnlockSweep runs the expired-grant sweep on a fixed interval
func runUnlockSweep(unlock services.UnlockService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		swept, err := unlock.SweepExpired(ctx)
		cancel()
		if err != nil {
			log.Printf("Unlock sweep failed: %v", err)
			continue
		}
		if swept > 0 {
			log.Printf("Unlock sweep recorded %d expired grant(s)", swept)
		}
	}
}
