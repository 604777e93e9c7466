package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"examcoach/internal/config"
	"examcoach/internal/database"
	"examcoach/internal/generation"
	"examcoach/internal/handlers"
	"examcoach/internal/repository"
	"examcoach/internal/security"
	"examcoach/internal/service"
	"examcoach/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize history storage. The app stays usable when the store is
	// unavailable; history pages degrade and recording is skipped.
	var history *service.HistoryService
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Printf("Warning: history store unavailable, continuing without it: %v", err)
	} else {
		defer db.Close()
		log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")

		history = service.NewHistoryService(repository.NewRecordRepository(db))
	}

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	log.Println("Templates loaded successfully")

	if cfg.AccessPassword == "" {
		log.Println("Warning: ACCESS_PASSWORD is not set; all login attempts will be rejected")
	}

	// Session store and gate
	sessions := session.NewStore(cfg.SessionDuration)
	signer := security.NewTokenSigner(cfg.SessionSecret)
	gate := service.NewGateService(cfg.AccessPassword, sessions)

	// Generation client, present only when a provider credential exists
	var gen *generation.Client
	keys := generation.ProviderKeys{
		Gemini:    cfg.GeminiAPIKey,
		OpenAI:    cfg.OpenAIAPIKey,
		Anthropic: cfg.AnthropicAPIKey,
	}
	if keys.Configured() {
		candidates := generation.ParseCandidates(cfg.ModelCandidates)
		gen = generation.NewClient(candidates, generation.NewModelFactory(keys), cfg.GenerationTimeout)
		log.Printf("Generation enabled with %d candidate model(s)", len(candidates))
	} else {
		log.Println("Warning: no generation API key configured; generation features are disabled")
	}

	coach := service.NewCoachService(gen, history)

	// Initialize handlers
	middleware := handlers.NewMiddleware(gate, signer)
	authHandler := handlers.NewAuthHandler(gate, signer, templates)
	practiceHandler := handlers.NewPracticeHandler(coach, templates, cfg.AnswerDuration)
	historyHandler := handlers.NewHistoryHandler(history, templates, cfg.HistoryLimit)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", authHandler.Home(middleware))
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout(middleware))

	mux.HandleFunc("GET /practice", middleware.RequireAuth(practiceHandler.Show))
	mux.HandleFunc("POST /practice/generate", middleware.RequireAuth(practiceHandler.Generate))
	mux.HandleFunc("GET /practice/generate/stream", middleware.RequireAuth(practiceHandler.GenerateStream))
	mux.HandleFunc("POST /practice/draft", middleware.RequireAuth(practiceHandler.SaveDraft))
	mux.HandleFunc("POST /practice/evaluate", middleware.RequireAuth(practiceHandler.Evaluate))
	mux.HandleFunc("POST /practice/outline", middleware.RequireAuth(practiceHandler.Outline))
	mux.HandleFunc("POST /practice/timer/start", middleware.RequireAuth(practiceHandler.StartTimer))
	mux.HandleFunc("GET /history", middleware.RequireAuth(historyHandler.Show))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server. WriteTimeout must outlast the generation timeout or
	// long streams get cut off mid-response.
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(sessions)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	pattern := filepath.Join(templatesPath, "*.tmpl")

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(sessions *session.Store) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if n := sessions.CleanupExpired(); n > 0 {
			log.Printf("Cleaned up %d expired session(s)", n)
		}
	}
}
