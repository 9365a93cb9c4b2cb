package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dinnerboard/internal/bot"
	"dinnerboard/internal/config"
	"dinnerboard/internal/database"
	"dinnerboard/internal/handlers"
	"dinnerboard/internal/realtime"
	"dinnerboard/internal/repository"
	"dinnerboard/internal/security"
	"dinnerboard/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)

	// Realtime infrastructure
	broker := realtime.NewBroker()
	statusMonitor := realtime.NewStatusMonitor(db, 10*time.Second)

	// Initialize services
	resolver := service.NewTenantResolver(familyRepo)
	authService := service.NewAuthService(userRepo, resolver, cfg.SessionDuration)
	bootstrapService := service.NewBootstrapService(familyRepo, memberRepo, resolver, broker)
	rosterService := service.NewRosterService(memberRepo, broker)
	attendanceService := service.NewAttendanceService(attendanceRepo, broker)
	noteService := service.NewNoteService(noteRepo, broker)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	botClient := bot.NewClient(cfg.BotPushURL, cfg.BotChannelToken)
	reminderService := service.NewReminderService(recipientRepo, botClient)

	if cfg.RealtimeTokenSecret == "" {
		log.Println("REALTIME_TOKEN_SECRET not set; using an ephemeral signing key (realtime tokens will not survive restarts)")
	}
	tokenIssuer := security.NewTokenIssuer(cfg.RealtimeTokenSecret, time.Minute)
	authLimiter := security.NewRateLimiter(10, time.Minute)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, bootstrapService, authLimiter)
	authHandler := handlers.NewAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppBaseURL)
	familyHandler := handlers.NewFamilyHandler(resolver, emailService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	noteHandler := handlers.NewNoteHandler(noteService)
	botHandler := handlers.NewBotHandler(reminderService, cfg.BotChannelSecret, cfg.CronSecret)
	realtimeHandler := handlers.NewRealtimeHandler(tokenIssuer, statusMonitor, rosterService, attendanceService, noteService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimitAuth(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimitAuth(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleOAuthCallback)

	// Family
	mux.HandleFunc("GET /api/family", middleware.RequireAuth(middleware.RequireFamily(familyHandler.GetFamily)))
	mux.HandleFunc("PUT /api/family/name", middleware.RequireAuth(middleware.RequireFamily(familyHandler.RenameFamily)))
	mux.HandleFunc("POST /api/family/join", middleware.RequireAuth(familyHandler.JoinFamily))
	mux.HandleFunc("POST /api/family/invite", middleware.RequireAuth(middleware.RequireFamily(familyHandler.SendInvite)))

	// Roster
	mux.HandleFunc("GET /api/members", middleware.RequireAuth(middleware.RequireFamily(rosterHandler.ListMembers)))
	mux.HandleFunc("POST /api/members", middleware.RequireAuth(middleware.RequireFamily(rosterHandler.AddMember)))
	mux.HandleFunc("PATCH /api/members/{id}", middleware.RequireAuth(middleware.RequireFamily(rosterHandler.UpdateMember)))
	mux.HandleFunc("DELETE /api/members/{id}", middleware.RequireAuth(middleware.RequireFamily(rosterHandler.DeleteMember)))

	// Attendance
	mux.HandleFunc("GET /api/attendance", middleware.RequireAuth(middleware.RequireFamily(attendanceHandler.GetWeekly)))
	mux.HandleFunc("PUT /api/attendance", middleware.RequireAuth(middleware.RequireFamily(attendanceHandler.SetStatus)))
	mux.HandleFunc("POST /api/attendance/cycle", middleware.RequireAuth(middleware.RequireFamily(attendanceHandler.CycleStatus)))

	// Notes
	mux.HandleFunc("GET /api/notes", middleware.RequireAuth(middleware.RequireFamily(noteHandler.ListNotes)))
	mux.HandleFunc("POST /api/notes", middleware.RequireAuth(middleware.RequireFamily(noteHandler.AddNote)))
	mux.HandleFunc("PATCH /api/notes/{id}", middleware.RequireAuth(middleware.RequireFamily(noteHandler.UpdateNote)))
	mux.HandleFunc("DELETE /api/notes/{id}", middleware.RequireAuth(middleware.RequireFamily(noteHandler.DeleteNote)))

	// Realtime
	mux.HandleFunc("GET /api/realtime/token", middleware.RequireAuth(middleware.RequireFamily(realtimeHandler.IssueToken)))
	mux.HandleFunc("GET /api/status", realtimeHandler.Status)
	mux.HandleFunc("GET /realtime/ws", realtimeHandler.ServeWS)

	// Chat-bot integration
	mux.HandleFunc("POST /bot/reminder", botHandler.TriggerReminder)
	mux.HandleFunc("POST /bot/register", botHandler.RegisterRecipient)
	mux.HandleFunc("POST /bot/schedules", botHandler.UpdateSchedules)
	mux.HandleFunc("POST /bot/webhook", botHandler.Webhook)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

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

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
