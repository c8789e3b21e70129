package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"ministryroster/config"
	_ "ministryroster/docs"
	"ministryroster/internal/adapters/auth"
	"ministryroster/internal/adapters/notifier"
	delivery "ministryroster/internal/delivery/http"
	"ministryroster/internal/delivery/http/controllers"
	"ministryroster/internal/delivery/http/middleware"
	"ministryroster/internal/domain"
	"ministryroster/internal/repository/postgres"
	"ministryroster/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Ministry Roster API
// @version 1.0
// @description Scheduling, reliability, and gamification backend for church worship teams.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	musicianRepo := postgres.NewMusicianRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	penaltyRepo := postgres.NewPenaltyHistoryRepository(db)
	pointRepo := postgres.NewPointHistoryRepository(db)
	achievementRepo := postgres.NewAchievementRepository(db)
	guestCodeRepo := postgres.NewGuestCodeRepository(db)
	tx := postgres.NewTransactor(db)

	_, verifier := auth.NewJWTTokens(cfg.JWTSecret)
	hasher := auth.NewBcryptCodeHasher(bcrypt.DefaultCost)

	mailer, err := notifier.NewMailer(notifier.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: notifier.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	emailNotifier := notifier.NewEmailNotifier(musicianRepo, mailer, logger)

	clock := domain.SystemClock()

	reliability := services.NewReliabilityService(musicianRepo, penaltyRepo, clock)
	gamification := services.NewGamificationService(musicianRepo, pointRepo, achievementRepo, clock)
	handlers := []domain.InvitationEventHandler{reliability, gamification}

	planner := services.NewRosterPlanner(musicianRepo, invitationRepo, clock)
	eventService := services.NewEventService(eventRepo, invitationRepo, musicianRepo, planner, tx, emailNotifier, clock, logger, serviceTimeout)
	invitationService := services.NewInvitationService(invitationRepo, eventRepo, musicianRepo, tx, handlers, emailNotifier, clock, logger, serviceTimeout)
	musicianService := services.NewMusicianService(musicianRepo, penaltyRepo, pointRepo, achievementRepo, guestCodeRepo, hasher, mailer, clock, logger, serviceTimeout)

	eventController := controllers.NewEventController(logger, eventService)
	invitationController := controllers.NewInvitationController(logger, invitationService)
	musicianController := controllers.NewMusicianController(logger, musicianService)

	mux := delivery.NewRouter(logger, verifier, eventController, invitationController, musicianController)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	addr := ":" + cfg.Port
	logger.Info("starting server", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
