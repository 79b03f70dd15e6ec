package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/careflowhq/careflow-api/internal/config"
	"github.com/careflowhq/careflow-api/internal/email"
	"github.com/careflowhq/careflow-api/internal/handler"
	authHandler "github.com/careflowhq/careflow-api/internal/handler/auth"
	doctorHandler "github.com/careflowhq/careflow-api/internal/handler/doctor"
	episodeHandler "github.com/careflowhq/careflow-api/internal/handler/episode"
	patientHandler "github.com/careflowhq/careflow-api/internal/handler/patient"
	recordHandler "github.com/careflowhq/careflow-api/internal/handler/record"
	"github.com/careflowhq/careflow-api/internal/middleware"
	"github.com/careflowhq/careflow-api/internal/repository/postgres"
	"github.com/careflowhq/careflow-api/internal/router"
	"github.com/careflowhq/careflow-api/internal/service/auth"
	doctorService "github.com/careflowhq/careflow-api/internal/service/doctor"
	episodeService "github.com/careflowhq/careflow-api/internal/service/episode"
	patientService "github.com/careflowhq/careflow-api/internal/service/patient"
	recordService "github.com/careflowhq/careflow-api/internal/service/record"
	"github.com/careflowhq/careflow-api/internal/session"
	pkgauth "github.com/careflowhq/careflow-api/pkg/auth"
	"github.com/careflowhq/careflow-api/pkg/logger"
	"github.com/careflowhq/careflow-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Server.LogLevel, cfg.Server.PrettyLogs)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	sessions, err := session.NewStore(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer sessions.Close()

	// Repositories
	accountRepo := postgres.NewAccountRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	episodeRepo := postgres.NewEpisodeRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)

	// Services
	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})
	emailSvc := email.NewService(cfg.SMTP)
	hasher := security.NewBcryptHasher(12)
	authSvc := auth.NewService(accountRepo, sessions, jwtSvc, emailSvc, hasher)
	episodeSvc := episodeService.NewService(episodeRepo, patientRepo, doctorRepo)
	recordSvc := recordService.NewService(recordRepo, episodeRepo)
	patientSvc := patientService.NewService(patientRepo)
	doctorSvc := doctorService.NewService(doctorRepo)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	episodeH := episodeHandler.NewHandler(episodeSvc)
	patientH := patientHandler.NewHandler(patientSvc, episodeSvc, recordSvc)
	doctorH := doctorHandler.NewHandler(doctorSvc)
	recordH := recordHandler.NewHandler(recordSvc, episodeSvc)

	r := router.NewRouter(authMiddleware, h, authH, episodeH, patientH, doctorH, recordH, router.Config{
		RateLimitRPS:   float64(cfg.Server.RateLimitRPS),
		RateLimitBurst: cfg.Server.RateLimitBurst,
		CORS:           middleware.DefaultCORSConfig(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
