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
	"golang.org/x/time/rate"

	"github.com/cliniga/cliniga-api/internal/config"
	"github.com/cliniga/cliniga-api/internal/handler"
	appointmentHandler "github.com/cliniga/cliniga-api/internal/handler/appointment"
	authHandler "github.com/cliniga/cliniga-api/internal/handler/auth"
	doctorHandler "github.com/cliniga/cliniga-api/internal/handler/doctor"
	medicalHandler "github.com/cliniga/cliniga-api/internal/handler/medical"
	"github.com/cliniga/cliniga-api/internal/middleware"
	"github.com/cliniga/cliniga-api/internal/repository"
	"github.com/cliniga/cliniga-api/internal/repository/memory"
	"github.com/cliniga/cliniga-api/internal/repository/postgres"
	"github.com/cliniga/cliniga-api/internal/router"
	"github.com/cliniga/cliniga-api/internal/seed"
	appointmentService "github.com/cliniga/cliniga-api/internal/service/appointment"
	authService "github.com/cliniga/cliniga-api/internal/service/auth"
	doctorService "github.com/cliniga/cliniga-api/internal/service/doctor"
	medicalService "github.com/cliniga/cliniga-api/internal/service/medical"
	"github.com/cliniga/cliniga-api/pkg/auth"
)

type repositories struct {
	users        repository.UserRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	records      repository.MedicalRecordRepository
	outbox       repository.OutboxRepository
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	repos, cleanup, err := buildRepositories(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer cleanup()

	jwtSvc := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshExpiryHours)*time.Hour,
	)

	authSvc := authService.NewService(repos.users, repos.doctors, jwtSvc)
	doctorSvc := doctorService.NewService(repos.doctors)
	appointmentSvc := appointmentService.NewService(repos.appointments, repos.users, repos.doctors, repos.outbox)
	medicalSvc := medicalService.NewService(repos.records, repos.appointments, repos.doctors, repos.outbox)

	if cfg.Seed {
		result, err := seed.Load(context.Background(), repos.users, repos.doctors, repos.appointments)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
		log.Info().
			Int("doctors", len(result.Doctors)).
			Int("patients", len(result.Patients)).
			Int("appointments", len(result.Appointments)).
			Msg("demo data loaded")
	}

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	doctorH := doctorHandler.NewHandler(doctorSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	medicalH := medicalHandler.NewHandler(medicalSvc)

	r := router.NewRouter(authMiddleware, authH, doctorH, appointmentH, medicalH, h, router.Config{
		RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:     cfg.RateLimit.Burst,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "cliniga_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Storage.Backend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

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

func buildRepositories(cfg *config.Config) (*repositories, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		store := memory.NewStore()
		return &repositories{
			users:        store.Users(),
			doctors:      store.Doctors(),
			appointments: store.Appointments(),
			records:      store.MedicalRecords(),
			outbox:       store.Outbox(),
		}, func() {}, nil
	case "postgres", "":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return &repositories{
			users:        postgres.NewUserRepository(db),
			doctors:      postgres.NewDoctorRepository(db),
			appointments: postgres.NewAppointmentRepository(db),
			records:      postgres.NewMedicalRecordRepository(db),
			outbox:       postgres.NewOutboxRepository(db),
		}, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
