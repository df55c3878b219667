package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klukovki23/healthcare-on-the-go/internal/config"
	"github.com/klukovki23/healthcare-on-the-go/internal/domain/helprequest"
	"github.com/klukovki23/healthcare-on-the-go/internal/domain/notes"
	"github.com/klukovki23/healthcare-on-the-go/internal/domain/patient"
	"github.com/klukovki23/healthcare-on-the-go/internal/domain/report"
	"github.com/klukovki23/healthcare-on-the-go/internal/domain/visit"
	"github.com/klukovki23/healthcare-on-the-go/internal/models"
	"github.com/klukovki23/healthcare-on-the-go/internal/platform/auth"
	"github.com/klukovki23/healthcare-on-the-go/internal/platform/middleware"
	"github.com/klukovki23/healthcare-on-the-go/internal/platform/websocket"
	"github.com/klukovki23/healthcare-on-the-go/internal/session"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "visit-server",
		Short: "Home-care visit planner API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the visit planner API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print today's seeded visit schedule with the current visit marked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			now := time.Now().In(loc)
			if at, _ := cmd.Flags().GetString("at"); at != "" {
				m, ok := visit.ParseClock(at)
				if !ok {
					return fmt.Errorf("--at: %w", visit.ErrInvalidTime)
				}
				y, mo, d := now.Date()
				now = time.Date(y, mo, d, m/60, m%60, 0, 0, loc)
			}

			printSchedule(cmd.OutOrStdout(), visit.SeedAppointments, patient.SeedPatients, now, cfg.HighlightLead)
			return nil
		},
	}
	cmd.Flags().String("at", "", "Evaluate the schedule at this HH:MM instead of now")
	return cmd
}

// printSchedule writes one line per visit in time order, marking the visit
// that is current at now.
func printSchedule(w io.Writer, appts []models.Appointment, patients []models.Patient, now time.Time, lead time.Duration) {
	names := make(map[string]string, len(patients))
	for _, p := range patients {
		names[p.ID] = p.Name
	}
	current := visit.SelectCurrent(appts, now, lead)

	fmt.Fprintf(w, "Schedule at %s\n", visit.FormatClock(now))
	for _, a := range visit.SortByTime(appts) {
		marker := " "
		if a.ID == current {
			marker = ">"
		}
		name := names[a.PatientID]
		if name == "" {
			name = a.PatientID
		}
		fmt.Fprintf(w, "%s %s  %s\n", marker, a.Time, name)
	}
}

// app holds the wired server and its background work.
type app struct {
	echo   *echo.Echo
	runner *visit.Runner
	hub    *websocket.Hub
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	runnerCtx, runnerCancel := context.WithCancel(context.Background())
	defer runnerCancel()
	go a.runner.Run(runnerCtx)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := a.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	runnerCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newApp wires stores, services and routes. It does not start anything.
func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	signingKey, generated, err := resolveSigningKey(cfg.AuthSigningKey)
	if err != nil {
		return nil, err
	}
	if generated {
		logger.Warn().Msg("AUTH_SIGNING_KEY not set, using a random key; tokens will not survive a restart")
	}
	issuer := auth.NewIssuer(signingKey, cfg.AuthTokenTTL)

	// Stores
	sess := session.NewStore()
	patients := patient.NewStore()
	hub := websocket.NewHub(logger)

	// Services
	helpSvc := helprequest.NewService(sess, hub, logger)
	visitSvc := visit.NewService(sess, patients, helpSvc, hub, visit.Options{
		Lead:           cfg.HighlightLead,
		UndoWindow:     cfg.UndoWindow,
		DemoEnabled:    cfg.DemoEnabled,
		BootstrapDelay: cfg.DemoBootstrapDelay,
		Cooldown:       cfg.DemoCooldown,
		Location:       loc,
	}, logger)
	patientSvc := patient.NewService(patients, sess)
	reportSvc := report.NewService(nil, logger)
	notesSvc := notes.NewService(sess)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(issuer))
	} else {
		e.Use(auth.JWTMiddleware(issuer))
	}

	// Rate limiting keys on the clinician, so it runs after auth.
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Audit middleware
	e.Use(middleware.Audit(logger))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"version":    version,
			"ws_clients": hub.ClientCount(),
		})
	})

	// API groups
	apiV1 := e.Group("/api/v1", middleware.RateLimit(rateLimitCfg))
	auth.NewHandler(issuer).RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	visit.NewHandler(visitSvc).RegisterRoutes(apiV1)
	helprequest.NewHandler(helpSvc).RegisterRoutes(apiV1)
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)
	notes.NewHandler(notesSvc).RegisterRoutes(apiV1)

	// Push channel replacing client polling
	websocket.NewHandler(hub).RegisterRoutes(e.Group(""))

	return &app{
		echo:   e,
		runner: visit.NewRunner(visitSvc, cfg.HighlightTick, logger),
		hub:    hub,
	}, nil
}

// resolveSigningKey returns AUTH_SIGNING_KEY or, when it is empty, a random
// 32-byte key. The second return value is true when a key was generated.
func resolveSigningKey(envValue string) ([]byte, bool, error) {
	if envValue != "" {
		return []byte(envValue), false, nil
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate random signing key: %w", err)
	}
	return key, true, nil
}
