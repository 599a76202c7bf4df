package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/teamsales/salesportal/config"
	"github.com/teamsales/salesportal/controllers"
	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/routes"
	"github.com/teamsales/salesportal/services"
	"github.com/teamsales/salesportal/websocket"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the daily manager cleanup",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get("app")
	loc := cfg.Location()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	identity, err := services.NewFirebaseIdentity(ctx, st.fb.Auth, cfg.FirebaseAPIKey)
	if err != nil {
		return err
	}
	cache := services.NewSessionStore(config.ConnectRedis(cfg), cfg.SessionCacheTTL)
	mailer := &services.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.FromEmail,
	}
	tokens := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	sessions := services.NewSessionService(st.users, cache)
	exports := services.NewExportService()
	finalReports := services.NewFinalReportService(st.reports, st.users, hub)
	qualityReports := services.NewQualityReportService(st.quality, hub)
	dashboards := services.NewDashboardService(st.users, st.reports, st.quality, st.orgs, loc)
	statistics := services.NewStatisticsService(st.users, st.reports, st.quality, st.orgs, loc)
	salesSpecs := services.NewSalesSpecService(st.users, st.specs, st.reports, st.quality, loc)

	ctrl := routes.Controllers{
		Auth:         controllers.NewAuthController(services.NewAuthService(identity, st.users, cache, tokens, mailer), sessions),
		User:         controllers.NewUserController(services.NewUserService(st.users, identity, cache, loc), sessions, exports),
		Organization: controllers.NewOrganizationController(services.NewOrganizationService(st.orgs)),
		Report:       controllers.NewReportController(finalReports, qualityReports),
		Dashboard:    controllers.NewDashboardController(dashboards),
		Statistics:   controllers.NewStatisticsController(statistics, exports),
		SalesSpec:    controllers.NewSalesSpecController(salesSpecs),
		Material:     controllers.NewMaterialController(services.NewMaterialService(st.material, st.users)),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = controllers.NewCustomValidator()

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Cleanup(ctx, time.Minute)

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	if cfg.IsProduction() {
		e.Use(middleware.HTTPSRedirect())
	}
	e.Use(middleware.CORS(cfg.CORSAllowedOrigins, cfg.IsProduction()))
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{
		ConnectSources: cfg.CORSAllowedOrigins,
		HSTS:           cfg.IsProduction(),
	}))
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	routes.SetupRoutes(e, routes.Guards{
		JWTSecret:      cfg.JWTSecret,
		Revoked:        cache,
		Sessions:       sessions,
		Hub:            hub,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, ctrl)

	hour, minute, err := cfg.CleanupClock()
	if err != nil {
		return err
	}
	cleanup := services.NewManagerCleanupService(st.users, cache, loc)
	scheduler, err := services.NewDailyCron(ctx, "manager-cleanup", hour, minute, loc, func(ctx context.Context) error {
		_, err := cleanup.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
