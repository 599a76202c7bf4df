package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	"github.com/spf13/cobra"

	"github.com/teamsales/salesportal/config"
	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/repositories"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "salesportal",
	Short: "Sales team portal backend",
	Long: `salesportal serves the sales team portal API over Firestore.

Run "salesportal serve" to start the HTTP API and the daily manager cleanup,
or "salesportal cleanup" to run the cleanup once.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default: .env)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cleanupCmd)
}

// Execute runs the CLI and exits non-zero on failure. SIGINT and SIGTERM
// cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the configuration and sets up the named loggers.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stores are the Firestore repositories shared by every command.
type stores struct {
	db       *firestore.Client
	fb       *config.FirebaseClients
	users    *repositories.UserRepository
	reports  *repositories.FinalReportRepository
	quality  *repositories.QualityReportRepository
	orgs     *repositories.OrganizationRepository
	specs    *repositories.SalesSpecRepository
	material *repositories.MaterialRepository
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	fb, err := config.InitFirebase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db, err := config.ConnectDB(ctx, fb)
	if err != nil {
		return nil, err
	}
	return &stores{
		db:       db,
		fb:       fb,
		users:    repositories.NewUserRepository(db),
		reports:  repositories.NewFinalReportRepository(db),
		quality:  repositories.NewQualityReportRepository(db),
		orgs:     repositories.NewOrganizationRepository(db),
		specs:    repositories.NewSalesSpecRepository(db),
		material: repositories.NewMaterialRepository(db),
	}, nil
}

func (s *stores) Close() {
	if err := s.db.Close(); err != nil {
		logger.Get("app").WithError(err).Warn("closing firestore")
	}
}
