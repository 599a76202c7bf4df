package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teamsales/salesportal/config"
	"github.com/teamsales/salesportal/services"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Unlink users whose last working day is today, once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		cache := services.NewSessionStore(config.ConnectRedis(cfg), cfg.SessionCacheTTL)
		n, err := services.NewManagerCleanupService(st.users, cache, cfg.Location()).Run(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("unlinked %d user(s)\n", n)
		return nil
	},
}
