package cmd

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the order database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repo, err := repository.NewPostgresRepository(postgresCredentials(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func postgresCredentials(cfg *config.Config) *repository.Credentials {
	return &repository.Credentials{
		Host:     cfg.Orders.Host,
		Port:     cfg.Orders.Port,
		User:     cfg.Orders.User,
		Password: cfg.Orders.Password,
		DBName:   cfg.Orders.DBName,
	}
}
