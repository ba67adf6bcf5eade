// Command stafftoken mints a bearer token for the staff HTTP API.
package main

import (
	"fmt"
	"os"
	"time"

	"feedback-bot/internal/config"
	"feedback-bot/internal/middleware"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var ttl time.Duration
	var configPath string

	cmd := &cobra.Command{
		Use:   "stafftoken [name]",
		Short: "Mint a bearer token for the staff API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token, err := middleware.IssueStaffToken(cfg.Server.JWTSecret, args[0], ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&ttl, "ttl", "t", 30*24*time.Hour, "Token lifetime")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to CONFIG_FILE)")
	return cmd
}
