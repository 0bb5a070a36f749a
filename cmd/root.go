package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forensics-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "forensics-cli",
	Short: "Forensic financial statement analysis",
	Long:  "Normalizes financial statements, computes forensic metrics (Altman Z, Beneish M, Benford, accrual quality), scores fraud risk, and orchestrates analysis jobs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
