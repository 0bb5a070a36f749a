package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forensics-cli/internal/edgar"
	"github.com/sells-group/forensics-cli/internal/metrics"
	"github.com/sells-group/forensics-cli/internal/model"
	"github.com/sells-group/forensics-cli/internal/orchestrator"
)

var (
	analyzePeriods int
	analyzeFile    string
	analyzeJSON    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <company-id>",
	Short: "Run a forensic analysis synchronously",
	Long:  "Fetches statements from EDGAR (or a local JSON file), computes the full metric bundle and risk score, and prints a report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p := &orchestrator.Pipeline{
			Client: edgar.NewClient(cfg.EDGAR),
			Engine: metrics.NewEngine(cfg.Anomaly),
		}
		if analyzeFile != "" {
			client, err := loadStatementsFile(analyzeFile)
			if err != nil {
				return err
			}
			p.Client = client
		}

		req := model.AnalysisRequest{
			CompanyID: args[0],
			Periods:   analyzePeriods,
		}

		res, err := p.Run(ctx, req, func(state model.JobState) {
			zap.L().Debug("stage", zap.String("state", string(state)))
		})
		if err != nil {
			return err
		}

		if analyzeJSON {
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Print(res.Report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzePeriods, "periods", 3, "number of annual periods to analyze")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read statements from a JSON file instead of EDGAR")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
