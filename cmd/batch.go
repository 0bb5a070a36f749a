package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/forensics-cli/internal/model"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch <companies.csv>",
	Short: "Analyze companies from a CSV file concurrently",
	Long:  "Reads company_id[,periods[,priority]] rows and runs the full analysis pipeline per company with bounded concurrency.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		requests, err := readBatchFile(args[0])
		if err != nil {
			return err
		}

		return processBatch(ctx, requests, batchLimit, cfg.Batch.MaxConcurrentCompanies, func(ctx context.Context, req model.AnalysisRequest) (*model.JobResult, error) {
			return env.Pipeline.Run(ctx, req, nil)
		})
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of companies to process")
	rootCmd.AddCommand(batchCmd)
}

// readBatchFile parses company_id[,periods[,priority]] rows. A header row
// starting with "company_id" is skipped.
func readBatchFile(path string) ([]model.AnalysisRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var requests []model.AnalysisRequest
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "parse batch file %s", path)
		}
		if len(record) == 0 {
			continue
		}

		companyID := strings.TrimSpace(record[0])
		if companyID == "" || strings.EqualFold(companyID, "company_id") {
			continue
		}

		req := model.AnalysisRequest{CompanyID: companyID, Periods: 3}
		if len(record) > 1 {
			if n, err := strconv.Atoi(strings.TrimSpace(record[1])); err == nil && n > 0 {
				req.Periods = n
			}
		}
		if len(record) > 2 {
			req.Priority = model.Priority(strings.ToLower(strings.TrimSpace(record[2])))
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// analyzeFunc is the callback signature for running one company's analysis.
type analyzeFunc func(ctx context.Context, req model.AnalysisRequest) (*model.JobResult, error)

// processBatch applies limit, then analyzes companies concurrently. Individual
// failures are logged without aborting the batch.
func processBatch(ctx context.Context, requests []model.AnalysisRequest, limit, concurrency int, analyze analyzeFunc) error {
	if len(requests) == 0 {
		zap.L().Info("no companies in batch")
		return nil
	}

	if limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	zap.L().Info("processing batch",
		zap.Int("companies", len(requests)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, req := range requests {
		g.Go(func() error {
			log := zap.L().With(zap.String("company_id", req.CompanyID))

			result, err := analyze(gctx, req)
			if err != nil {
				failed.Add(1)
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("analysis complete",
				zap.Float64("composite_score", result.Risk.CompositeScore),
				zap.String("risk_level", string(result.Risk.Level)),
				zap.Int("anomalies", len(result.Metrics.Anomalies)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
