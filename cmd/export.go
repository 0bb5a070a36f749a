package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forensics-cli/internal/model"
	"github.com/sells-group/forensics-cli/internal/report"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Export a completed job's result to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		job, err := st.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		if job.State != model.JobCompleted || job.Result == nil {
			return eris.Errorf("job %s is %s, only completed jobs can be exported", job.ID, job.State)
		}

		out := exportOut
		if out == "" {
			out = job.Request.CompanyID + ".xlsx"
		}

		if err := report.WriteXLSX(out, job.Request, job.Result); err != nil {
			return err
		}
		zap.L().Info("exported workbook", zap.String("job_id", job.ID), zap.String("path", out))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <company-id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
