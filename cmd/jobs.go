package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/forensics-cli/internal/model"
	"github.com/sells-group/forensics-cli/internal/store"
)

var (
	jobsState   string
	jobsCompany string
	jobsLimit   int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect analysis jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		jobs, err := st.ListJobs(ctx, store.JobFilter{
			State:     model.JobState(jobsState),
			CompanyID: jobsCompany,
			Limit:     jobsLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tSTATE\tPRIORITY\tCREATED")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				j.ID, j.Request.CompanyID, j.State, j.Priority,
				j.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Print one job as JSON",
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
		out, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	jobsListCmd.Flags().StringVar(&jobsState, "state", "", "filter by job state")
	jobsListCmd.Flags().StringVar(&jobsCompany, "company", "", "filter by company id")
	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 50, "max jobs to list")
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}
