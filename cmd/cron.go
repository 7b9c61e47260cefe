package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront.GO/cron"
	_ "storefront.GO/cron/jobs"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if jobName != "" {
			fmt.Fprintf(out, "Running cron job: %s\n", jobName)
			return cron.RunJob(cmd.Context(), jobName, args...)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		c, err := cron.StartCron(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Cron scheduler started with jobs %v. Press Ctrl+C to exit.\n", cron.Names())
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
