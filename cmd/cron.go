package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"storefront.GO/config"
	"storefront.GO/cron"
	"storefront.GO/cron/jobs"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(c *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		app, err := Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		jobs.Install(jobs.Deps{Rates: app.Deps.Rates, Sessions: app.Deps.Sessions, Logger: app.Logger.Named("jobs")})

		if jobName != "" {
			name := strings.ToLower(jobName)
			j, ok := cron.Jobs()[name]
			if !ok {
				return fmt.Errorf("unknown job: %s", jobName)
			}
			return cron.RunJob(ctx, name, j, app.Logger)
		}

		sched, err := cron.StartCron(config.CronSchedules(app.Config), app.Logger)
		if err != nil {
			return err
		}
		app.Logger.Info("cron scheduler started, press Ctrl+C to exit")
		<-ctx.Done()
		<-sched.Stop().Done()
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
