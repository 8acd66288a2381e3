package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront.GO/api"
	_ "storefront.GO/api/auth"
	_ "storefront.GO/api/currency"
	_ "storefront.GO/api/product"
	_ "storefront.GO/api/wishlist"
	"storefront.GO/config"
	"storefront.GO/cron"
	"storefront.GO/cron/jobs"
)

var serveWithCron bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront HTTP API",
	RunE: func(c *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		app, err := Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		return Serve(ctx, app, serveWithCron)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveWithCron, "with-cron", false, "Also run the cron scheduler in this process")
	rootCmd.AddCommand(serveCmd)
}

// Serve runs the API until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, app *App, withCron bool) error {
	e := api.NewServer(app.Deps)

	if withCron {
		jobs.Install(jobs.Deps{Rates: app.Deps.Rates, Sessions: app.Deps.Sessions, Logger: app.Logger.Named("jobs")})
		sched, err := cron.StartCron(config.CronSchedules(app.Config), app.Logger)
		if err != nil {
			return err
		}
		defer func() { <-sched.Stop().Done() }()
	}

	// ASCII banner on start (random font each run)
	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "doom", "larry3d", "puffy"}
	figure.NewFigure("Storefront", fonts[rand.Intn(len(fonts))], true).Print()
	fmt.Println()

	addr := ":" + app.Config.Port
	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server running", zap.String("addr", addr), zap.Bool("search_index", app.Deps.Search.Enabled()))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
