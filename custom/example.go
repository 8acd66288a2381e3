// Package custom shows how site-specific code hooks into the storefront
// without touching core packages: a command, a cron job and a route.
package custom

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"storefront.GO/api"
	"storefront.GO/cmd"
	"storefront.GO/cron"
)

var started = time.Now()

func init() {
	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:hello",
		Short: "Custom command example",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), "Hello from custom command")
		},
	})

	// Cron job
	cron.Register("customping", "@hourly", func(ctx context.Context) error {
		fmt.Println("Custom cron: ping, up", time.Since(started).Round(time.Second))
		return nil
	})

	// HTTP route
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return api.OK(c, http.StatusOK, map[string]string{"pong": "ok", "uptime": time.Since(started).Round(time.Second).String()})
	})
}
