//go:build !cli

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "storefront.GO/custom"

	"storefront.GO/cmd"
	"storefront.GO/config"
)

func main() {
	config.LoadEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cmd.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()
	if err := cmd.Serve(ctx, app, false); err != nil {
		app.Logger.Sugar().Fatalf("server stopped: %v", err)
	}
}
