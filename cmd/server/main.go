package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"createform/internal/app"
	"createform/internal/config"
	"createform/internal/logging"
)

// @title createform API
// @version 1.0
// @description Scored survey and quiz builder: authoring, public forms, outcome resolution and submission analytics.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "createform",
		Short:         "Survey and quiz API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configFile)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the config file (default ./config/config.yaml)")
	return cmd
}

func serve(parent context.Context, configFile string) error {
	cfg, v, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log, level, err := logging.Init(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, &level, log)
	if err != nil {
		log.Error("Failed to start", zap.Error(err))
		return err
	}
	defer a.Close()

	if v.ConfigFileUsed() != "" {
		a.WatchConfig(v)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server exited")
	return nil
}
