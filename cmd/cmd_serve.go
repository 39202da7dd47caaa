package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"searchagent/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serve GET /, POST /search, GET /healthz and GET /metrics until SIGINT or SIGTERM.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Override app.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newAppFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		a.cfg.App.Port = port
	}
	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(a.service, api.ServerConfig{
		Port:              a.cfg.App.Port,
		DefaultMaxResults: a.cfg.Agent.DefaultMaxResults,
		RequestTimeout:    a.cfg.App.RequestTimeout,
	}, a.logger, a.metrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}
