package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wxrmessenger/internal/devserver"
	"wxrmessenger/internal/external"
	"wxrmessenger/internal/forecasts"
	"wxrmessenger/internal/inbound"
	"wxrmessenger/internal/logging"
	notify "wxrmessenger/internal/notifications/email"
	"wxrmessenger/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP front end",
	Long:  "Serve POST /inbound (raw email), POST /feedback (SNS envelope) and GET /suppressions/{address}. Requires APP_ENV=local.",
	RunE:  runServe,
}

var servePort string

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	mail, ok := env.clients.Mail.(*external.MemoryMailStore)
	if !ok {
		return errors.New("serve only runs with APP_ENV=local")
	}

	typed := logging.NewAdapter(env.logger)
	metrics := telemetry.New(env.cfg, env.awsCfg, typed)
	pipeline := inbound.NewPipeline(env.cfg.Mail, inbound.Dependencies{
		Store:        mail,
		Mailer:       env.clients.Mailer,
		Forecaster:   forecasts.NewService(env.clients.Weather, env.logger),
		Suppressions: env.ledger,
		Metrics:      metrics,
		Logger:       typed,
	})
	processor := notify.NewFeedbackProcessor(env.ledger, metrics, typed)

	port := servePort
	if port == "" {
		port = env.cfg.Server.Port
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           devserver.NewServer(mail, pipeline, processor, env.ledger, typed),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
