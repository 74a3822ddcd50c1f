package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP action server",
	Long: `Starts the action API. Every request is answered from the stored form and the
participant's stored position, so several instances can share one session store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			app.Config.HTTP.Port = port
		}
		if dir, _ := cmd.Flags().GetString("forms"); dir != "" {
			ids, err := cli.ImportDir(cmd.Context(), app.Repo, dir)
			if err != nil {
				return err
			}
			app.Logger.Info("imported forms", "dir", dir, "count", len(ids))
		}

		srv := &http.Server{
			Addr:              app.Config.Addr(),
			Handler:           app.HTTPHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("starting formflow server", "address", srv.Addr, "base_path", app.Config.HTTP.BasePath)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-cmd.Context().Done():
			timeout := app.Config.HTTP.ShutdownTimeout.Std()
			app.Logger.Info("shutting down", "timeout", timeout)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.Logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			app.Logger.Info("formflow server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("forms", "", "Directory of *.json forms to import before serving")
}
