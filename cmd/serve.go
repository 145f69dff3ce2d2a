package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"spacetwo/asset-api/app"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if viper.GetString("app.env") == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		d, err := newDeps(ctx)
		if err != nil {
			return err
		}

		if viper.GetBool("cleanup.enabled") {
			d.Sweeper.Start(ctx, viper.GetDuration("cleanup.interval"))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
			Handler:           app.NewRouter(d),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("Server starting", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		zap.L().Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().Int("host.port", 8080, "port to listen on")
}
