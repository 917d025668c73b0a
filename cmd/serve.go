package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"medchain/src/config"
	"medchain/src/web"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadServerConfigFromCLI()
		if cfg.SessionSecret == "" {
			secret, err := uuid.NewV4()
			if err != nil {
				return errors.Wrap(err, "unable to generate session secret")
			}
			cfg.SessionSecret = secret.String()
			log.Warn("No session secret configured, using a random one")
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "invalid server configuration")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Serve(ctx, cfg)
	},
}

// Serve runs the API until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, cfg config.ServerConfig) error {
	api := web.New(cfg, web.NewUserStore())
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Node UUID: %s", api.NodeIdentifier())
		log.Infof("Listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().String("addr", config.DefaultAddr, "address to listen on")
	serveCmd.Flags().String("session-secret", "", "HMAC secret for session tokens (random when empty)")
	serveCmd.Flags().Duration("session-ttl", config.DefaultSessionTTL, "session lifetime")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		log.Errorf("Failed to bind serve flags: %s", err)
	}
}
