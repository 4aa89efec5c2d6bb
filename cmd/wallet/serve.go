package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/api"
	"github.com/AlexZinkM/evm-wallet/internal/config"
	"github.com/AlexZinkM/evm-wallet/internal/handler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wallet over HTTP",
	Long:  "Starts the HTTP API on PORT. For an encrypted wallet the password is asked once at startup and kept in memory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		storage, done, err := a.storage(false)
		if err != nil {
			return err
		}
		defer done()

		if height, err := a.chain.BlockNumber(cmd.Context()); err != nil {
			a.log.Warn("node not reachable", zap.String("rpc", a.chain.URL()), zap.Error(err))
		} else {
			a.log.Info("connected to node", zap.String("rpc", a.chain.URL()), zap.Uint64("block", height))
		}

		h, err := handler.NewEthereumHandler(a.svc, storage, a.log)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + config.GetPort(),
			Handler:           api.SetupRouter(h, a.metrics, a.log),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return run(cmd.Context(), srv, a.log)
	},
}

// run serves until ctx is cancelled, then drains in-flight requests
func run(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
