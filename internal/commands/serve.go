package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/api"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.HTTP.Addr
			}
			return serve(cmd.Context(), e, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, e *env, addr string) error {
	srv := api.NewServer(e.db,
		api.WithLogger(e.logger),
		api.WithReportConfig(e.reportConfig()),
		api.WithRequestTimeout(e.cfg.HTTP.RequestTimeout),
	)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	errc := make(chan error, 1)
	go func() {
		e.logger.Info("listening", zap.String("addr", addr))
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	e.logger.Info("shutting down")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
