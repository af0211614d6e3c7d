package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/mohamedibrahim54/envcors"
)

const (
	keyAddr         = "addr"
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a sample API behind the env-cors provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cmdServe(ctx, v)
		},
	}
	cmd.Flags().String(keyAddr, ":8080", "address to listen on")
	_ = v.BindPFlag(keyAddr, cmd.Flags().Lookup(keyAddr))
	return cmd
}

func cmdServe(ctx context.Context, v *viper.Viper) (err error) {
	log, err := newLogger(v.GetString(keyLogLevel))
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	h, err := newHandler(v, log, reg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              v.GetString(keyAddr),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return errs.Wrap(err)
	}
	return errs.Wrap(<-done)
}

// newHandler returns the handler of the sample API, in which every route
// but /metrics goes through the env-cors provider.
func newHandler(v *viper.Viper, log *zap.Logger, reg *prometheus.Registry) (http.Handler, error) {
	p, err := loadPolicy(v)
	if err != nil {
		return nil, err
	}
	f, err := newFactory(v, log, reg)
	if err != nil {
		return nil, err
	}
	api := http.NewServeMux()
	api.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "hello from corsprobe\n")
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", envcors.NewMiddleware(f, p.configure).Wrap(api))
	return mux, nil
}
