package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"transplan/internal/api"
	"transplan/internal/config"
	"transplan/internal/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the planning HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			srvDeps, err := api.NewServer(cfg)
			if err != nil {
				return err
			}
			metrics.RegisterDefault()

			mux := http.NewServeMux()

			// Runs
			mux.HandleFunc("/v1/runs", srvDeps.RunsHandler)
			mux.HandleFunc("/v1/runs/", srvDeps.RunByIDHandler) // includes /results, /events/stream, /events/ws
			mux.HandleFunc("/v1/validate", srvDeps.ValidateHandler)

			// Health
			mux.HandleFunc("/healthz", srvDeps.HealthHandler)
			mux.HandleFunc("/readyz", srvDeps.ReadyHandler)

			// Observability
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			mux.HandleFunc("/debug/info", srvDeps.DebugJSON)

			addr := ":8080"
			if v := os.Getenv("PORT"); v != "" {
				addr = ":" + v
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           logMiddleware(api.RateLimit(api.Instrument(mux))),
				ReadHeaderTimeout: 5 * time.Second,
			}

			log.Printf("API listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}
