package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mention-cli/internal/research"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for research requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		brands, err := research.LoadBrands(cfg.Brands.Path)
		if err != nil {
			return err
		}

		runner, err := buildRunner(cfg)
		if err != nil {
			return err
		}
		registry := research.NewRegistry(runner)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/research", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Brand string `json:"brand"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Brand == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "brand is required"})
				return
			}

			brand, ok := research.FindBrand(brands, body.Brand)
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown brand"})
				return
			}

			id := registry.Start(req.Context(), brand)
			writeJSON(w, http.StatusAccepted, map[string]string{"run_id": id, "brand": brand.Name})
		})

		r.Get("/runs", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, registry.List())
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, ok := registry.Get(chi.URLParam(req, "id"))
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown run"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		r.Delete("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			if !registry.Cancel(chi.URLParam(req, "id")) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown run"})
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "canceling"})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("server listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
