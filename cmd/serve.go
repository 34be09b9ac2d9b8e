package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/profile"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve profiles and coverage reports read-only for operators",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		writer, err := profile.NewWriter(cfg.Output.ProfileDir)
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/profiles/{id}", func(w http.ResponseWriter, req *http.Request) {
			p, err := writer.Read(chi.URLParam(req, "id"))
			if err != nil {
				if eris.Is(err, os.ErrNotExist) {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
					return
				}
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read profile"})
				return
			}
			writeJSON(w, http.StatusOK, p)
		})

		r.Get("/api/coverage", func(w http.ResponseWriter, req *http.Request) {
			cov, err := st.LatestCoverage(req.Context())
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load coverage"})
				return
			}
			if cov == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed runs"})
				return
			}
			writeJSON(w, http.StatusOK, cov)
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("status server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	rootCmd.AddCommand(serveCmd)
}
