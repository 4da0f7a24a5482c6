package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"survey-insights-go/internal/config"
	"survey-insights-go/internal/logger"
	"survey-insights-go/internal/pipeline"
	"survey-insights-go/internal/report"
)

var serveFlagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rollup over HTTP",
	Long: `Serve recomputes the rollup from the configured sources on every request.
Endpoints: /healthz, /rollup (JSON report), /chart (sunburst HTML).
The key_mode and source query parameters override the configured hierarchy.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlagAddr, "addr", "", "Listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if serveFlagAddr != "" {
		addr = serveFlagAddr
	}

	log := logger.New()
	log.WithField("service", "surveyinsights").Info("starting service")

	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server terminated: %w", err)
	}
	return nil
}

func newMux(cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/rollup", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "rollup")
		res, status, err := rollupForRequest(r, cfg)
		if err != nil {
			reqLog.WithError(err).Warn("rollup failed")
			http.Error(w, err.Error(), status)
			return
		}
		reqLog.WithField("run_id", res.Report.RunID).Info("rollup served")
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			reqLog.WithError(err).Error("failed to write response")
		}
	})

	mux.HandleFunc("/chart", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "chart")
		res, status, err := rollupForRequest(r, cfg)
		if err != nil {
			reqLog.WithError(err).Warn("rollup failed")
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.RenderHTML(w, "Survey category sentiment", res.Report.Chart); err != nil {
			reqLog.WithError(err).Error("failed to render chart")
		}
	})

	return mux
}

// rollupForRequest runs the pipeline on a copy of cfg with query overrides and
// returns the HTTP status to use on error.
func rollupForRequest(r *http.Request, cfg *config.Config) (pipeline.Result, int, error) {
	c := *cfg
	q := r.URL.Query()
	if v := q.Get("key_mode"); v != "" {
		c.Hierarchy.KeyMode = v
	}
	if v := q.Get("source"); v != "" {
		c.Hierarchy.Source = v
	}
	if err := c.Validate(); err != nil {
		return pipeline.Result{}, http.StatusBadRequest, err
	}
	res, err := pipeline.Run(r.Context(), &c)
	if err != nil {
		return pipeline.Result{}, http.StatusInternalServerError, err
	}
	return res, http.StatusOK, nil
}
