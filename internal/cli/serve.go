package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/gwmap/gwmap/pkg/buildinfo"
	"github.com/gwmap/gwmap/pkg/errors"
	"github.com/gwmap/gwmap/pkg/pipeline"
	"github.com/gwmap/gwmap/pkg/resource"
	"github.com/gwmap/gwmap/pkg/topology"
)

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis pipeline over HTTP",
		Long: `Serve the analysis pipeline over HTTP.

Endpoints:
  GET  /healthz      liveness probe
  POST /api/analyze  analyze inline resource records and return diagrams

The analyze endpoint accepts a JSON body with per-kind record listings
(the same pipe-delimited lines the snapshot files hold) plus render
options, and responds with the run summary and rendered diagrams.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := &apiServer{runner: runner}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), c.Logger)))
		})
	})
	router.Get("/healthz", srv.handleHealthz)
	router.Post("/api/analyze", srv.handleAnalyze)

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// apiServer holds the handlers' shared dependencies.
type apiServer struct {
	runner *pipeline.Runner
}

// analyzeRequest is the POST /api/analyze request body. Resources maps a
// record kind ("gateways", "routes", ...) to its newline-separated records.
type analyzeRequest struct {
	Resources  map[string]string `json:"resources"`
	Formats    []string          `json:"formats,omitempty"`
	Mode       string            `json:"mode,omitempty"`
	Threshold  int               `json:"threshold,omitempty"`
	Focus      string            `json:"focus,omitempty"`
	ShowGrants bool              `json:"show_grants,omitempty"`
	Refresh    bool              `json:"refresh,omitempty"`
}

// analyzeResponse is the POST /api/analyze response body. Artifacts are
// textual in every format, so they travel as strings.
type analyzeResponse struct {
	RunID        string            `json:"run_id"`
	Mode         string            `json:"mode"`
	TopologyHash string            `json:"topology_hash"`
	Summary      *topology.Summary `json:"summary"`
	Nodes        int               `json:"nodes"`
	Edges        int               `json:"edges"`
	Cached       bool              `json:"cached"`
	Artifacts    map[string]string `json:"artifacts"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *apiServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "decode request: %v", err))
		return
	}

	snap, err := decodeResources(req.Resources)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	logger := loggerFromContext(r.Context())
	prog := newProgress(logger)

	opts := pipeline.Options{
		ShowGrants: req.ShowGrants,
		Formats:    req.Formats,
		Mode:       req.Mode,
		Threshold:  req.Threshold,
		Focus:      req.Focus,
		Refresh:    req.Refresh,
		Logger:     logger,
	}

	result, err := s.runner.ExecuteSnapshot(r.Context(), snap, opts)
	if err != nil {
		status := http.StatusInternalServerError
		switch errors.GetCode(err) {
		case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
			errors.ErrCodeInvalidMode, errors.ErrCodeInvalidFocus:
			status = http.StatusBadRequest
		case errors.ErrCodeGatewayNotFound, errors.ErrCodeNotFound:
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	resp := analyzeResponse{
		RunID:        result.RunID,
		Mode:         string(result.Mode),
		TopologyHash: result.TopologyHash,
		Summary:      result.Summary,
		Nodes:        result.Stats.NodeCount,
		Edges:        result.Stats.EdgeCount,
		Cached:       result.CacheInfo.BuildHit && result.CacheInfo.RenderHit,
		Artifacts:    make(map[string]string, len(result.Artifacts)),
	}
	for format, data := range result.Artifacts {
		resp.Artifacts[format] = string(data)
	}
	prog.done(fmt.Sprintf("Analyzed %d gateways", len(snap.Gateways)))
	writeJSON(w, http.StatusOK, resp)
}

// decodeResources parses per-kind record listings into a snapshot.
// Unknown kind names are rejected rather than silently dropped.
func decodeResources(resources map[string]string) (*resource.Snapshot, error) {
	valid := make(map[resource.Kind]bool, len(resource.Kinds))
	for _, k := range resource.Kinds {
		valid[k] = true
	}
	for name := range resources {
		if !valid[resource.Kind(name)] {
			return nil, errors.New(errors.ErrCodeInvalidRecord, "unknown resource kind: %q", name)
		}
	}

	snap := resource.NewSnapshot()
	for _, kind := range resource.Kinds {
		records, ok := resources[string(kind)]
		if !ok {
			continue
		}
		if err := resource.Decode(kind, strings.NewReader(records), snap); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "decode %s records", kind)
		}
	}
	return snap, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	var resp errorResponse
	resp.Error.Code = string(errors.GetCode(err))
	resp.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, resp)
}
