package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/attribution"
	"github.com/sells-group/attribution-cli/internal/config"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
	"github.com/sells-group/attribution-cli/internal/store"
)

const maxRequestBody = 32 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attribution HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		api := &apiServer{store: st, attr: cfg.Attribution, input: cfg.Input}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(api, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// apiServer holds the dependencies of the HTTP handlers.
type apiServer struct {
	store store.Store
	attr  model.Config
	input config.InputConfig
}

// buildRouter mounts the API routes behind the common middleware stack.
func buildRouter(s *apiServer, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/attribution", s.handleAttribution)

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Get("/channels", s.handleRunChannels)
			r.Get("/customers", s.handleRunCustomers)
		})
	})

	return r
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

// attributionRequest is the body of POST /attribution. Config, when given,
// is applied over the server's attribution options, so omitted fields keep
// their configured values.
type attributionRequest struct {
	attribution.Input
	Config  json.RawMessage `json:"config,omitempty"`
	Persist bool            `json:"persist,omitempty"`
}

type attributionResponse struct {
	RunID    string                  `json:"run_id,omitempty"`
	Summary  model.RunSummary        `json:"summary"`
	Channels []report.ChannelSummary `json:"channels"`
	Records  []model.CreditRecord    `json:"records"`
}

func (s *apiServer) handleAttribution(w http.ResponseWriter, r *http.Request) {
	var req attributionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ac := s.attr
	if len(req.Config) > 0 && string(req.Config) != "null" {
		if err := json.Unmarshal(req.Config, &ac); err != nil {
			writeError(w, http.StatusBadRequest, "invalid config")
			return
		}
	}
	eng, err := newEngine(ac, s.input)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	var st store.Store
	if req.Persist {
		st = s.store
	}
	out, runID, err := executeRun(r.Context(), eng, st, req.Input)
	if err != nil {
		zap.L().Warn("attribution request failed", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}

	channels := out.View.ByChannel()
	if channels == nil {
		channels = []report.ChannelSummary{}
	}
	writeJSON(w, http.StatusOK, attributionResponse{
		RunID:    runID,
		Summary:  out.Summary,
		Channels: channels,
		Records:  out.View.Records(),
	})
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{Status: model.RunStatus(q.Get("status"))}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *apiServer) handleRunChannels(w http.ResponseWriter, r *http.Request) {
	v, err := viewFromRun(r.Context(), s.store, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	channels := v.ByChannel()
	if channels == nil {
		channels = []report.ChannelSummary{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *apiServer) handleRunCustomers(w http.ResponseWriter, r *http.Request) {
	v, err := viewFromRun(r.Context(), s.store, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v.ByCustomer())
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, attribution.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, model.ErrInvalidConfig), errors.Is(err, attribution.ErrRevenueRequired):
		return http.StatusBadRequest
	case errors.Is(err, errRunNotComplete):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, eris.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
