// Package server exposes schedule generation and calendar lookups over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/cmd/schedgen/internal/appconfig"
	"github.com/meenmo/moschedule/cmd/schedgen/internal/batchio"
	"github.com/meenmo/moschedule/holidays"
	"github.com/meenmo/moschedule/metrics"
	"github.com/meenmo/moschedule/period"
	"github.com/meenmo/moschedule/schedule"
)

// Calendars is the calendar lookup the server needs.
type Calendars interface {
	batchio.CalendarProvider
	IDs() []string
}

// Options configures a Server.
// Gatherer backs /metrics; nil uses the default gatherer.
type Options struct {
	Logger    *zap.Logger
	Calendars Calendars
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Config    appconfig.ServerConfig
	StartYear int
	EndYear   int
}

// Server handles the schedgen HTTP API.
type Server struct {
	logger    *zap.Logger
	calendars Calendars
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	cfg       appconfig.ServerConfig
	startYear int
	endYear   int
}

// New creates a new Server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		logger:    opts.Logger,
		calendars: opts.Calendars,
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		cfg:       opts.Config,
		startYear: opts.StartYear,
		endYear:   opts.EndYear,
	}
}

type ctxKey struct{}

// requestID returns the id assigned by the request id middleware.
func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.withRequestID)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(s.cfg.RequestTimeout))
		}
		r.Post("/schedules", s.handleSchedules)
		r.Get("/calendars", s.handleCalendars)
		r.Get("/calendars/{id}/business-days/{date}", s.handleBusinessDay)
	})
	return r
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("request_id", requestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := requestID(ctx)

	req, err := batchio.DecodeRequest(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Items) > s.cfg.MaxBatch && s.cfg.MaxBatch > 0 {
		s.writeError(w, r, fmt.Errorf("%w: %d items exceeds the limit of %d", batchio.ErrBadRequest, len(req.Items), s.cfg.MaxBatch))
		return
	}

	start := time.Now()
	resp, rows, err := req.Run(ctx, s.calendars, s.startYear, s.endYear)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveBatch(req.Backward, rows.Lengths(), time.Since(start))

	resp.RequestID = id
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCalendars(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"calendars": s.calendars.IDs()})
}

// BusinessDayResponse describes one date on one calendar.
type BusinessDayResponse struct {
	Calendar    string `json:"calendar"`
	Date        string `json:"date"`
	BusinessDay bool   `json:"business_day"`
	Next        string `json:"next,omitempty"`
	Previous    string `json:"previous,omitempty"`
	Convention  string `json:"convention,omitempty"`
	Rolled      string `json:"rolled,omitempty"`
}

func (s *Server) handleBusinessDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	calID := chi.URLParam(r, "id")

	d, err := batchio.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", batchio.ErrBadRequest, err))
		return
	}
	cal, err := s.calendars.Calendar(ctx, calID, s.startYear, s.endYear)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := cal.IsBusinessDay(d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := BusinessDayResponse{Calendar: strings.ToUpper(calID), Date: d.String(), BusinessDay: ok}
	if next, err := cal.NextBusinessDay(d); err == nil {
		resp.Next = next.String()
	}
	if prev, err := cal.PreviousBusinessDay(d); err == nil {
		resp.Previous = prev.String()
	}
	if c := r.URL.Query().Get("convention"); c != "" {
		conv, err := calendar.ParseConvention(c)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", batchio.ErrBadRequest, err))
			return
		}
		rolled, err := cal.Roll(d, conv)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Convention = string(conv)
		resp.Rolled = rolled.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// classify maps an error to a status code and a metrics label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, holidays.ErrUnknownMarket):
		return http.StatusNotFound, "calendar"
	case errors.Is(err, batchio.ErrBadRequest):
		return http.StatusBadRequest, "decode"
	case errors.Is(err, schedule.ErrInvalidRange),
		errors.Is(err, schedule.ErrShapeMismatch),
		errors.Is(err, schedule.ErrTooManyPeriods),
		errors.Is(err, period.ErrInvalidPeriod),
		errors.Is(err, calendar.ErrOutOfRange):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	s.metrics.IncrementRequestError(kind)
	id := requestID(r.Context())

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("request_id", id), zap.Error(err))
		msg = "internal error"
	} else {
		s.logger.Info("Request rejected", zap.String("request_id", id), zap.String("kind", kind), zap.Error(err))
	}
	writeJSON(w, status, batchio.ErrorResponse{RequestID: id, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", zap.String("addr", s.cfg.Addr))
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

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
