package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/paveldruzyak/commodus/internal/application/review"
	"github.com/paveldruzyak/commodus/internal/domain/approval"
	"github.com/paveldruzyak/commodus/internal/domain/event"
	"github.com/paveldruzyak/commodus/internal/domain/scm"
)

// EventHandler applies a decoded webhook event.
type EventHandler interface {
	Handle(ctx context.Context, ev event.Event) (review.Outcome, error)
}

// WebhookOptions controls payload authentication.
type WebhookOptions struct {
	Secret string
	// InsecureSkipVerify accepts unsigned payloads. Only meant for local testing.
	InsecureSkipVerify bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	handler EventHandler
	webhook WebhookOptions
	timeout time.Duration
	logger  zerolog.Logger
}

func NewServer(handler EventHandler, webhook WebhookOptions, logger zerolog.Logger) *Server {
	return &Server{
		handler: handler,
		webhook: webhook,
		timeout: 30 * time.Second,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.healthz)
	r.Post("/webhook", s.receiveWebhook)
	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := s.readPayload(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ev, err := decodeEvent(r, payload)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	outcome, err := s.handler.Handle(r.Context(), ev)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug().
		Str("delivery_id", ev.DeliveryID).
		Str("event", ev.Kind.String()).
		Str("outcome", string(outcome)).
		Msg("webhook handled")
	respondJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	evt := s.logger.Error()
	if status < http.StatusInternalServerError {
		evt = s.logger.Warn()
	}
	evt.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("delivery_id", r.Header.Get(deliveryHeader)).
		Int("status", status).
		Msg("webhook rejected")
	respondError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSignatureInvalid):
		return http.StatusInternalServerError, "signature_invalid"
	case errors.Is(err, event.ErrMalformedPayload):
		return http.StatusBadRequest, "malformed_payload"
	case errors.Is(err, approval.ErrStoreUnavailable):
		return http.StatusInternalServerError, "store_unavailable"
	case errors.Is(err, scm.ErrPlatformAPI):
		return http.StatusInternalServerError, "platform_api_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}
