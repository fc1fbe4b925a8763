// Package api serves the dashboards, availability, claims and reviews over
// HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"slotmarket/internal/config"
	"slotmarket/internal/models"
	"slotmarket/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Dashboards interface {
	Client(ctx context.Context, clientID string) (*service.ClientDashboard, error)
	Professional(ctx context.Context, professionalID string) (*service.ProfessionalDashboard, error)
}

type Bookings interface {
	Availability(ctx context.Context, professionalID string) ([]models.DaySlots, error)
	Claim(ctx context.Context, appointmentID, clientID string) error
}

type Reviews interface {
	Eligibility(ctx context.Context, viewer models.Viewer, professionalID string) (models.EligibilityDecision, error)
	Submit(ctx context.Context, viewer models.Viewer, draft models.ReviewDraft) (*models.ReviewRecord, error)
}

type Viewers interface {
	Viewer(ctx context.Context, userID string) (models.Viewer, error)
}

// Services bundles what the handlers call into.
type Services struct {
	Dashboards Dashboards
	Bookings   Bookings
	Reviews    Reviews
	Viewers    Viewers
}

type HTTPServer struct {
	cfg      config.APIConfig
	services Services
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, services Services, logger *zerolog.Logger) *HTTPServer {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "http").Logger()
	}

	srv := &HTTPServer{
		cfg:      cfg,
		services: services,
		auth:     NewHTTPAuth(cfg),
		logger:   &base,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes() http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	// subrouters do not inherit the parent's handler
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	v1.Use(s.loggingMiddleware, s.auth.Middleware)

	v1.HandleFunc("/professionals/{id}/availability", s.handleAvailability).Methods(http.MethodGet)
	v1.HandleFunc("/professionals/{id}/dashboard", s.handleProfessionalDashboard).Methods(http.MethodGet)
	v1.HandleFunc("/clients/{id}/dashboard", s.handleClientDashboard).Methods(http.MethodGet)
	v1.HandleFunc("/professionals/{id}/reviews/eligibility", s.handleEligibility).Methods(http.MethodGet)
	v1.HandleFunc("/professionals/{id}/reviews", s.handleSubmitReview).Methods(http.MethodPost)
	v1.HandleFunc("/appointments/{id}/claim", s.handleClaim).Methods(http.MethodPost)
	return r
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
