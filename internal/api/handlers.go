package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"slotmarket/internal/domain"
	"slotmarket/internal/engine"
	"slotmarket/internal/models"
	"slotmarket/internal/service"

	"github.com/gorilla/mux"
)

type claimRequest struct {
	ClientID string `json:"clientId"`
}

type reviewRequest struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type eligibilityResponse struct {
	ProfessionalID string                     `json:"professionalId"`
	UserID         string                     `json:"userId"`
	Eligible       bool                       `json:"eligible"`
	Decision       models.EligibilityDecision `json:"decision"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	days, err := s.services.Bookings.Availability(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *HTTPServer) handleProfessionalDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.services.Dashboards.Professional(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *HTTPServer) handleClientDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.services.Dashboards.Client(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *HTTPServer) handleEligibility(w http.ResponseWriter, r *http.Request) {
	professionalID := mux.Vars(r)["id"]
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	viewer, err := s.services.Viewers.Viewer(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	decision, err := s.services.Reviews.Eligibility(r.Context(), viewer, professionalID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibilityResponse{
		ProfessionalID: professionalID,
		UserID:         userID,
		Eligible:       decision == models.Eligible,
		Decision:       decision,
	})
}

func (s *HTTPServer) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var body reviewRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.UserID) == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	viewer, err := s.services.Viewers.Viewer(r.Context(), body.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	review, err := s.services.Reviews.Submit(r.Context(), viewer, models.ReviewDraft{
		ID:             body.ID,
		ProfessionalID: mux.Vars(r)["id"],
		ClientID:       viewer.UserID,
		Rating:         body.Rating,
		Comment:        body.Comment,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *HTTPServer) handleClaim(w http.ResponseWriter, r *http.Request) {
	var body claimRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	appointmentID := mux.Vars(r)["id"]
	if err := s.services.Bookings.Claim(r.Context(), appointmentID, body.ClientID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"appointmentId": appointmentID,
		"clientId":      strings.TrimSpace(body.ClientID),
		"status":        "claimed",
	})
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
}

// writeServiceError maps service and engine errors to HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var eligErr *engine.EligibilityError
	switch {
	case errors.As(err, &eligErr):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  err.Error(),
			"reason": string(eligErr.Decision),
		})
		return
	case errors.Is(err, domain.ErrSlotTaken):
		writeError(w, http.StatusConflict, domain.ErrSlotTaken.Error())
		return
	case errors.Is(err, domain.ErrReviewIDTaken):
		writeError(w, http.StatusConflict, domain.ErrReviewIDTaken.Error())
		return
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
		return
	case errors.Is(err, service.ErrInvalidClaim),
		errors.Is(err, service.ErrInvalidViewer),
		errors.Is(err, engine.ErrInvalidReview),
		errors.Is(err, engine.ErrMissingReviewID),
		errors.Is(err, engine.ErrEmptyComment):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrBackendUnavailable):
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("backend unavailable")
		writeError(w, http.StatusBadGateway, service.ErrBackendUnavailable.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}

	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
