package service

import (
	"context"
	"errors"
	"strings"

	"slotmarket/internal/domain"
	"slotmarket/internal/models"
)

// RoleResolver derives a Viewer from a user id. A user owning a professional
// profile is a professional; any other known identity is a client.
type RoleResolver struct {
	backend domain.Backend
}

func NewRoleResolver(backend domain.Backend) *RoleResolver {
	return &RoleResolver{backend: backend}
}

func (r *RoleResolver) Viewer(ctx context.Context, userID string) (models.Viewer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Viewer{}, ErrInvalidViewer
	}
	viewer := models.Viewer{UserID: userID, Role: models.RoleUnknown}

	pro, err := r.backend.ProfessionalByUser(ctx, userID)
	switch {
	case err == nil && pro != nil:
		viewer.Role = models.RoleProfessional
		viewer.ProfessionalID = pro.ID
		return viewer, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return models.Viewer{}, backendError(ctx, "professional_by_user", err)
	}

	if _, err := r.backend.Identity(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return viewer, nil
		}
		return models.Viewer{}, backendError(ctx, "identity", err)
	}
	viewer.Role = models.RoleClient
	return viewer, nil
}
