package service

import (
	"context"
	"errors"
	"testing"

	"slotmarket/internal/domain"
	"slotmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoleResolver(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *mockBackend)
		expected models.Viewer
		err      error
	}{
		{
			name: "professional",
			setup: func(m *mockBackend) {
				m.On("ProfessionalByUser", mock.Anything, "u1").Return(&models.ProfessionalRecord{ID: "p1", UserID: "u1"}, nil)
			},
			expected: models.Viewer{UserID: "u1", Role: models.RoleProfessional, ProfessionalID: "p1"},
		},
		{
			name: "client",
			setup: func(m *mockBackend) {
				m.On("ProfessionalByUser", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
				m.On("Identity", mock.Anything, "u1").Return(&models.IdentityRecord{ID: "u1"}, nil)
			},
			expected: models.Viewer{UserID: "u1", Role: models.RoleClient},
		},
		{
			name: "unknown",
			setup: func(m *mockBackend) {
				m.On("ProfessionalByUser", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
				m.On("Identity", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
			},
			expected: models.Viewer{UserID: "u1", Role: models.RoleUnknown},
		},
		{
			name: "backend down",
			setup: func(m *mockBackend) {
				m.On("ProfessionalByUser", mock.Anything, "u1").Return(nil, errors.New("connection refused"))
			},
			err: ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(mockBackend)
			tt.setup(backend)

			viewer, err := NewRoleResolver(backend).Viewer(context.Background(), "u1")
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, viewer)
		})
	}
}

func TestRoleResolver_EmptyUser(t *testing.T) {
	_, err := NewRoleResolver(new(mockBackend)).Viewer(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidViewer)
}
