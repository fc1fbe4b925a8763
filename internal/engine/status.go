package engine

import (
	"time"

	"slotmarket/internal/models"
)

// Classify assigns the four-state lifecycle seen by the professional.
// Unclaimed records are open; callers drop the past ones with Visible.
func (e *Engine) Classify(rec models.AppointmentRecord, now time.Time) models.LifecycleState {
	if !rec.IsClaimed() {
		return models.StateOpen
	}
	if e.elapsed(componentStatus, rec, now) {
		return models.StateCompleted
	}
	if sameDay(e.moment(rec, now), now) {
		return models.StateConfirmed
	}
	return models.StatePending
}

// ClassifyForClient collapses the lifecycle to confirmed or completed.
func (e *Engine) ClassifyForClient(rec models.AppointmentRecord, now time.Time) models.LifecycleState {
	if e.elapsed(componentStatus, rec, now) {
		return models.StateCompleted
	}
	return models.StateConfirmed
}

// Project classifies rec for the given viewer role.
func (e *Engine) Project(role models.Role, rec models.AppointmentRecord, now time.Time) models.LifecycleState {
	if role == models.RoleClient {
		return e.ClassifyForClient(rec, now)
	}
	return e.Classify(rec, now)
}

// Visible is false exactly for unclaimed records already in the past.
func (e *Engine) Visible(rec models.AppointmentRecord, now time.Time) bool {
	if rec.IsClaimed() {
		return true
	}
	return !e.expired(componentStatus, rec, now)
}
