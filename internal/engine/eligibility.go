package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"slotmarket/internal/models"
)

var (
	ErrInvalidReview   = errors.New("invalid review")
	ErrMissingReviewID = errors.New("review id is required")
	ErrEmptyComment    = errors.New("review comment is empty")
)

// EligibilityError is returned when a review is rejected for a reason other
// than malformed input.
type EligibilityError struct {
	Decision models.EligibilityDecision
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("review not allowed: %s", e.Decision)
}

type reviewPair struct {
	clientID       string
	professionalID string
}

// ReviewIndex is the set of (client, professional) pairs that already have
// a review. The zero value and nil are empty sets.
type ReviewIndex struct {
	pairs map[reviewPair]struct{}
}

func NewReviewIndex(reviews []models.ReviewRecord) *ReviewIndex {
	idx := &ReviewIndex{pairs: make(map[reviewPair]struct{}, len(reviews))}
	for _, r := range reviews {
		idx.Add(r.ClientID, r.ProfessionalID)
	}
	return idx
}

func (x *ReviewIndex) Add(clientID, professionalID string) {
	if x.pairs == nil {
		x.pairs = make(map[reviewPair]struct{})
	}
	x.pairs[newReviewPair(clientID, professionalID)] = struct{}{}
}

func (x *ReviewIndex) Has(clientID, professionalID string) bool {
	if x == nil {
		return false
	}
	_, ok := x.pairs[newReviewPair(clientID, professionalID)]
	return ok
}

func (x *ReviewIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.pairs)
}

func newReviewPair(clientID, professionalID string) reviewPair {
	return reviewPair{
		clientID:       strings.TrimSpace(clientID),
		professionalID: strings.TrimSpace(professionalID),
	}
}

// EvaluateEligibility decides whether viewer may review professionalID.
// Checks run in order: role, past engagement with this professional, then
// an existing review for the pair.
func (e *Engine) EvaluateEligibility(
	viewer models.Viewer,
	professionalID string,
	appointments []models.AppointmentRecord,
	reviews *ReviewIndex,
	now time.Time,
) models.EligibilityDecision {
	clientID := strings.TrimSpace(viewer.UserID)
	if viewer.Role != models.RoleClient || clientID == "" {
		return models.NotAClient
	}

	professionalID = strings.TrimSpace(professionalID)
	if professionalID == "" {
		return models.NoPastEngagement
	}
	engaged := false
	for _, rec := range appointments {
		// a record without a professional never matches
		if strings.TrimSpace(rec.ProfessionalID) != professionalID {
			continue
		}
		if strings.TrimSpace(rec.ClientID) != clientID {
			continue
		}
		if e.elapsed(componentEligibility, rec, now) {
			engaged = true
			break
		}
	}
	if !engaged {
		return models.NoPastEngagement
	}

	if reviews.Has(clientID, professionalID) {
		return models.AlreadyReviewed
	}
	return models.Eligible
}

// ClampRating bounds a rating to the accepted range.
func ClampRating(rating int) int {
	if rating < models.MinRating {
		return models.MinRating
	}
	if rating > models.MaxRating {
		return models.MaxRating
	}
	return rating
}

// PrepareReview validates a draft and returns the record to persist.
func PrepareReview(draft models.ReviewDraft, now time.Time) (models.ReviewRecord, error) {
	id := strings.TrimSpace(draft.ID)
	if id == "" {
		return models.ReviewRecord{}, ErrMissingReviewID
	}

	clientID := strings.TrimSpace(draft.ClientID)
	professionalID := strings.TrimSpace(draft.ProfessionalID)
	if clientID == "" || professionalID == "" {
		return models.ReviewRecord{}, fmt.Errorf("%w: client and professional are required", ErrInvalidReview)
	}

	comment := strings.TrimSpace(draft.Comment)
	if comment == "" {
		return models.ReviewRecord{}, ErrEmptyComment
	}

	return models.ReviewRecord{
		ID:             id,
		ProfessionalID: professionalID,
		ClientID:       clientID,
		Rating:         ClampRating(draft.Rating),
		Comment:        comment,
		CreatedAt:      now,
	}, nil
}
