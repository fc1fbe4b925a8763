package database

import (
	"context"
	"fmt"
	"time"

	"slotmarket/internal/domain"
	"slotmarket/internal/models"

	"github.com/Masterminds/squirrel"
)

func (db *DB) ReviewsByProfessional(ctx context.Context, professionalID string) ([]models.ReviewRecord, error) {
	query, args, err := db.builder.Select("id", "professional_id", "client_id", "rating", "comment", "created_at").
		From("reviews").
		Where(squirrel.Eq{"professional_id": professionalID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: select reviews: %v", ErrBuildQuery, err)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select reviews: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	reviews := make([]models.ReviewRecord, 0)
	for rows.Next() {
		var r models.ReviewRecord
		if err := rows.Scan(&r.ID, &r.ProfessionalID, &r.ClientID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: review: %v", ErrScanRow, err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reviews: %v", ErrScanRow, err)
	}
	return reviews, nil
}

// CreateReview inserts a review. A second review for the same pair fails
// with domain.ErrDuplicateReview; a reused id fails with
// domain.ErrReviewIDTaken.
func (db *DB) CreateReview(ctx context.Context, review *models.ReviewRecord) error {
	createdAt := review.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := db.builder.Insert("reviews").
		Columns("id", "professional_id", "client_id", "rating", "comment", "created_at").
		Values(review.ID, review.ProfessionalID, review.ClientID, review.Rating, review.Comment, createdAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insert review: %v", ErrBuildQuery, err)
	}

	if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
		if isReviewPairViolation(err) {
			return fmt.Errorf("review %s: %w", review.ID, domain.ErrDuplicateReview)
		}
		if violated, _, _ := uniqueViolation(err); violated {
			return fmt.Errorf("review %s: %w", review.ID, domain.ErrReviewIDTaken)
		}
		return fmt.Errorf("%w: insert review %s: %v", ErrExecQuery, review.ID, err)
	}
	review.CreatedAt = createdAt
	return nil
}
