package database

import (
	"context"
	"database/sql"
	"fmt"

	"slotmarket/internal/domain"
	"slotmarket/internal/models"

	"github.com/Masterminds/squirrel"
)

var appointmentColumns = []string{
	"id",
	"professional_id",
	"client_id",
	"date",
	"time",
	"note",
	"rating_value",
	"service_type_id",
	"payment_id",
}

// AppointmentsByProfessional returns every slot of a professional, claimed or not.
func (db *DB) AppointmentsByProfessional(ctx context.Context, professionalID string) ([]models.AppointmentRecord, error) {
	return db.selectAppointments(ctx, squirrel.Eq{"professional_id": professionalID})
}

// AppointmentsByClient returns the slots claimed by a client.
func (db *DB) AppointmentsByClient(ctx context.Context, clientID string) ([]models.AppointmentRecord, error) {
	return db.selectAppointments(ctx, squirrel.Eq{"client_id": clientID})
}

func (db *DB) selectAppointments(ctx context.Context, where squirrel.Sqlizer) ([]models.AppointmentRecord, error) {
	query, args, err := db.builder.Select(appointmentColumns...).
		From("appointments").
		Where(where).
		OrderBy("date", "time", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: select appointments: %v", ErrBuildQuery, err)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select appointments: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]models.AppointmentRecord, 0)
	for rows.Next() {
		var rec models.AppointmentRecord
		var serviceType sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.ProfessionalID,
			&rec.ClientID,
			&rec.Date,
			&rec.Time,
			&rec.Note,
			&rec.RatingValue,
			&serviceType,
			&rec.PaymentID,
		); err != nil {
			return nil, fmt.Errorf("%w: appointment: %v", ErrScanRow, err)
		}
		if serviceType.Valid && serviceType.String != "" {
			id := serviceType.String
			rec.ServiceTypeID = &id
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: appointments: %v", ErrScanRow, err)
	}
	return records, nil
}

// CreateAppointment inserts a slot.
func (db *DB) CreateAppointment(ctx context.Context, rec *models.AppointmentRecord) error {
	var serviceType sql.NullString
	if rec.ServiceTypeID != nil {
		serviceType = sql.NullString{String: *rec.ServiceTypeID, Valid: true}
	}

	query, args, err := db.builder.Insert("appointments").
		Columns(appointmentColumns...).
		Values(
			rec.ID,
			rec.ProfessionalID,
			rec.ClientID,
			rec.Date,
			rec.Time,
			rec.Note,
			rec.RatingValue,
			serviceType,
			rec.PaymentID,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insert appointment: %v", ErrBuildQuery, err)
	}

	if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insert appointment %s: %v", ErrExecQuery, rec.ID, err)
	}
	return nil
}

// ClaimSlot attaches clientID to the appointment only if it has no client
// yet. The conditional update makes concurrent claims race-free: exactly one
// caller sees a changed row.
func (db *DB) ClaimSlot(ctx context.Context, appointmentID, clientID string) error {
	query, args, err := db.builder.Update("appointments").
		Set("client_id", clientID).
		Where(squirrel.Eq{"id": appointmentID, "client_id": ""}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: claim slot: %v", ErrBuildQuery, err)
	}

	res, err := db.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: claim slot %s: %v", ErrExecQuery, appointmentID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: claim slot %s: %v", ErrExecQuery, appointmentID, err)
	}
	if affected == 1 {
		return nil
	}

	exists, err := db.appointmentExists(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("appointment %s: %w", appointmentID, domain.ErrNotFound)
	}
	return fmt.Errorf("appointment %s: %w", appointmentID, domain.ErrSlotTaken)
}

func (db *DB) appointmentExists(ctx context.Context, id string) (bool, error) {
	query, args, err := db.builder.Select("COUNT(*)").
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: count appointment: %v", ErrBuildQuery, err)
	}

	var count int
	if err := db.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: count appointment: %v", ErrScanRow, err)
	}
	return count > 0, nil
}
