package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"slotmarket/internal/domain"
	"slotmarket/internal/models"

	"github.com/Masterminds/squirrel"
)

var professionalColumns = []string{
	"id",
	"user_id",
	"first_name",
	"last_name",
	"profession_id",
	"profession",
	"address",
	"city",
	"state",
	"country",
	"hourly_price",
	"bio",
	"experience",
}

func (db *DB) Professional(ctx context.Context, id string) (*models.ProfessionalRecord, error) {
	return db.selectProfessional(ctx, squirrel.Eq{"id": id})
}

func (db *DB) ProfessionalByUser(ctx context.Context, userID string) (*models.ProfessionalRecord, error) {
	return db.selectProfessional(ctx, squirrel.Eq{"user_id": userID})
}

func (db *DB) selectProfessional(ctx context.Context, where squirrel.Sqlizer) (*models.ProfessionalRecord, error) {
	query, args, err := db.builder.Select(professionalColumns...).
		From("professionals").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: select professional: %v", ErrBuildQuery, err)
	}

	var p models.ProfessionalRecord
	err = db.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.ProfessionID,
		&p.Profession,
		&p.Address,
		&p.City,
		&p.State,
		&p.Country,
		&p.HourlyPrice,
		&p.Bio,
		&p.Experience,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: professional: %v", ErrScanRow, err)
	}

	services, err := db.professionalServices(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Services = services
	return &p, nil
}

func (db *DB) professionalServices(ctx context.Context, professionalID string) ([]models.ServiceOffering, error) {
	query, args, err := db.builder.Select("service_id", "name", "price").
		From("professional_services").
		Where(squirrel.Eq{"professional_id": professionalID}).
		OrderBy("service_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: select services: %v", ErrBuildQuery, err)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select services: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var services []models.ServiceOffering
	for rows.Next() {
		var s models.ServiceOffering
		if err := rows.Scan(&s.ID, &s.Name, &s.Price); err != nil {
			return nil, fmt.Errorf("%w: service: %v", ErrScanRow, err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// CreateProfessional inserts a profile and its service list.
func (db *DB) CreateProfessional(ctx context.Context, p *models.ProfessionalRecord) error {
	query, args, err := db.builder.Insert("professionals").
		Columns(professionalColumns...).
		Values(
			p.ID,
			p.UserID,
			p.FirstName,
			p.LastName,
			p.ProfessionID,
			p.Profession,
			p.Address,
			p.City,
			p.State,
			p.Country,
			p.HourlyPrice,
			p.Bio,
			p.Experience,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insert professional: %v", ErrBuildQuery, err)
	}
	if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insert professional %s: %v", ErrExecQuery, p.ID, err)
	}

	for _, s := range p.Services {
		query, args, err := db.builder.Insert("professional_services").
			Columns("professional_id", "service_id", "name", "price").
			Values(p.ID, s.ID, s.Name, s.Price).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: insert service: %v", ErrBuildQuery, err)
		}
		if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: insert service %s: %v", ErrExecQuery, s.ID, err)
		}
	}
	return nil
}

func (db *DB) Identity(ctx context.Context, id string) (*models.IdentityRecord, error) {
	query, args, err := db.builder.Select("id", "first_name", "last_name", "email", "phone", "city", "country").
		From("identities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: select identity: %v", ErrBuildQuery, err)
	}

	var i models.IdentityRecord
	err = db.db.QueryRowContext(ctx, query, args...).Scan(
		&i.ID,
		&i.FirstName,
		&i.LastName,
		&i.Email,
		&i.Phone,
		&i.City,
		&i.Country,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: identity: %v", ErrScanRow, err)
	}
	return &i, nil
}

func (db *DB) CreateIdentity(ctx context.Context, i *models.IdentityRecord) error {
	query, args, err := db.builder.Insert("identities").
		Columns("id", "first_name", "last_name", "email", "phone", "city", "country").
		Values(i.ID, i.FirstName, i.LastName, i.Email, i.Phone, i.City, i.Country).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insert identity: %v", ErrBuildQuery, err)
	}
	if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insert identity %s: %v", ErrExecQuery, i.ID, err)
	}
	return nil
}
