package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
)

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE doctor_id = $1`
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `SELECT * FROM doctors ORDER BY name`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) ListAvailable(ctx context.Context) ([]*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE is_available = true ORDER BY name`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list available doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	query := `UPDATE doctors SET is_available = $1 WHERE doctor_id = $2`
	res, err := r.db.ExecContext(ctx, query, available, id)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
