package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
)

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account, patient *model.Patient, doctor *model.Doctor) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	account.CreatedAt = time.Now()

	query := `
		INSERT INTO accounts (id, email, password_hash, role, display_name, phone, hospital_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.DisplayName,
		account.Phone,
		account.HospitalID,
		account.CreatedAt,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	if patient != nil {
		patient.CreatedAt = account.CreatedAt
		query := `
			INSERT INTO patients (patient_id, name, email, phone, hospital_id, qr_payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, query,
			patient.PatientID,
			patient.Name,
			patient.Email,
			patient.Phone,
			patient.HospitalID,
			patient.QRPayload,
			patient.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create patient profile: %w", err)
		}
	}

	if doctor != nil {
		doctor.CreatedAt = account.CreatedAt
		query := `
			INSERT INTO doctors (doctor_id, name, email, phone, specialization, is_available, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, query,
			doctor.DoctorID,
			doctor.Name,
			doctor.Email,
			doctor.Phone,
			doctor.Specialization,
			doctor.IsAvailable,
			doctor.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", err)
		}
	}

	return tx.Commit()
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT * FROM accounts WHERE id = $1`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT * FROM accounts WHERE email = $1`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
