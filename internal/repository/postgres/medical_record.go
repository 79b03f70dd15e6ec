package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
)

type medicalRecordRepository struct {
	db *sqlx.DB
}

func NewMedicalRecordRepository(db *sqlx.DB) repository.MedicalRecordRepository {
	return &medicalRecordRepository{db: db}
}

// Create appends one record. The ledger has no update or delete path;
// nothing else in the schema touches this table after insert.
func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (record_id, episode_id, patient_id, diagnosis, prescription, notes, author_doctor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	record.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		record.RecordID,
		record.EpisodeID,
		record.PatientID,
		record.Diagnosis,
		record.Prescription,
		record.Notes,
		record.AuthorDoctorID,
		record.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) ListByEpisode(ctx context.Context, episodeID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE episode_id = $1 ORDER BY created_at DESC`
	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, episodeID); err != nil {
		return nil, fmt.Errorf("failed to list episode records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE patient_id = $1 ORDER BY created_at DESC`
	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient records: %w", err)
	}
	return records, nil
}
