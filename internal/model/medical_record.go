package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is one immutable consult note appended to an episode's
// ledger. Corrections are made by appending a new record; no update or
// delete operation exists.
type MedicalRecord struct {
	RecordID       uuid.UUID `db:"record_id" json:"record_id"`
	EpisodeID      uuid.UUID `db:"episode_id" json:"episode_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	Diagnosis      string    `db:"diagnosis" json:"diagnosis"`
	Prescription   string    `db:"prescription" json:"prescription"`
	Notes          string    `db:"notes" json:"notes"`
	AuthorDoctorID uuid.UUID `db:"author_doctor_id" json:"author_doctor_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type CreateMedicalRecordRequest struct {
	Diagnosis    string `json:"diagnosis" binding:"required,notblank"`
	Prescription string `json:"prescription" binding:"required,notblank"`
	Notes        string `json:"notes"`
}
