package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/model"
)

// Storage-level sentinels. Services translate these into boundary error
// kinds; repositories never import pkg/errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrEpisodeCompleted = errors.New("episode already completed")
	ErrEpisodePending   = errors.New("episode was never assigned")
	ErrDuplicateEmail   = errors.New("email already registered")
)

type AccountRepository interface {
	// Create writes the account and, when non-nil, its role-specific
	// profile in a single transaction.
	Create(ctx context.Context, account *model.Account, patient *model.Patient, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
	ListAvailable(ctx context.Context) ([]*model.Doctor, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type EpisodeRepository interface {
	Create(ctx context.Context, episode *model.Episode) error
	Get(ctx context.Context, id uuid.UUID) (*model.Episode, error)

	// Assign is a conditional blind write: it sets the doctor and
	// advances status to in_progress unless the episode is already
	// completed (ErrEpisodeCompleted) or missing (ErrNotFound).
	Assign(ctx context.Context, episodeID, doctorID uuid.UUID, at time.Time) error

	// Complete is a conditional blind write: it stamps completed_at and
	// advances status to completed. Completing an already-completed
	// episode succeeds and restamps; completing a pending one fails
	// with ErrEpisodePending.
	Complete(ctx context.Context, episodeID uuid.UUID, at time.Time) error

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Episode, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Episode, error)

	// ListSince and ListByDoctorSince back the "today" views with an
	// explicit caller-supplied day boundary.
	ListSince(ctx context.Context, since time.Time) ([]*model.Episode, error)
	ListByDoctorSince(ctx context.Context, doctorID uuid.UUID, since time.Time) ([]*model.Episode, error)
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, record *model.MedicalRecord) error
	ListByEpisode(ctx context.Context, episodeID uuid.UUID) ([]*model.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
}
