package episode

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/qr"
	"github.com/careflowhq/careflow-api/internal/repository"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

// Service drives the episode lifecycle:
//
//	pending --AssignDoctor--> in_progress --Complete--> completed
//
// Every mutation is an unconditional field set guarded by a status
// precondition at the store, never a read-modify-write.
type Service struct {
	episodes repository.EpisodeRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
}

func NewService(episodes repository.EpisodeRepository, patients repository.PatientRepository, doctors repository.DoctorRepository) *Service {
	return &Service{
		episodes: episodes,
		patients: patients,
		doctors:  doctors,
	}
}

// CreateEpisode opens a new pending, unassigned episode. The patient
// must exist; the check runs before anything is written, so a garbage
// scan never leaves a dangling episode behind.
func (s *Service) CreateEpisode(ctx context.Context, patientID uuid.UUID, episodeType model.EpisodeType, adminNotes string) (*model.Episode, error) {
	if episodeType != model.EpisodeTypeOPD && episodeType != model.EpisodeTypeEmergency {
		return nil, apperrors.NewValidation("unknown episode type")
	}

	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}

	episode := &model.Episode{
		EpisodeID:  uuid.New(),
		PatientID:  patientID,
		Type:       episodeType,
		Status:     model.EpisodeStatusPending,
		AdminNotes: adminNotes,
	}
	if err := s.episodes.Create(ctx, episode); err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return episode, nil
}

// CreateEpisodeFromScan is the front-desk entry point: it runs the
// scanned payload through the QR codec and opens an episode for the
// decoded patient. The codec is a syntactic parse only; the patient
// existence check inside CreateEpisode is the gate that rejects
// invalid scans.
func (s *Service) CreateEpisodeFromScan(ctx context.Context, scanned string, episodeType model.EpisodeType, adminNotes string) (*model.Episode, error) {
	decoded, err := qr.Decode(scanned)
	if err != nil {
		return nil, err
	}

	patientID, err := uuid.Parse(decoded)
	if err != nil {
		// Decoded text that is not even an id cannot match a patient.
		return nil, apperrors.NewNotFound("patient", err)
	}

	return s.CreateEpisode(ctx, patientID, episodeType, adminNotes)
}

// AssignDoctor sets the doctor and advances a pending episode to
// in_progress. Re-assigning an in_progress episode swaps the doctor;
// the last writer wins. A completed episode is closed to reassignment.
func (s *Service) AssignDoctor(ctx context.Context, episodeID, doctorID uuid.UUID) error {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("doctor", err)
		}
		return apperrors.NewBackendUnavailable(err)
	}

	if err := s.episodes.Assign(ctx, episodeID, doctorID, time.Now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NewNotFound("episode", err)
		case errors.Is(err, repository.ErrEpisodeCompleted):
			return apperrors.NewValidation("episode is already completed")
		default:
			return apperrors.NewBackendUnavailable(err)
		}
	}
	return nil
}

// CompleteEpisode closes an in_progress episode. Completing an already
// completed episode is idempotent: it succeeds and restamps the
// timestamps. Completing a pending episode is rejected: an episode
// that never saw a doctor has nothing to complete.
func (s *Service) CompleteEpisode(ctx context.Context, episodeID uuid.UUID) error {
	if err := s.episodes.Complete(ctx, episodeID, time.Now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NewNotFound("episode", err)
		case errors.Is(err, repository.ErrEpisodePending):
			return apperrors.NewValidation("episode was never assigned to a doctor")
		default:
			return apperrors.NewBackendUnavailable(err)
		}
	}
	return nil
}

func (s *Service) GetEpisode(ctx context.Context, episodeID uuid.UUID) (*model.Episode, error) {
	episode, err := s.episodes.Get(ctx, episodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("episode", err)
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return episode, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Episode, error) {
	episodes, err := s.episodes.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return episodes, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Episode, error) {
	episodes, err := s.episodes.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return episodes, nil
}

// ListToday returns episodes created at or after the given day
// boundary. The boundary is supplied by the caller; the service never
// consults the local wall clock, so two callers agreeing on a boundary
// agree on the result.
func (s *Service) ListToday(ctx context.Context, dayStart time.Time) ([]*model.Episode, error) {
	episodes, err := s.episodes.ListSince(ctx, dayStart)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return episodes, nil
}

func (s *Service) ListTodayForDoctor(ctx context.Context, doctorID uuid.UUID, dayStart time.Time) ([]*model.Episode, error) {
	episodes, err := s.episodes.ListByDoctorSince(ctx, doctorID, dayStart)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return episodes, nil
}

// DayStart truncates t to midnight in t's own location.
func DayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
