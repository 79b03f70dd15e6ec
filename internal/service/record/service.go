package record

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

// Service is the append-only ledger of consult notes. Records are never
// updated or deleted; a correction is a new record.
type Service struct {
	records  repository.MedicalRecordRepository
	episodes repository.EpisodeRepository
}

func NewService(records repository.MedicalRecordRepository, episodes repository.EpisodeRepository) *Service {
	return &Service{
		records:  records,
		episodes: episodes,
	}
}

// AddRecord validates at this boundary, not only in the UI: diagnosis
// and prescription must survive trimming, and the record's patient must
// be the episode's patient.
func (s *Service) AddRecord(ctx context.Context, episodeID, patientID, authorDoctorID uuid.UUID, diagnosis, prescription, notes string) (*model.MedicalRecord, error) {
	diagnosis = strings.TrimSpace(diagnosis)
	prescription = strings.TrimSpace(prescription)
	if diagnosis == "" {
		return nil, apperrors.NewValidation("diagnosis is required")
	}
	if prescription == "" {
		return nil, apperrors.NewValidation("prescription is required")
	}

	episode, err := s.episodes.Get(ctx, episodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("episode", err)
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}
	if episode.PatientID != patientID {
		return nil, apperrors.NewValidation("record patient does not match episode patient")
	}

	rec := &model.MedicalRecord{
		RecordID:       uuid.New(),
		EpisodeID:      episodeID,
		PatientID:      patientID,
		Diagnosis:      diagnosis,
		Prescription:   prescription,
		Notes:          strings.TrimSpace(notes),
		AuthorDoctorID: authorDoctorID,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return rec, nil
}

// ListForEpisode returns the episode's ledger, newest first.
func (s *Service) ListForEpisode(ctx context.Context, episodeID uuid.UUID) ([]*model.MedicalRecord, error) {
	records, err := s.records.ListByEpisode(ctx, episodeID)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return records, nil
}

// ListForPatient returns records across all of the patient's episodes,
// newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return records, nil
}
