package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

type Service struct {
	patients repository.PatientRepository
}

func NewService(patients repository.PatientRepository) *Service {
	return &Service{patients: patients}
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return patients, nil
}
