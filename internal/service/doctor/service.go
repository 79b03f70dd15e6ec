package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

type Service struct {
	doctors repository.DoctorRepository
}

func NewService(doctors repository.DoctorRepository) *Service {
	return &Service{doctors: doctors}
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return doctors, nil
}

func (s *Service) ListAvailableDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.ListAvailable(ctx)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return doctors, nil
}

func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if err := s.doctors.SetAvailability(ctx, id, available); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("doctor", err)
		}
		return apperrors.NewBackendUnavailable(err)
	}
	return nil
}
