package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/careflowhq/careflow-api/internal/email"
	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/qr"
	"github.com/careflowhq/careflow-api/internal/repository"
	"github.com/careflowhq/careflow-api/internal/session"
	pkgauth "github.com/careflowhq/careflow-api/pkg/auth"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
	"github.com/careflowhq/careflow-api/pkg/security"
)

const resetTokenExpiry = 1 * time.Hour

// SessionStore is the request-scoped token state backing logout and
// password reset.
type SessionStore interface {
	RevokeToken(ctx context.Context, tokenID string, until time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	SetResetToken(ctx context.Context, token, accountID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

type Service struct {
	accounts repository.AccountRepository
	sessions SessionStore
	jwtSvc   pkgauth.JWTService
	emailSvc email.Service
	hasher   security.PasswordHasher
}

func NewService(accounts repository.AccountRepository, sessions SessionStore, jwtSvc pkgauth.JWTService, emailSvc email.Service, hasher security.PasswordHasher) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		jwtSvc:   jwtSvc,
		emailSvc: emailSvc,
		hasher:   hasher,
	}
}

// Signup creates the account and its role-specific profile in one
// transaction. A patient signup derives the QR payload from the new
// account id; the payload identifies the patient and nothing else.
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.Account, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.NewValidation("password does not meet requirements")
	}

	account := &model.Account{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		DisplayName:  req.Name,
	}
	if req.Phone != "" {
		account.Phone = &req.Phone
	}
	if req.HospitalID != "" {
		account.HospitalID = &req.HospitalID
	}

	var patient *model.Patient
	var doctor *model.Doctor
	switch role {
	case model.RolePatient:
		patient = &model.Patient{
			PatientID:  account.ID,
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			HospitalID: req.HospitalID,
			QRPayload:  qr.Encode(account.ID.String()),
		}
	case model.RoleDoctor:
		doctor = &model.Doctor{
			DoctorID:       account.ID,
			Name:           req.Name,
			Email:          req.Email,
			Phone:          req.Phone,
			Specialization: req.Specialization,
			IsAvailable:    true,
		}
	}

	if err := s.accounts.Create(ctx, account, patient, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewValidation("email already registered")
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}

	return account, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("invalid credentials", nil)
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}

	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthenticated("invalid credentials", nil)
	}

	return s.generateTokens(account)
}

func (s *Service) Logout(ctx context.Context, claims *model.TokenClaims) error {
	if err := s.sessions.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return apperrors.NewBackendUnavailable(err)
	}
	return nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid refresh token", err)
	}

	account, err := s.accounts.Get(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("account no longer exists", nil)
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}

	return s.generateTokens(account)
}

// ValidateToken checks signature, expiry and the revocation list.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid token", err)
	}

	revoked, err := s.sessions.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	if revoked {
		return nil, apperrors.NewUnauthenticated("token revoked", nil)
	}

	return claims, nil
}

// ResolveRole maps a principal to its role with a fresh store lookup.
// A missing account and a failed lookup are different outcomes: the
// first is NotFound, the second BackendUnavailable. Callers must not
// treat a lookup failure as "no role".
func (s *Service) ResolveRole(ctx context.Context, accountID uuid.UUID) (model.Role, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewNotFound("account", err)
		}
		return "", apperrors.NewBackendUnavailable(err)
	}
	return account.Role, nil
}

// RequestPasswordReset issues a one-time token and mails it. An unknown
// email is not an error to the caller; reporting it would leak which
// addresses have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug().Str("email", emailAddr).Msg("password reset requested for unknown email")
			return nil
		}
		return apperrors.NewBackendUnavailable(err)
	}

	token := uuid.New().String()
	if err := s.sessions.SetResetToken(ctx, token, account.ID.String(), resetTokenExpiry); err != nil {
		return apperrors.NewBackendUnavailable(err)
	}

	if err := s.emailSvc.SendPasswordReset(account.Email, token); err != nil {
		return apperrors.NewBackendUnavailable(fmt.Errorf("failed to send reset email: %w", err))
	}
	return nil
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	accountID, err := s.sessions.ConsumeResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrTokenNotFound) {
			return apperrors.NewValidation("invalid or expired reset token")
		}
		return apperrors.NewBackendUnavailable(err)
	}

	id, err := uuid.Parse(accountID)
	if err != nil {
		return apperrors.NewBackendUnavailable(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.NewValidation("password does not meet requirements")
	}

	if err := s.accounts.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("account", err)
		}
		return apperrors.NewBackendUnavailable(err)
	}
	return nil
}

func (s *Service) generateTokens(account *model.Account) (*model.TokenResponse, error) {
	access, claims, err := s.jwtSvc.GenerateAccessToken(account)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(account)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(claims.ExpiresAt).Seconds()),
	}, nil
}
