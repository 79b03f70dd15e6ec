package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/qr"
	"github.com/careflowhq/careflow-api/internal/repository"
	"github.com/careflowhq/careflow-api/internal/session"
	pkgauth "github.com/careflowhq/careflow-api/pkg/auth"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
	"github.com/careflowhq/careflow-api/pkg/security"
)

type fakeAccountRepo struct {
	byID    map[uuid.UUID]*model.Account
	byEmail map[string]*model.Account

	patients map[uuid.UUID]*model.Patient
	doctors  map[uuid.UUID]*model.Doctor

	failGet error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:     make(map[uuid.UUID]*model.Account),
		byEmail:  make(map[string]*model.Account),
		patients: make(map[uuid.UUID]*model.Patient),
		doctors:  make(map[uuid.UUID]*model.Doctor),
	}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *model.Account, patient *model.Patient, doctor *model.Doctor) error {
	if _, exists := r.byEmail[account.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	r.byID[account.ID] = account
	r.byEmail[account.Email] = account
	if patient != nil {
		r.patients[patient.PatientID] = patient
	}
	if doctor != nil {
		r.doctors[doctor.DoctorID] = doctor
	}
	return nil
}

func (r *fakeAccountRepo) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	account, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return account, nil
}

func (r *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	account, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return account, nil
}

func (r *fakeAccountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	account, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

type fakeSessionStore struct {
	revoked     map[string]bool
	resetTokens map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		revoked:     make(map[string]bool),
		resetTokens: make(map[string]string),
	}
}

func (s *fakeSessionStore) RevokeToken(ctx context.Context, tokenID string, until time.Time) error {
	s.revoked[tokenID] = true
	return nil
}

func (s *fakeSessionStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}

func (s *fakeSessionStore) SetResetToken(ctx context.Context, token, accountID string, ttl time.Duration) error {
	s.resetTokens[token] = accountID
	return nil
}

func (s *fakeSessionStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	accountID, ok := s.resetTokens[token]
	if !ok {
		return "", session.ErrTokenNotFound
	}
	delete(s.resetTokens, token)
	return accountID, nil
}

type sentMail struct {
	to    string
	token string
}

type fakeEmailService struct {
	sent []sentMail
}

func (s *fakeEmailService) SendPasswordReset(to, resetToken string) error {
	s.sent = append(s.sent, sentMail{to: to, token: resetToken})
	return nil
}

type fixture struct {
	svc      *Service
	accounts *fakeAccountRepo
	sessions *fakeSessionStore
	mailer   *fakeEmailService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	sessions := newFakeSessionStore()
	mailer := &fakeEmailService{}
	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	svc := NewService(accounts, sessions, jwtSvc, mailer, security.NewBcryptHasher(bcrypt.MinCost))
	return &fixture{svc: svc, accounts: accounts, sessions: sessions, mailer: mailer}
}

func signup(t *testing.T, f *fixture, role, email string) *model.Account {
	t.Helper()
	account, err := f.svc.Signup(context.Background(), &model.SignupRequest{
		Name:     "Test User",
		Email:    email,
		Password: "hunter2x",
		Role:     role,
	})
	require.NoError(t, err)
	return account
}

func TestSignupPatientCreatesProfileWithQR(t *testing.T) {
	f := newFixture(t)

	account := signup(t, f, "patient", "pat@example.com")
	assert.Equal(t, model.RolePatient, account.Role)

	profile, ok := f.accounts.patients[account.ID]
	require.True(t, ok, "patient profile must be created alongside the account")
	assert.Equal(t, "pat@example.com", profile.Email)

	decoded, err := qr.Decode(profile.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), decoded)
}

func TestSignupDoctorCreatesProfile(t *testing.T) {
	f := newFixture(t)

	account := signup(t, f, "doctor", "doc@example.com")

	profile, ok := f.accounts.doctors[account.ID]
	require.True(t, ok)
	assert.True(t, profile.IsAvailable, "new doctors start available")
	assert.Empty(t, f.accounts.patients)
}

func TestSignupAdminHasNoProfile(t *testing.T) {
	f := newFixture(t)

	signup(t, f, "admin", "admin@example.com")
	assert.Empty(t, f.accounts.patients)
	assert.Empty(t, f.accounts.doctors)
}

func TestSignupUnknownRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Signup(context.Background(), &model.SignupRequest{
		Name:     "Test User",
		Email:    "x@example.com",
		Password: "hunter2x",
		Role:     "nurse",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ValidationFailed))
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "patient", "dup@example.com")

	_, err := f.svc.Signup(context.Background(), &model.SignupRequest{
		Name:     "Other User",
		Email:    "dup@example.com",
		Password: "hunter2x",
		Role:     "patient",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ValidationFailed))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "patient", "pat@example.com")

	tokens, err := f.svc.Login(context.Background(), "pat@example.com", "hunter2x")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Greater(t, tokens.ExpiresIn, int64(0))

	claims, err := f.svc.ValidateToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "patient", "pat@example.com")

	_, err := f.svc.Login(context.Background(), "pat@example.com", "wrong-pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Unauthenticated))
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	// Unknown email and wrong password are indistinguishable to the
	// caller.
	_, err := f.svc.Login(context.Background(), "nobody@example.com", "hunter2x")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Unauthenticated))
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "patient", "pat@example.com")

	tokens, err := f.svc.Login(context.Background(), "pat@example.com", "hunter2x")
	require.NoError(t, err)
	claims, err := f.svc.ValidateToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), claims))

	_, err = f.svc.ValidateToken(context.Background(), tokens.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Unauthenticated))
}

func TestRefreshToken(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "patient", "pat@example.com")

	tokens, err := f.svc.Login(context.Background(), "pat@example.com", "hunter2x")
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = f.svc.RefreshToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Unauthenticated))
}

func TestValidateTokenGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ValidateToken(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Unauthenticated))
}

func TestResolveRole(t *testing.T) {
	f := newFixture(t)
	account := signup(t, f, "doctor", "doc@example.com")

	role, err := f.svc.ResolveRole(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, role)
}

func TestResolveRoleUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ResolveRole(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.NotFound))
}

// A failed lookup must never read as "no role": the caller turns
// NotFound into 401/403 but BackendUnavailable into 503.
func TestResolveRoleLookupFailure(t *testing.T) {
	f := newFixture(t)
	account := signup(t, f, "admin", "admin@example.com")

	f.accounts.failGet = errors.New("connection refused")
	_, err := f.svc.ResolveRole(context.Background(), account.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.BackendUnavailable))
	assert.False(t, apperrors.IsKind(err, apperrors.NotFound))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "patient", "pat@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "pat@example.com"))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "pat@example.com", f.mailer.sent[0].to)

	token := f.mailer.sent[0].token
	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, token, "new-pass-123"))

	_, err := f.svc.Login(ctx, "pat@example.com", "hunter2x")
	require.Error(t, err, "old password must stop working")
	_, err = f.svc.Login(ctx, "pat@example.com", "new-pass-123")
	require.NoError(t, err)

	// The token is single use.
	err = f.svc.ConfirmPasswordReset(ctx, token, "another-pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ValidationFailed))
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	f := newFixture(t)

	// No error and no mail; the caller cannot probe for registered
	// addresses.
	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.mailer.sent)
}

func TestConfirmPasswordResetUnknownToken(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ConfirmPasswordReset(context.Background(), uuid.New().String(), "new-pass-123")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ValidationFailed))
}
