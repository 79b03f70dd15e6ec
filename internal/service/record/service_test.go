package record

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

type fakeRecordRepo struct {
	records []*model.MedicalRecord
	clock   time.Time
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{clock: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (r *fakeRecordRepo) Create(ctx context.Context, rec *model.MedicalRecord) error {
	r.clock = r.clock.Add(time.Millisecond)
	rec.CreatedAt = r.clock
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *fakeRecordRepo) list(filter func(*model.MedicalRecord) bool) []*model.MedicalRecord {
	var out []*model.MedicalRecord
	for _, rec := range r.records {
		if filter(rec) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeRecordRepo) ListByEpisode(ctx context.Context, episodeID uuid.UUID) ([]*model.MedicalRecord, error) {
	return r.list(func(rec *model.MedicalRecord) bool { return rec.EpisodeID == episodeID }), nil
}

func (r *fakeRecordRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	return r.list(func(rec *model.MedicalRecord) bool { return rec.PatientID == patientID }), nil
}

// fakeEpisodeRepo only needs Get here; the ledger never mutates
// episodes.
type fakeEpisodeRepo struct {
	episodes map[uuid.UUID]*model.Episode
}

func (r *fakeEpisodeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Episode, error) {
	ep, ok := r.episodes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ep, nil
}

func (r *fakeEpisodeRepo) Create(ctx context.Context, episode *model.Episode) error { return nil }
func (r *fakeEpisodeRepo) Assign(ctx context.Context, episodeID, doctorID uuid.UUID, at time.Time) error {
	return nil
}
func (r *fakeEpisodeRepo) Complete(ctx context.Context, episodeID uuid.UUID, at time.Time) error {
	return nil
}
func (r *fakeEpisodeRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Episode, error) {
	return nil, nil
}
func (r *fakeEpisodeRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Episode, error) {
	return nil, nil
}
func (r *fakeEpisodeRepo) ListSince(ctx context.Context, since time.Time) ([]*model.Episode, error) {
	return nil, nil
}
func (r *fakeEpisodeRepo) ListByDoctorSince(ctx context.Context, doctorID uuid.UUID, since time.Time) ([]*model.Episode, error) {
	return nil, nil
}

type fixture struct {
	svc       *Service
	records   *fakeRecordRepo
	episodeID uuid.UUID
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	episodeID := uuid.New()
	patientID := uuid.New()
	doctorID := uuid.New()
	episodes := &fakeEpisodeRepo{episodes: map[uuid.UUID]*model.Episode{
		episodeID: {
			EpisodeID: episodeID,
			PatientID: patientID,
			Status:    model.EpisodeStatusInProgress,
		},
	}}
	records := newFakeRecordRepo()
	return &fixture{
		svc:       NewService(records, episodes),
		records:   records,
		episodeID: episodeID,
		patientID: patientID,
		doctorID:  doctorID,
	}
}

func TestAddRecord(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.AddRecord(context.Background(), f.episodeID, f.patientID, f.doctorID, "cold", "paracetamol", "")
	require.NoError(t, err)
	assert.Equal(t, "cold", rec.Diagnosis)
	assert.Equal(t, "paracetamol", rec.Prescription)
	assert.Empty(t, rec.Notes)
	assert.Equal(t, f.doctorID, rec.AuthorDoctorID)
	assert.False(t, rec.CreatedAt.IsZero())

	listed, err := f.svc.ListForEpisode(context.Background(), f.episodeID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rec.RecordID, listed[0].RecordID)
}

func TestAddRecordTrimsFields(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.AddRecord(context.Background(), f.episodeID, f.patientID, f.doctorID, "  flu  ", "\trest\n", "  follow up  ")
	require.NoError(t, err)
	assert.Equal(t, "flu", rec.Diagnosis)
	assert.Equal(t, "rest", rec.Prescription)
	assert.Equal(t, "follow up", rec.Notes)
}

func TestAddRecordRequiresDiagnosisAndPrescription(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name                    string
		diagnosis, prescription string
	}{
		{"empty diagnosis", "", "paracetamol"},
		{"blank diagnosis", "   ", "paracetamol"},
		{"empty prescription", "cold", ""},
		{"blank prescription", "cold", "\t\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddRecord(context.Background(), f.episodeID, f.patientID, f.doctorID, tc.diagnosis, tc.prescription, "")
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.ValidationFailed))
		})
	}
	assert.Empty(t, f.records.records)
}

func TestAddRecordUnknownEpisode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddRecord(context.Background(), uuid.New(), f.patientID, f.doctorID, "cold", "paracetamol", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.NotFound))
}

func TestAddRecordPatientMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddRecord(context.Background(), f.episodeID, uuid.New(), f.doctorID, "cold", "paracetamol", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ValidationFailed))
	assert.Empty(t, f.records.records)
}

func TestListForEpisodeNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.AddRecord(ctx, f.episodeID, f.patientID, f.doctorID, "visit", "rest", "")
		require.NoError(t, err)
	}

	listed, err := f.svc.ListForEpisode(ctx, f.episodeID)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].CreatedAt.After(listed[i-1].CreatedAt))
	}
}

func TestListForPatientSpansEpisodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := uuid.New()
	f.svc.episodes.(*fakeEpisodeRepo).episodes[other] = &model.Episode{
		EpisodeID: other,
		PatientID: f.patientID,
		Status:    model.EpisodeStatusInProgress,
	}

	_, err := f.svc.AddRecord(ctx, f.episodeID, f.patientID, f.doctorID, "cold", "paracetamol", "")
	require.NoError(t, err)
	_, err = f.svc.AddRecord(ctx, other, f.patientID, f.doctorID, "followup", "rest", "")
	require.NoError(t, err)

	listed, err := f.svc.ListForPatient(ctx, f.patientID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
