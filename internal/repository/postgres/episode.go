package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/repository"
)

type episodeRepository struct {
	db *sqlx.DB
}

func NewEpisodeRepository(db *sqlx.DB) repository.EpisodeRepository {
	return &episodeRepository{db: db}
}

func (r *episodeRepository) Create(ctx context.Context, episode *model.Episode) error {
	query := `
		INSERT INTO episodes (episode_id, patient_id, episode_type, status, admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	now := time.Now()
	episode.CreatedAt = now
	episode.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, query,
		episode.EpisodeID,
		episode.PatientID,
		episode.Type,
		episode.Status,
		episode.AdminNotes,
		episode.CreatedAt,
		episode.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create episode: %w", err)
	}
	return nil
}

func (r *episodeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Episode, error) {
	query := `SELECT * FROM episodes WHERE episode_id = $1`
	var episode model.Episode
	if err := r.db.GetContext(ctx, &episode, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	return &episode, nil
}

// Assign is a blind field set with a status guard. It never reads before
// writing, so concurrent assigns race safely to last-writer-wins; the
// guard alone keeps completed episodes untouchable.
func (r *episodeRepository) Assign(ctx context.Context, episodeID, doctorID uuid.UUID, at time.Time) error {
	query := `
		UPDATE episodes
		SET assigned_doctor_id = $1, status = $2, updated_at = $3
		WHERE episode_id = $4 AND status <> $5
	`
	res, err := r.db.ExecContext(ctx, query, doctorID, model.EpisodeStatusInProgress, at, episodeID, model.EpisodeStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to assign doctor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to assign doctor: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, episodeID); err != nil {
			return err
		}
		return repository.ErrEpisodeCompleted
	}
	return nil
}

// Complete restamps completed_at when called on an already-completed
// episode; calling it on a pending one trips the guard.
func (r *episodeRepository) Complete(ctx context.Context, episodeID uuid.UUID, at time.Time) error {
	query := `
		UPDATE episodes
		SET status = $1, completed_at = $2, updated_at = $2
		WHERE episode_id = $3 AND status IN ($4, $5)
	`
	res, err := r.db.ExecContext(ctx, query,
		model.EpisodeStatusCompleted, at, episodeID,
		model.EpisodeStatusInProgress, model.EpisodeStatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("failed to complete episode: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete episode: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, episodeID); err != nil {
			return err
		}
		return repository.ErrEpisodePending
	}
	return nil
}

func (r *episodeRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Episode, error) {
	query := `SELECT * FROM episodes WHERE patient_id = $1 ORDER BY created_at DESC`
	var episodes []*model.Episode
	if err := r.db.SelectContext(ctx, &episodes, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient episodes: %w", err)
	}
	return episodes, nil
}

func (r *episodeRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Episode, error) {
	query := `SELECT * FROM episodes WHERE assigned_doctor_id = $1 ORDER BY created_at DESC`
	var episodes []*model.Episode
	if err := r.db.SelectContext(ctx, &episodes, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor episodes: %w", err)
	}
	return episodes, nil
}

func (r *episodeRepository) ListSince(ctx context.Context, since time.Time) ([]*model.Episode, error) {
	query := `SELECT * FROM episodes WHERE created_at >= $1 ORDER BY created_at DESC`
	var episodes []*model.Episode
	if err := r.db.SelectContext(ctx, &episodes, query, since); err != nil {
		return nil, fmt.Errorf("failed to list episodes since %s: %w", since, err)
	}
	return episodes, nil
}

func (r *episodeRepository) ListByDoctorSince(ctx context.Context, doctorID uuid.UUID, since time.Time) ([]*model.Episode, error) {
	query := `
		SELECT * FROM episodes
		WHERE assigned_doctor_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`
	var episodes []*model.Episode
	if err := r.db.SelectContext(ctx, &episodes, query, doctorID, since); err != nil {
		return nil, fmt.Errorf("failed to list doctor episodes since %s: %w", since, err)
	}
	return episodes, nil
}
