package model

import (
	"time"

	"github.com/google/uuid"
)

type EpisodeStatus string

const (
	EpisodeStatusPending    EpisodeStatus = "pending"
	EpisodeStatusInProgress EpisodeStatus = "in_progress"
	EpisodeStatusCompleted  EpisodeStatus = "completed"
)

type EpisodeType string

const (
	EpisodeTypeOPD       EpisodeType = "OPD"
	EpisodeTypeEmergency EpisodeType = "Emergency"
)

// Episode is one discrete care encounter, tracked from creation to
// completion. Status only ever moves forward:
//
//	pending --assign--> in_progress --complete--> completed
//
// AssignedDoctorID is set if and only if status is in_progress or
// completed; CompletedAt is set if and only if status is completed.
// Episodes are never deleted.
type Episode struct {
	EpisodeID        uuid.UUID     `db:"episode_id" json:"episode_id"`
	PatientID        uuid.UUID     `db:"patient_id" json:"patient_id"`
	Type             EpisodeType   `db:"episode_type" json:"episode_type"`
	AssignedDoctorID *uuid.UUID    `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	Status           EpisodeStatus `db:"status" json:"status"`
	AdminNotes       string        `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
	CompletedAt      *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

type CreateEpisodeRequest struct {
	QRPayload  string `json:"qr_payload" binding:"required"`
	Type       string `json:"episode_type" binding:"required,oneof=OPD Emergency"`
	AdminNotes string `json:"admin_notes"`
}

type AssignDoctorRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
}
