package model

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is the clinical profile carried by a doctor account.
// DoctorID equals the owning Account.ID.
type Doctor struct {
	DoctorID       uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	Specialization string    `db:"specialization" json:"specialization"`
	IsAvailable    bool      `db:"is_available" json:"is_available"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}
