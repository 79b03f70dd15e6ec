package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the front-desk profile carried by a patient account.
// PatientID equals the owning Account.ID. QRPayload is derived solely
// from the id; it never encodes clinical data.
type Patient struct {
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	HospitalID string    `db:"hospital_id" json:"hospital_id"`
	QRPayload  string    `db:"qr_payload" json:"qr_payload"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
