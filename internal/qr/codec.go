// Package qr encodes and decodes the payload carried by a patient's QR
// code. The payload identifies the patient and nothing else; clinical
// data never goes through it.
package qr

import (
	"encoding/json"
	"strings"

	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

type payload struct {
	PatientID string `json:"patient_id"`
}

// Encode produces the scannable payload for a patient id.
func Encode(patientID string) string {
	b, _ := json.Marshal(payload{PatientID: patientID})
	return string(b)
}

// Decode extracts a patient id from scanned text. It is a syntactic
// parse only, never a validity guarantee: when the text is not the
// structured payload, any non-empty string passes through as a bare id
// (older badges carried the raw id). The existence check against the
// patient store is the authoritative gate for invalid scans.
func Decode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.NewValidation("empty QR payload")
	}

	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		var p payload
		if err := json.Unmarshal([]byte(trimmed), &p); err != nil || p.PatientID == "" {
			return "", apperrors.NewValidation("QR payload has no patient id")
		}
		return p.PatientID, nil
	}

	// Backward-compatibility fallback: treat the raw scan as a bare id.
	return trimmed, nil
}
