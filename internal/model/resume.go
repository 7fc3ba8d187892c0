package model

import (
	"time"

	"github.com/google/uuid"
)

// Resume represents an uploaded résumé and its extracted plain text.
type Resume struct {
	ID            uuid.UUID `json:"id"`
	Filename      string    `json:"filename"`
	StoredPath    string    `json:"-"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
