package model

import "time"

// UploadKind is the kind of file an operator uploaded.
type UploadKind string

const (
	UploadPDF UploadKind = "pdf"
	UploadZIP UploadKind = "zip"
)

// Batch is the audit entry for one processed upload.
// It carries counts only; extracted records are never persisted.
type Batch struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	Kind        UploadKind `json:"kind"`
	StoragePath string     `json:"storage_path,omitempty"`
	Documents   int        `json:"documents"`
	Failed      int        `json:"failed"`
	CreatedAt   time.Time  `json:"created_at"`
}
