package model

// Status describes how far a document got through the pipeline.
type Status string

const (
	StatusOK         Status = "ok"
	StatusUnreadable Status = "unreadable"
	StatusOCRFailed  Status = "ocr_failed"
)

// Record holds the fields extracted from one PDF ("acta").
// Every field is always present; an empty string means the value was not found
// or could not be computed. Status tells those two cases apart.
type Record struct {
	ID              string `json:"id"`
	Institution     string `json:"institution"`
	ResponsibleName string `json:"responsible_name"`
	DNI             string `json:"dni"`
	SourceFilename  string `json:"source_filename"`
	Status          Status `json:"status"`
	Reason          string `json:"reason"`
}

// Failed reports whether the record's text could not be obtained at all.
func (r Record) Failed() bool {
	return r.Status == StatusUnreadable || r.Status == StatusOCRFailed
}

// Collection is the ordered, append-only list of records accumulated for a session.
type Collection []Record

// Append returns a new collection with recs added after the existing records.
// The receiver is never modified.
func (c Collection) Append(recs ...Record) Collection {
	out := make(Collection, 0, len(c)+len(recs))
	out = append(out, c...)
	return append(out, recs...)
}

// FailedCount returns the number of records whose text extraction failed.
func (c Collection) FailedCount() int {
	n := 0
	for _, r := range c {
		if r.Failed() {
			n++
		}
	}
	return n
}
