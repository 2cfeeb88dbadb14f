package ingest

import (
	"encoding/json"

	"profitdash-backend/internal/models"
)

// RowError is one row-level failure, kept in upload order. Field carries the
// offending column when known; Data carries the raw value or payload summary
// when the problem is not tied to a single column.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Data    string `json:"data,omitempty"`
	Message string `json:"message"`
}

// resultSet accumulates per-row outcomes. Row errors are collected, never
// thrown, so a single bad row cannot abort the batch; the final status is
// folded from the counts.
type resultSet struct {
	Total   int
	Success int
	Errors  []RowError
}

func (r *resultSet) ok() {
	r.Success++
}

func (r *resultSet) fail(row int, field, data, message string) {
	r.Errors = append(r.Errors, RowError{Row: row, Field: field, Data: data, Message: message})
}

func (r *resultSet) status() models.UploadStatus {
	switch {
	case len(r.Errors) == 0:
		return models.UploadStatusCompleted
	case r.Success == 0:
		return models.UploadStatusFailed
	default:
		return models.UploadStatusPartial
	}
}

func (r *resultSet) errorDetailsJSON() string {
	if len(r.Errors) == 0 {
		return "[]"
	}
	b, err := json.Marshal(r.Errors)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Summary is what an import call hands back to its caller, mirroring the
// finalized UploadLog row.
type Summary struct {
	LogID       uint                `json:"id"`
	BatchID     string              `json:"batch_id"`
	Status      models.UploadStatus `json:"status"`
	TotalRows   int                 `json:"total_rows"`
	SuccessRows int                 `json:"success_rows"`
	ErrorRows   int                 `json:"error_rows"`
	Errors      []RowError          `json:"error_details"`
}
