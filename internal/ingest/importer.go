// Package ingest is the only writer of Employee, Timesheet and Revenue rows.
// Each upload runs as exactly one transaction: row-level problems are
// collected and the batch continues, while any failure outside the per-row
// loop rolls the whole batch back. The staged file is removed in all paths.
package ingest

import (
	"log"
	"os"
	"strconv"
	"strings"

	"profitdash-backend/internal/apperr"
	"profitdash-backend/internal/models"

	"gorm.io/gorm"
)

// Options carries the request-scoped inputs of one import call.
type Options struct {
	Path          string // staged spreadsheet, removed when the import returns
	FileName      string
	FileSize      int64
	Month         string // YYYY-MM, timesheet and revenue uploads
	FinancialYear string // e.g. "2025-26", employee master uploads
	UserID        uint
	UserName      string
}

func removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] could not remove staged upload %s: %v", path, err)
	}
}

func openUploadLog(tx *gorm.DB, logRow *models.UploadLog) error {
	logRow.Status = models.UploadStatusProcessing
	if err := tx.Create(logRow).Error; err != nil {
		return apperr.Wrap(apperr.KindTransaction, "could not create upload log", err)
	}
	return nil
}

func finalizeUploadLog(tx *gorm.DB, logRow *models.UploadLog, res *resultSet) error {
	logRow.Status = res.status()
	logRow.TotalRows = res.Total
	logRow.SuccessRows = res.Success
	logRow.ErrorRows = len(res.Errors)
	logRow.ErrorDetails = res.errorDetailsJSON()
	if err := tx.Save(logRow).Error; err != nil {
		return apperr.Wrap(apperr.KindTransaction, "could not finalize upload log", err)
	}
	return nil
}

func summaryOf(logRow *models.UploadLog, res *resultSet) *Summary {
	errs := res.Errors
	if errs == nil {
		errs = []RowError{}
	}
	return &Summary{
		LogID:       logRow.ID,
		BatchID:     logRow.BatchID,
		Status:      logRow.Status,
		TotalRows:   res.Total,
		SuccessRows: res.Success,
		ErrorRows:   len(res.Errors),
		Errors:      errs,
	}
}

func parseAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseHours accepts an empty cell as zero hours; negatives are rejected.
func parseHours(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func parseBillableFlag(raw string) bool {
	switch strings.ToLower(raw) {
	case "no", "n", "false", "0":
		return false
	default:
		// empty defaults to billable
		return true
	}
}
