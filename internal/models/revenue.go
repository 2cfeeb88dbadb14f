package models

import "time"

// Revenue - invoiced amount per (project, month). Re-uploading for an existing
// key ADDS to the stored amount (cumulative invoices), it never replaces it.
// ProjectType and Vertical are snapshots taken at insert time and are not kept
// in sync with later project edits.
type Revenue struct {
	ID            uint `gorm:"primaryKey"`
	ProjectID     uint `gorm:"not null;uniqueIndex:idx_revenue_proj_month"`
	Project       Project
	Month         string      `gorm:"size:7;not null;uniqueIndex:idx_revenue_proj_month"` // YYYY-MM
	InvoiceAmount float64     `gorm:"not null"`
	ProjectType   ProjectType `gorm:"size:20"`
	Vertical      string      `gorm:"size:100"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
