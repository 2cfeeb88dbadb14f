package models

import "time"

type UploadType string

const (
	UploadTypeEmployeeMaster UploadType = "employee_master"
	UploadTypeTimesheet      UploadType = "timesheet"
	UploadTypeRevenue        UploadType = "revenue"
)

type UploadStatus string

const (
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed" // error_rows == 0
	UploadStatusPartial    UploadStatus = "partial"   // 0 < error_rows < total_rows
	UploadStatusFailed     UploadStatus = "failed"    // error_rows == total_rows
)

// UploadLog - one row per ingestion call, immutable once finalized.
// ErrorDetails holds the ordered row-level error list as JSON.
type UploadLog struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	BatchID       string       `gorm:"size:36;index;not null" json:"batch_id"`
	UploadType    UploadType   `gorm:"size:30;index;not null" json:"upload_type"`
	FileName      string       `gorm:"size:255" json:"file_name"`
	FileSize      int64        `json:"file_size"`
	Month         string       `gorm:"size:7" json:"month,omitempty"`           // timesheet/revenue uploads
	FinancialYear string       `gorm:"size:10" json:"financial_year,omitempty"` // employee master uploads
	Status        UploadStatus `gorm:"size:20;index;not null" json:"status"`
	TotalRows     int          `json:"total_rows"`
	SuccessRows   int          `json:"success_rows"`
	ErrorRows     int          `json:"error_rows"`
	ErrorDetails  string       `gorm:"type:jsonb" json:"-"`
	UploadedBy    string       `gorm:"size:150" json:"uploaded_by"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"-"`
}
