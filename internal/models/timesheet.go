package models

import "time"

// Timesheet - logged hours per (employee, project, month). The triple is
// unique; a re-upload for the same key overwrites the hours (last upload wins).
type Timesheet struct {
	ID               uint `gorm:"primaryKey"`
	EmployeeID       uint `gorm:"not null;uniqueIndex:idx_timesheet_emp_proj_month"`
	Employee         Employee
	ProjectID        uint `gorm:"not null;uniqueIndex:idx_timesheet_emp_proj_month"`
	Project          Project
	Month            string  `gorm:"size:7;not null;uniqueIndex:idx_timesheet_emp_proj_month"` // YYYY-MM
	BillableHours    float64 `gorm:"default:0"`
	NonBillableHours float64 `gorm:"default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
