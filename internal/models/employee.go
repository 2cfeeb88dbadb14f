package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee - one row per employee per financial year. The same employee code
// reappears across years with that year's CTC, so the unique key is
// (employee_code, financial_year). Soft-deleted so historical aggregations
// keep working after an employee leaves.
type Employee struct {
	ID            uint   `gorm:"primaryKey"`
	EmployeeCode  string `gorm:"size:50;not null;uniqueIndex:idx_employee_code_fy"`
	FinancialYear string `gorm:"size:10;not null;uniqueIndex:idx_employee_code_fy"` // e.g. "2025-26"
	Name          string `gorm:"size:150;not null"`
	Designation   string `gorm:"size:100"`
	DepartmentID  uint   `gorm:"index;not null"`
	Department    Department
	AnnualCTC     float64 `gorm:"not null"` // INR/year
	IsBillable    bool    `gorm:"default:true"`
	JoiningDate   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}
