package ingest

import (
	"fmt"
	"strings"
	"time"

	"profitdash-backend/internal/apperr"
	"profitdash-backend/internal/audit"
	"profitdash-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expected employee master columns.
const (
	colEmployeeCode = "Employee Code"
	colEmployeeName = "Name"
	colDepartment   = "Department"
	colDesignation  = "Designation"
	colAnnualCTC    = "Annual CTC"
	colBillable     = "Billable"
	colJoiningDate  = "Joining Date"
)

// ImportEmployeeMaster reconciles an employee master sheet for one financial
// year. Merge policy: key (employee_code, financial_year); existing rows get
// all mutable fields overwritten, absent rows are created.
func ImportEmployeeMaster(db *gorm.DB, opts Options) (*Summary, error) {
	defer removeUpload(opts.Path)

	if opts.FinancialYear == "" {
		return nil, apperr.New(apperr.KindValidation, "financial_year is required")
	}

	var summary *Summary
	err := db.Transaction(func(tx *gorm.DB) error {
		logRow := models.UploadLog{
			BatchID:       uuid.NewString(),
			UploadType:    models.UploadTypeEmployeeMaster,
			FileName:      opts.FileName,
			FileSize:      opts.FileSize,
			FinancialYear: opts.FinancialYear,
			UploadedBy:    opts.UserName,
		}
		if err := openUploadLog(tx, &logRow); err != nil {
			return err
		}

		rows, err := ReadSheet(opts.Path)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "unreadable spreadsheet", err)
		}

		// lookup maps, loaded once per batch
		var existing []models.Employee
		if err := tx.Where("financial_year = ?", opts.FinancialYear).Find(&existing).Error; err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not load employees", err)
		}
		empByCode := make(map[string]uint, len(existing))
		for _, e := range existing {
			empByCode[strings.ToUpper(e.EmployeeCode)] = e.ID
		}

		var departments []models.Department
		if err := tx.Find(&departments).Error; err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not load departments", err)
		}
		deptByName := make(map[string]uint, len(departments))
		for _, d := range departments {
			deptByName[strings.ToLower(d.Name)] = d.ID
		}

		res := resultSet{Total: len(rows)}
		for _, row := range rows {
			code := strings.ToUpper(row.Field(colEmployeeCode))
			if code == "" {
				res.fail(row.Number, colEmployeeCode, "", "employee code is required")
				continue
			}
			name := row.Field(colEmployeeName)
			if name == "" {
				res.fail(row.Number, colEmployeeName, "", "name is required")
				continue
			}
			deptName := row.Field(colDepartment)
			if deptName == "" {
				res.fail(row.Number, colDepartment, "", "department is required")
				continue
			}
			ctcRaw := row.Field(colAnnualCTC)
			if ctcRaw == "" {
				res.fail(row.Number, colAnnualCTC, "", "annual CTC is required")
				continue
			}
			ctc, ok := parseAmount(ctcRaw)
			if !ok || ctc < 0 {
				res.fail(row.Number, colAnnualCTC, ctcRaw, "annual CTC must be a non-negative number")
				continue
			}

			var joining *time.Time
			if raw := row.Field(colJoiningDate); raw != "" {
				d, err := time.Parse("2006-01-02", raw)
				if err != nil {
					res.fail(row.Number, colJoiningDate, raw, "joining date must be YYYY-MM-DD")
					continue
				}
				joining = &d
			}

			// departments are defined by the master sheet, unseen names are created
			deptID, ok := deptByName[strings.ToLower(deptName)]
			if !ok {
				dept := models.Department{Name: deptName}
				if err := tx.Create(&dept).Error; err != nil {
					return apperr.Wrap(apperr.KindTransaction, "could not create department", err)
				}
				deptID = dept.ID
				deptByName[strings.ToLower(deptName)] = deptID
			}

			values := map[string]any{
				"name":          name,
				"designation":   row.Field(colDesignation),
				"department_id": deptID,
				"annual_ctc":    ctc,
				"is_billable":   parseBillableFlag(row.Field(colBillable)),
				"joining_date":  joining,
			}

			if id, found := empByCode[code]; found {
				if err := tx.Model(&models.Employee{}).Where("id = ?", id).Updates(values).Error; err != nil {
					return apperr.Wrap(apperr.KindTransaction, "could not update employee", err)
				}
			} else {
				emp := models.Employee{
					EmployeeCode:  code,
					FinancialYear: opts.FinancialYear,
					Name:          name,
					Designation:   row.Field(colDesignation),
					DepartmentID:  deptID,
					AnnualCTC:     ctc,
					IsBillable:    parseBillableFlag(row.Field(colBillable)),
					JoiningDate:   joining,
				}
				if err := tx.Create(&emp).Error; err != nil {
					return apperr.Wrap(apperr.KindTransaction, "could not create employee", err)
				}
				empByCode[code] = emp.ID
			}
			res.ok()
		}

		if err := finalizeUploadLog(tx, &logRow, &res); err != nil {
			return err
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			UserID:      opts.UserID,
			UserName:    opts.UserName,
			EntityType:  "upload",
			EntityID:    logRow.ID,
			Action:      models.AuditActionImport,
			Description: fmt.Sprintf("employee master import %s: %d/%d rows ok", opts.FinancialYear, res.Success, res.Total),
			After:       logRow,
		}); err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not write audit entry", err)
		}

		summary = summaryOf(&logRow, &res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
