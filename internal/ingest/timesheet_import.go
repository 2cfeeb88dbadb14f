package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"profitdash-backend/internal/apperr"
	"profitdash-backend/internal/audit"
	"profitdash-backend/internal/models"
	"profitdash-backend/internal/sysconfig"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	colProjectCode      = "Project Code"
	colBillableHours    = "Billable Hours"
	colNonBillableHours = "Non Billable Hours"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type timesheetKey struct {
	EmployeeID uint
	ProjectID  uint
}

// ImportTimesheets reconciles one month of logged hours. Merge policy: key
// (employee, project, month); an existing row gets its hours overwritten
// (last upload wins), never summed.
func ImportTimesheets(db *gorm.DB, opts Options) (*Summary, error) {
	defer removeUpload(opts.Path)

	if !monthPattern.MatchString(opts.Month) {
		return nil, apperr.New(apperr.KindValidation, "month must be YYYY-MM")
	}

	var summary *Summary
	err := db.Transaction(func(tx *gorm.DB) error {
		logRow := models.UploadLog{
			BatchID:    uuid.NewString(),
			UploadType: models.UploadTypeTimesheet,
			FileName:   opts.FileName,
			FileSize:   opts.FileSize,
			Month:      opts.Month,
			UploadedBy: opts.UserName,
		}
		if err := openUploadLog(tx, &logRow); err != nil {
			return err
		}

		rows, err := ReadSheet(opts.Path)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "unreadable spreadsheet", err)
		}

		// employee codes resolve within the financial year the month falls in
		cfg := sysconfig.Resolve(tx)
		financialYear := cfg.FinancialYearOf(opts.Month)

		var employees []models.Employee
		if err := tx.Where("financial_year = ?", financialYear).Find(&employees).Error; err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not load employees", err)
		}
		empByCode := make(map[string]uint, len(employees))
		for _, e := range employees {
			empByCode[strings.ToUpper(e.EmployeeCode)] = e.ID
		}

		var projects []models.Project
		if err := tx.Find(&projects).Error; err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not load projects", err)
		}
		projByCode := make(map[string]uint, len(projects))
		for _, p := range projects {
			projByCode[strings.ToUpper(p.ProjectCode)] = p.ID
		}

		var existing []models.Timesheet
		if err := tx.Where("month = ?", opts.Month).Find(&existing).Error; err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not load timesheets", err)
		}
		sheetByKey := make(map[timesheetKey]uint, len(existing))
		for _, ts := range existing {
			sheetByKey[timesheetKey{ts.EmployeeID, ts.ProjectID}] = ts.ID
		}

		res := resultSet{Total: len(rows)}
		for _, row := range rows {
			empCode := strings.ToUpper(row.Field(colEmployeeCode))
			if empCode == "" {
				res.fail(row.Number, colEmployeeCode, "", "employee code is required")
				continue
			}
			projCode := strings.ToUpper(row.Field(colProjectCode))
			if projCode == "" {
				res.fail(row.Number, colProjectCode, "", "project code is required")
				continue
			}

			empID, ok := empByCode[empCode]
			if !ok {
				res.fail(row.Number, colEmployeeCode, empCode, fmt.Sprintf("no employee with this code in %s", financialYear))
				continue
			}
			projID, ok := projByCode[projCode]
			if !ok {
				res.fail(row.Number, colProjectCode, projCode, "no project with this code")
				continue
			}

			billableRaw := row.Field(colBillableHours)
			billable, ok := parseHours(billableRaw)
			if !ok {
				res.fail(row.Number, colBillableHours, billableRaw, "billable hours must be a non-negative number")
				continue
			}
			nonBillableRaw := row.Field(colNonBillableHours)
			nonBillable, ok := parseHours(nonBillableRaw)
			if !ok {
				res.fail(row.Number, colNonBillableHours, nonBillableRaw, "non billable hours must be a non-negative number")
				continue
			}

			key := timesheetKey{empID, projID}
			if id, found := sheetByKey[key]; found {
				err := tx.Model(&models.Timesheet{}).Where("id = ?", id).Updates(map[string]any{
					"billable_hours":     billable,
					"non_billable_hours": nonBillable,
				}).Error
				if err != nil {
					return apperr.Wrap(apperr.KindTransaction, "could not update timesheet", err)
				}
			} else {
				ts := models.Timesheet{
					EmployeeID:       empID,
					ProjectID:        projID,
					Month:            opts.Month,
					BillableHours:    billable,
					NonBillableHours: nonBillable,
				}
				if err := tx.Create(&ts).Error; err != nil {
					return apperr.Wrap(apperr.KindTransaction, "could not create timesheet", err)
				}
				sheetByKey[key] = ts.ID
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
			Description: fmt.Sprintf("timesheet import %s: %d/%d rows ok", opts.Month, res.Success, res.Total),
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
