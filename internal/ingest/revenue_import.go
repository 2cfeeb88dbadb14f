package ingest

import (
	"fmt"
	"strings"

	"profitdash-backend/internal/apperr"
	"profitdash-backend/internal/audit"
	"profitdash-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const colInvoiceAmount = "Invoice Amount"

// ImportRevenue reconciles one month of invoiced amounts. Merge policy: key
// (project, month); an existing row gets the uploaded amount ADDED to it, so
// the row always holds the sum of all invoices uploaded for that key. This is
// deliberately different from the timesheet overwrite policy.
func ImportRevenue(db *gorm.DB, opts Options) (*Summary, error) {
	defer removeUpload(opts.Path)

	if !monthPattern.MatchString(opts.Month) {
		return nil, apperr.New(apperr.KindValidation, "month must be YYYY-MM")
	}

	var summary *Summary
	err := db.Transaction(func(tx *gorm.DB) error {
		logRow := models.UploadLog{
			BatchID:    uuid.NewString(),
			UploadType: models.UploadTypeRevenue,
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

		var projects []models.Project
		if err := tx.Find(&projects).Error; err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not load projects", err)
		}
		projByCode := make(map[string]models.Project, len(projects))
		for _, p := range projects {
			projByCode[strings.ToUpper(p.ProjectCode)] = p
		}

		var existing []models.Revenue
		if err := tx.Where("month = ?", opts.Month).Find(&existing).Error; err != nil {
			return apperr.Wrap(apperr.KindTransaction, "could not load revenue rows", err)
		}
		revByProject := make(map[uint]*models.Revenue, len(existing))
		for i := range existing {
			revByProject[existing[i].ProjectID] = &existing[i]
		}

		res := resultSet{Total: len(rows)}
		for _, row := range rows {
			projCode := strings.ToUpper(row.Field(colProjectCode))
			if projCode == "" {
				res.fail(row.Number, colProjectCode, "", "project code is required")
				continue
			}
			project, ok := projByCode[projCode]
			if !ok {
				res.fail(row.Number, colProjectCode, projCode, "no project with this code")
				continue
			}

			amountRaw := row.Field(colInvoiceAmount)
			if amountRaw == "" {
				res.fail(row.Number, colInvoiceAmount, "", "invoice amount is required")
				continue
			}
			amount, ok := parseAmount(amountRaw)
			if !ok {
				res.fail(row.Number, colInvoiceAmount, amountRaw, "invoice amount must be numeric")
				continue
			}

			if rev, found := revByProject[project.ID]; found {
				rev.InvoiceAmount += amount
				err := tx.Model(&models.Revenue{}).Where("id = ?", rev.ID).
					Update("invoice_amount", rev.InvoiceAmount).Error
				if err != nil {
					return apperr.Wrap(apperr.KindTransaction, "could not update revenue", err)
				}
			} else {
				// project type and vertical are snapshots of the project at insert time
				rev := models.Revenue{
					ProjectID:     project.ID,
					Month:         opts.Month,
					InvoiceAmount: amount,
					ProjectType:   project.ProjectType,
					Vertical:      project.Vertical,
				}
				if err := tx.Create(&rev).Error; err != nil {
					return apperr.Wrap(apperr.KindTransaction, "could not create revenue", err)
				}
				revByProject[project.ID] = &rev
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
			Description: fmt.Sprintf("revenue import %s: %d/%d rows ok", opts.Month, res.Success, res.Total),
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
