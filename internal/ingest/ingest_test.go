package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"profitdash-backend/internal/apperr"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupIngestTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// writeSheet builds an .xlsx fixture with the given header row and data rows.
// The importer removes the file, so each import call needs a fresh fixture.
func writeSheet(t *testing.T, headers []string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "upload.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

var employeeHeaders = []string{
	colEmployeeCode, colEmployeeName, colDepartment, colDesignation,
	colAnnualCTC, colBillable, colJoiningDate,
}

func employeeOpts(path string) Options {
	return Options{
		Path:          path,
		FileName:      "employees.xlsx",
		FinancialYear: "2025-26",
		UserID:        1,
		UserName:      "tester",
	}
}

func seedProject(t *testing.T, db *gorm.DB, code string, projType models.ProjectType) models.Project {
	t.Helper()
	p := models.Project{
		ProjectCode: code,
		Name:        "Project " + code,
		ProjectType: projType,
		BillingRate: 2000,
		Vertical:    "BFSI",
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

func seedEmployee(t *testing.T, db *gorm.DB, code, fy string) models.Employee {
	t.Helper()
	dept := models.Department{Name: "Engineering " + code}
	if err := db.Create(&dept).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}
	e := models.Employee{
		EmployeeCode:  code,
		FinancialYear: fy,
		Name:          "Employee " + code,
		DepartmentID:  dept.ID,
		AnnualCTC:     1_800_000,
		IsBillable:    true,
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return e
}

func TestImportEmployeeMasterCreatesAndReimportOverwrites(t *testing.T) {
	db := setupIngestTestDB(t)

	rows := [][]string{
		{"E001", "Asha Rao", "Engineering", "Senior Engineer", "1800000", "Yes", "2023-04-10"},
		{"E002", "Vikram Shah", "Design", "Designer", "1200000", "No", ""},
	}
	summary, err := ImportEmployeeMaster(db, employeeOpts(writeSheet(t, employeeHeaders, rows)))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if summary.Status != models.UploadStatusCompleted {
		t.Fatalf("expected completed, got %s", summary.Status)
	}
	if summary.SuccessRows != 2 || summary.TotalRows != 2 {
		t.Fatalf("expected 2/2 rows, got %d/%d", summary.SuccessRows, summary.TotalRows)
	}

	// re-upload with a revised CTC: same key, no duplicate, fields overwritten
	rows[0][4] = "2000000"
	summary, err = ImportEmployeeMaster(db, employeeOpts(writeSheet(t, employeeHeaders, rows)))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if summary.Status != models.UploadStatusCompleted || summary.SuccessRows != 2 {
		t.Fatalf("expected clean re-import, got %s %d/%d", summary.Status, summary.SuccessRows, summary.TotalRows)
	}

	var count int64
	db.Model(&models.Employee{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 employees after re-import, got %d", count)
	}

	var emp models.Employee
	if err := db.Where("employee_code = ? AND financial_year = ?", "E001", "2025-26").First(&emp).Error; err != nil {
		t.Fatalf("load employee: %v", err)
	}
	if emp.AnnualCTC != 2_000_000 {
		t.Fatalf("expected overwritten CTC 2000000, got %v", emp.AnnualCTC)
	}
	if !emp.IsBillable {
		t.Fatal("expected E001 billable")
	}

	// departments named in the sheet are auto-created
	var deptCount int64
	db.Model(&models.Department{}).Count(&deptCount)
	if deptCount != 2 {
		t.Fatalf("expected 2 auto-created departments, got %d", deptCount)
	}
}

func TestImportEmployeeMasterPartialKeepsGoodRows(t *testing.T) {
	db := setupIngestTestDB(t)

	rows := [][]string{
		{"E001", "Asha Rao", "Engineering", "", "1800000", "", ""},
		{"", "No Code", "Engineering", "", "1000000", "", ""},
		{"E003", "Bad CTC", "Engineering", "", "abc", "", ""},
		{"E004", "Meera Iyer", "Engineering", "", "1500000", "", ""},
	}
	summary, err := ImportEmployeeMaster(db, employeeOpts(writeSheet(t, employeeHeaders, rows)))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Status != models.UploadStatusPartial {
		t.Fatalf("expected partial, got %s", summary.Status)
	}
	if summary.SuccessRows != 2 || summary.ErrorRows != 2 {
		t.Fatalf("expected 2 ok / 2 failed, got %d ok / %d failed", summary.SuccessRows, summary.ErrorRows)
	}

	// reported row numbers match the spreadsheet: header is row 1, data starts at 2
	if summary.Errors[0].Row != 3 || summary.Errors[1].Row != 4 {
		t.Fatalf("expected error rows 3 and 4, got %d and %d", summary.Errors[0].Row, summary.Errors[1].Row)
	}
	if summary.Errors[1].Field != colAnnualCTC || summary.Errors[1].Data != "abc" {
		t.Fatalf("unexpected second error: %+v", summary.Errors[1])
	}

	var count int64
	db.Model(&models.Employee{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected only the valid rows stored, got %d", count)
	}

	// the finalized log carries the error details as JSON
	var logRow models.UploadLog
	if err := db.Where("id = ?", summary.LogID).First(&logRow).Error; err != nil {
		t.Fatalf("load upload log: %v", err)
	}
	if logRow.Status != models.UploadStatusPartial {
		t.Fatalf("expected partial log status, got %s", logRow.Status)
	}
	if !strings.Contains(logRow.ErrorDetails, `"row":3`) {
		t.Fatalf("expected row 3 in error details, got %s", logRow.ErrorDetails)
	}
}

func TestImportEmployeeMasterAllRowsBadIsFailed(t *testing.T) {
	db := setupIngestTestDB(t)

	rows := [][]string{
		{"", "No Code", "Engineering", "", "1000000", "", ""},
		{"E002", "", "Engineering", "", "1000000", "", ""},
	}
	summary, err := ImportEmployeeMaster(db, employeeOpts(writeSheet(t, employeeHeaders, rows)))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Status != models.UploadStatusFailed {
		t.Fatalf("expected failed, got %s", summary.Status)
	}
	var count int64
	db.Model(&models.Employee{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no employees, got %d", count)
	}
}

func TestImportEmployeeMasterRequiresFinancialYear(t *testing.T) {
	db := setupIngestTestDB(t)

	opts := employeeOpts(writeSheet(t, employeeHeaders, [][]string{{"E001", "A", "Eng", "", "1", "", ""}}))
	opts.FinancialYear = ""
	_, err := ImportEmployeeMaster(db, opts)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportEmployeeMasterSystemicFailureRollsBack(t *testing.T) {
	db := setupIngestTestDB(t)

	// a broken schema outside the per-row loop must abort the whole batch
	if err := db.Migrator().DropTable(&models.Employee{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	rows := [][]string{{"E001", "Asha Rao", "Engineering", "", "1800000", "", ""}}
	_, err := ImportEmployeeMaster(db, employeeOpts(writeSheet(t, employeeHeaders, rows)))
	if err == nil {
		t.Fatal("expected systemic failure")
	}
	if !apperr.IsKind(err, apperr.KindTransaction) {
		t.Fatalf("expected transaction kind, got %v", err)
	}

	var logCount int64
	db.Model(&models.UploadLog{}).Count(&logCount)
	if logCount != 0 {
		t.Fatalf("expected upload log rolled back, got %d rows", logCount)
	}
}

func TestImportRemovesStagedFile(t *testing.T) {
	db := setupIngestTestDB(t)

	path := writeSheet(t, employeeHeaders, [][]string{{"E001", "Asha Rao", "Engineering", "", "1800000", "", ""}})
	if _, err := ImportEmployeeMaster(db, employeeOpts(path)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected staged file removed, stat err: %v", err)
	}
}

var timesheetHeaders = []string{colEmployeeCode, colProjectCode, colBillableHours, colNonBillableHours}

func timesheetOpts(path, month string) Options {
	return Options{
		Path:     path,
		FileName: "timesheets.xlsx",
		Month:    month,
		UserID:   1,
		UserName: "tester",
	}
}

func TestImportTimesheetsOverwritesHours(t *testing.T) {
	db := setupIngestTestDB(t)
	emp := seedEmployee(t, db, "E001", "2025-26")
	proj := seedProject(t, db, "P100", models.ProjectTypeTM)

	summary, err := ImportTimesheets(db, timesheetOpts(
		writeSheet(t, timesheetHeaders, [][]string{{"E001", "P100", "10", "5"}}), "2025-06"))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if summary.Status != models.UploadStatusCompleted {
		t.Fatalf("expected completed, got %s", summary.Status)
	}

	// the same key again: hours replaced, never summed
	summary, err = ImportTimesheets(db, timesheetOpts(
		writeSheet(t, timesheetHeaders, [][]string{{"E001", "P100", "20", "0"}}), "2025-06"))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if summary.Status != models.UploadStatusCompleted {
		t.Fatalf("expected completed, got %s", summary.Status)
	}

	var sheets []models.Timesheet
	if err := db.Where("employee_id = ? AND project_id = ?", emp.ID, proj.ID).Find(&sheets).Error; err != nil {
		t.Fatalf("load timesheets: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("expected one row per (employee, project, month), got %d", len(sheets))
	}
	if sheets[0].BillableHours != 20 || sheets[0].NonBillableHours != 0 {
		t.Fatalf("expected overwritten hours (20, 0), got (%v, %v)", sheets[0].BillableHours, sheets[0].NonBillableHours)
	}
}

func TestImportTimesheetsUnknownReferences(t *testing.T) {
	db := setupIngestTestDB(t)
	seedEmployee(t, db, "E001", "2025-26")
	seedProject(t, db, "P100", models.ProjectTypeTM)

	rows := [][]string{
		{"E001", "P100", "8", "0"},
		{"E999", "P100", "8", "0"},
		{"E001", "P999", "8", "0"},
		{"E001", "P100", "-4", "0"},
	}
	summary, err := ImportTimesheets(db, timesheetOpts(writeSheet(t, timesheetHeaders, rows), "2025-06"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Status != models.UploadStatusPartial {
		t.Fatalf("expected partial, got %s", summary.Status)
	}
	if summary.SuccessRows != 1 || summary.ErrorRows != 3 {
		t.Fatalf("expected 1 ok / 3 failed, got %d ok / %d failed", summary.SuccessRows, summary.ErrorRows)
	}
	if summary.Errors[0].Field != colEmployeeCode {
		t.Fatalf("expected unknown employee error first, got %+v", summary.Errors[0])
	}
	if summary.Errors[2].Field != colBillableHours {
		t.Fatalf("expected negative hours error last, got %+v", summary.Errors[2])
	}
}

func TestImportTimesheetsRejectsBadMonth(t *testing.T) {
	db := setupIngestTestDB(t)

	path := writeSheet(t, timesheetHeaders, [][]string{{"E001", "P100", "8", "0"}})
	_, err := ImportTimesheets(db, timesheetOpts(path, "2025-13"))
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for bad month, got %v", err)
	}
	// no transaction was opened
	var logCount int64
	db.Model(&models.UploadLog{}).Count(&logCount)
	if logCount != 0 {
		t.Fatalf("expected no upload log, got %d", logCount)
	}
}

var revenueHeaders = []string{colProjectCode, colInvoiceAmount}

func revenueOpts(path, month string) Options {
	return Options{
		Path:     path,
		FileName: "revenue.xlsx",
		Month:    month,
		UserID:   1,
		UserName: "tester",
	}
}

func TestImportRevenueAccumulates(t *testing.T) {
	db := setupIngestTestDB(t)
	proj := seedProject(t, db, "P100", models.ProjectTypeFixedCost)

	if _, err := ImportRevenue(db, revenueOpts(
		writeSheet(t, revenueHeaders, [][]string{{"P100", "100"}}), "2025-06")); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := ImportRevenue(db, revenueOpts(
		writeSheet(t, revenueHeaders, [][]string{{"P100", "200"}}), "2025-06")); err != nil {
		t.Fatalf("second import: %v", err)
	}

	var revs []models.Revenue
	if err := db.Where("project_id = ? AND month = ?", proj.ID, "2025-06").Find(&revs).Error; err != nil {
		t.Fatalf("load revenue: %v", err)
	}
	if len(revs) != 1 {
		t.Fatalf("expected one row per (project, month), got %d", len(revs))
	}
	if revs[0].InvoiceAmount != 300 {
		t.Fatalf("expected accumulated amount 300, got %v", revs[0].InvoiceAmount)
	}

	// snapshot fields come from the project at insert time
	if revs[0].ProjectType != models.ProjectTypeFixedCost || revs[0].Vertical != "BFSI" {
		t.Fatalf("expected snapshot (fixed_cost, BFSI), got (%s, %s)", revs[0].ProjectType, revs[0].Vertical)
	}
}

func TestImportRevenueSnapshotSurvivesProjectEdit(t *testing.T) {
	db := setupIngestTestDB(t)
	proj := seedProject(t, db, "P100", models.ProjectTypeTM)

	if _, err := ImportRevenue(db, revenueOpts(
		writeSheet(t, revenueHeaders, [][]string{{"P100", "50000"}}), "2025-06")); err != nil {
		t.Fatalf("import: %v", err)
	}

	// later project edits must not rewrite stored revenue history
	if err := db.Model(&proj).Updates(map[string]any{"vertical": "Retail", "project_type": models.ProjectTypeAMC}).Error; err != nil {
		t.Fatalf("edit project: %v", err)
	}

	var rev models.Revenue
	if err := db.Where("project_id = ?", proj.ID).First(&rev).Error; err != nil {
		t.Fatalf("load revenue: %v", err)
	}
	if rev.ProjectType != models.ProjectTypeTM || rev.Vertical != "BFSI" {
		t.Fatalf("expected original snapshot (tm, BFSI), got (%s, %s)", rev.ProjectType, rev.Vertical)
	}
}

func TestImportRevenueUnknownProject(t *testing.T) {
	db := setupIngestTestDB(t)
	seedProject(t, db, "P100", models.ProjectTypeTM)

	rows := [][]string{
		{"P100", "1,50,000"},
		{"P999", "100"},
	}
	summary, err := ImportRevenue(db, revenueOpts(writeSheet(t, revenueHeaders, rows), "2025-06"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Status != models.UploadStatusPartial {
		t.Fatalf("expected partial, got %s", summary.Status)
	}
	if summary.Errors[0].Row != 3 || summary.Errors[0].Data != "P999" {
		t.Fatalf("unexpected error detail: %+v", summary.Errors[0])
	}

	// comma separated amounts parse
	var rev models.Revenue
	if err := db.First(&rev).Error; err != nil {
		t.Fatalf("load revenue: %v", err)
	}
	if rev.InvoiceAmount != 150000 {
		t.Fatalf("expected 150000 from grouped digits, got %v", rev.InvoiceAmount)
	}
}

func TestReadSheetSkipsEmptyRowsKeepingNumbers(t *testing.T) {
	headers := []string{colProjectCode, colInvoiceAmount}
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", headers[0])
	f.SetCellValue(sheet, "B1", headers[1])
	f.SetCellValue(sheet, "A2", "P100")
	f.SetCellValue(sheet, "B2", "100")
	// row 3 left fully empty
	f.SetCellValue(sheet, "A4", "P200")
	f.SetCellValue(sheet, "B4", "200")
	path := filepath.Join(t.TempDir(), "gaps.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}

	rows, err := ReadSheet(path)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	if rows[0].Number != 2 || rows[1].Number != 4 {
		t.Fatalf("expected row numbers 2 and 4, got %d and %d", rows[0].Number, rows[1].Number)
	}
	if rows[1].Field(colProjectCode) != "P200" {
		t.Fatalf("expected P200 on row 4, got %q", rows[1].Field(colProjectCode))
	}
}
