package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"profitdash-backend/internal/apperr"
	"profitdash-backend/internal/auth"
	"profitdash-backend/internal/config"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// fiberError maps core error kinds onto HTTP statuses at the handler boundary.
func fiberError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindReference:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case apperr.KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// stageUpload saves the multipart file under cfg.UploadPath and returns its
// path; the importer removes it again in all paths.
func stageUpload(c *fiber.Ctx, cfg *config.Config) (path, name string, size int64, err error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", "", 0, fiber.NewError(fiber.StatusBadRequest, "file upload missing: "+err.Error())
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		return "", "", 0, fiber.NewError(fiber.StatusBadRequest, "only .xlsx files are accepted")
	}
	if err := os.MkdirAll(cfg.UploadPath, 0o755); err != nil {
		return "", "", 0, fiber.NewError(fiber.StatusInternalServerError, "could not stage upload: "+err.Error())
	}

	path = filepath.Join(cfg.UploadPath, uuid.NewString()+".xlsx")
	if err := c.SaveFile(fileHeader, path); err != nil {
		return "", "", 0, fiber.NewError(fiber.StatusInternalServerError, "could not stage upload: "+err.Error())
	}
	return path, fileHeader.Filename, fileHeader.Size, nil
}

func uploaderFromContext(c *fiber.Ctx) (uint, string) {
	var id uint
	if v, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
		id = v
	}
	var name string
	if v, ok := c.Locals(auth.CtxUserNameKey).(string); ok {
		name = v
	}
	return id, name
}

type uploadResponse struct {
	*Summary
	FileName      string `json:"file_name"`
	FileSize      int64  `json:"file_size"`
	Month         string `json:"month,omitempty"`
	FinancialYear string `json:"financial_year,omitempty"`
}

// POST /api/uploads/employee-master  (multipart: file, financial_year)
func UploadEmployeeMasterHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, name, size, err := stageUpload(c, cfg)
		if err != nil {
			return err
		}

		userID, userName := uploaderFromContext(c)
		opts := Options{
			Path:          path,
			FileName:      name,
			FileSize:      size,
			FinancialYear: strings.TrimSpace(c.FormValue("financial_year")),
			UserID:        userID,
			UserName:      userName,
		}

		summary, err := ImportEmployeeMaster(database.DB, opts)
		if err != nil {
			return fiberError(err)
		}

		return c.JSON(uploadResponse{
			Summary:       summary,
			FileName:      name,
			FileSize:      size,
			FinancialYear: opts.FinancialYear,
		})
	}
}

// POST /api/uploads/timesheets  (multipart: file, month)
func UploadTimesheetsHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, name, size, err := stageUpload(c, cfg)
		if err != nil {
			return err
		}

		userID, userName := uploaderFromContext(c)
		opts := Options{
			Path:     path,
			FileName: name,
			FileSize: size,
			Month:    strings.TrimSpace(c.FormValue("month")),
			UserID:   userID,
			UserName: userName,
		}

		summary, err := ImportTimesheets(database.DB, opts)
		if err != nil {
			return fiberError(err)
		}

		return c.JSON(uploadResponse{
			Summary:  summary,
			FileName: name,
			FileSize: size,
			Month:    opts.Month,
		})
	}
}

// POST /api/uploads/revenue  (multipart: file, month)
func UploadRevenueHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, name, size, err := stageUpload(c, cfg)
		if err != nil {
			return err
		}

		userID, userName := uploaderFromContext(c)
		opts := Options{
			Path:     path,
			FileName: name,
			FileSize: size,
			Month:    strings.TrimSpace(c.FormValue("month")),
			UserID:   userID,
			UserName: userName,
		}

		summary, err := ImportRevenue(database.DB, opts)
		if err != nil {
			return fiberError(err)
		}

		return c.JSON(uploadResponse{
			Summary:  summary,
			FileName: name,
			FileSize: size,
			Month:    opts.Month,
		})
	}
}

// GET /api/uploads?type=&limit=
func ListUploadLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > 200 {
			limit = 50
		}

		q := database.DB.Model(&models.UploadLog{}).Order("created_at DESC").Limit(limit)
		if t := c.Query("type"); t != "" {
			q = q.Where("upload_type = ?", t)
		}

		var logs []models.UploadLog
		if err := q.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list upload logs")
		}

		return c.JSON(logs)
	}
}

// GET /api/uploads/:id
func GetUploadLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var logRow models.UploadLog
		if err := database.DB.First(&logRow, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "upload log not found")
		}

		var details []RowError
		if logRow.ErrorDetails != "" {
			_ = json.Unmarshal([]byte(logRow.ErrorDetails), &details)
		}
		if details == nil {
			details = []RowError{}
		}

		return c.JSON(fiber.Map{
			"log":           logRow,
			"error_details": details,
		})
	}
}
