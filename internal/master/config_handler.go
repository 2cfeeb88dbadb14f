package master

import (
	"strings"

	"profitdash-backend/internal/audit"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/models"
	"profitdash-backend/internal/sysconfig"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/system-config
// Returns the raw stored rows plus the resolved values the engine will
// actually use, so a missing key is visible next to its effective default.
func GetSystemConfigHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.SystemConfig
		if err := database.DB.Order("key").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not read system config")
		}

		resolved := sysconfig.Resolve(database.DB)

		return c.JSON(fiber.Map{
			"stored": rows,
			"resolved": fiber.Map{
				sysconfig.KeyOverheadCostPerYear:  resolved.OverheadCostPerYear,
				sysconfig.KeyStandardMonthlyHours: resolved.StandardMonthlyHours,
				sysconfig.KeyFinancialYearStart:   resolved.FinancialYearStart,
			},
		})
	}
}

// PUT /api/admin/system-config - upsert by key
func UpsertSystemConfigHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Key = strings.TrimSpace(body.Key)
		body.Value = strings.TrimSpace(body.Value)
		if body.Key == "" || body.Value == "" {
			return fiber.NewError(fiber.StatusBadRequest, "key and value are required")
		}

		var row models.SystemConfig
		err := database.DB.Where("key = ?", body.Key).First(&row).Error
		if err == nil {
			before := row
			row.Value = body.Value
			if err := database.DB.Save(&row).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not update config")
			}
			userID, userName := actorFromContext(c)
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID: userID, UserName: userName,
				EntityType: "system_config", EntityID: row.ID,
				Action:      models.AuditActionUpdate,
				Description: "config updated: " + row.Key,
				Before:      before,
				After:       row,
			})
			return c.JSON(row)
		}

		row = models.SystemConfig{Key: body.Key, Value: body.Value}
		if err := database.DB.Create(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create config")
		}

		userID, userName := actorFromContext(c)
		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "system_config", EntityID: row.ID,
			Action:      models.AuditActionCreate,
			Description: "config created: " + row.Key,
			After:       row,
		})

		return c.Status(fiber.StatusCreated).JSON(row)
	}
}
