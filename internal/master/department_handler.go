package master

import (
	"strings"

	"profitdash-backend/internal/database"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DepartmentResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func CreateDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "department name is required")
		}

		dept := models.Department{Name: body.Name}
		if err := database.DB.Create(&dept).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create department")
		}

		return c.Status(fiber.StatusCreated).JSON(DepartmentResponse{
			ID:        dept.ID,
			Name:      dept.Name,
			CreatedAt: dept.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func ListDepartmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var departments []models.Department
		if err := database.DB.Order("name").Find(&departments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list departments")
		}

		res := make([]DepartmentResponse, 0, len(departments))
		for _, d := range departments {
			res = append(res, DepartmentResponse{
				ID:        d.ID,
				Name:      d.Name,
				CreatedAt: d.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

func DeleteDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.Employee{}).Where("department_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "department still has employees")
		}

		if err := database.DB.Delete(&models.Department{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete department")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
