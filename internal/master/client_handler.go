package master

import (
	"strings"

	"profitdash-backend/internal/database"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ClientResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Vertical  string `json:"vertical"`
	CreatedAt string `json:"created_at"`
}

type CreateClientRequest struct {
	Name     string `json:"name"`
	Vertical string `json:"vertical"`
}

type UpdateClientRequest struct {
	Name     *string `json:"name"`
	Vertical *string `json:"vertical"`
}

func clientResponse(cl models.Client) ClientResponse {
	return ClientResponse{
		ID:        cl.ID,
		Name:      cl.Name,
		Vertical:  cl.Vertical,
		CreatedAt: cl.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func CreateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "client name is required")
		}

		client := models.Client{Name: body.Name, Vertical: strings.TrimSpace(body.Vertical)}
		if err := database.DB.Create(&client).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create client")
		}

		return c.Status(fiber.StatusCreated).JSON(clientResponse(client))
	}
}

func ListClientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var clients []models.Client
		if err := database.DB.Order("name").Find(&clients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list clients")
		}

		res := make([]ClientResponse, 0, len(clients))
		for _, cl := range clients {
			res = append(res, clientResponse(cl))
		}
		return c.JSON(res)
	}
}

func UpdateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var client models.Client
		if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}

		var body UpdateClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "client name cannot be empty")
			}
			client.Name = name
		}
		if body.Vertical != nil {
			client.Vertical = strings.TrimSpace(*body.Vertical)
		}

		if err := database.DB.Save(&client).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update client")
		}

		return c.JSON(clientResponse(client))
	}
}

func DeleteClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.Project{}).Where("client_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "client still has projects")
		}

		if err := database.DB.Delete(&models.Client{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete client")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
