package master

import (
	"strings"

	"profitdash-backend/internal/audit"
	"profitdash-backend/internal/auth"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProjectResponse struct {
	ID                uint    `json:"id"`
	ProjectCode       string  `json:"project_code"`
	Name              string  `json:"name"`
	ProjectType       string  `json:"project_type"`
	ClientID          *uint   `json:"client_id"`
	DeliveryManagerID *uint   `json:"delivery_manager_id"`
	BillingRate       float64 `json:"billing_rate"`
	ContractValue     float64 `json:"contract_value"`
	InfraVendorCost   float64 `json:"infra_vendor_cost"`
	Vertical          string  `json:"vertical"`
	CreatedAt         string  `json:"created_at"`
}

type CreateProjectRequest struct {
	ProjectCode       string  `json:"project_code"`
	Name              string  `json:"name"`
	ProjectType       string  `json:"project_type"`
	ClientID          *uint   `json:"client_id"`
	DeliveryManagerID *uint   `json:"delivery_manager_id"`
	BillingRate       float64 `json:"billing_rate"`
	ContractValue     float64 `json:"contract_value"`
	InfraVendorCost   float64 `json:"infra_vendor_cost"`
	Vertical          string  `json:"vertical"`
}

type UpdateProjectRequest struct {
	Name              *string  `json:"name"`
	ProjectType       *string  `json:"project_type"`
	ClientID          *uint    `json:"client_id"`
	DeliveryManagerID *uint    `json:"delivery_manager_id"`
	BillingRate       *float64 `json:"billing_rate"`
	ContractValue     *float64 `json:"contract_value"`
	InfraVendorCost   *float64 `json:"infra_vendor_cost"`
	Vertical          *string  `json:"vertical"`
}

func projectResponse(p models.Project) ProjectResponse {
	return ProjectResponse{
		ID:                p.ID,
		ProjectCode:       p.ProjectCode,
		Name:              p.Name,
		ProjectType:       string(p.ProjectType),
		ClientID:          p.ClientID,
		DeliveryManagerID: p.DeliveryManagerID,
		BillingRate:       p.BillingRate,
		ContractValue:     p.ContractValue,
		InfraVendorCost:   p.InfraVendorCost,
		Vertical:          p.Vertical,
		CreatedAt:         p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func validProjectType(t string) bool {
	switch models.ProjectType(t) {
	case models.ProjectTypeTM, models.ProjectTypeFixedCost, models.ProjectTypeInfrastructure, models.ProjectTypeAMC:
		return true
	}
	return false
}

func actorFromContext(c *fiber.Ctx) (uint, string) {
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

func CreateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.ProjectCode = strings.ToUpper(strings.TrimSpace(body.ProjectCode))
		body.Name = strings.TrimSpace(body.Name)
		if body.ProjectCode == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "project code and name are required")
		}
		if !validProjectType(body.ProjectType) {
			return fiber.NewError(fiber.StatusBadRequest, "project type must be tm, fixed_cost, infrastructure or amc")
		}

		var exist models.Project
		if err := database.DB.Where("project_code = ?", body.ProjectCode).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "project code already exists")
		}

		project := models.Project{
			ProjectCode:       body.ProjectCode,
			Name:              body.Name,
			ProjectType:       models.ProjectType(body.ProjectType),
			ClientID:          body.ClientID,
			DeliveryManagerID: body.DeliveryManagerID,
			BillingRate:       body.BillingRate,
			ContractValue:     body.ContractValue,
			InfraVendorCost:   body.InfraVendorCost,
			Vertical:          strings.TrimSpace(body.Vertical),
		}
		if err := database.DB.Create(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create project")
		}

		userID, userName := actorFromContext(c)
		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "project", EntityID: project.ID,
			Action:      models.AuditActionCreate,
			Description: "project created: " + project.ProjectCode,
			After:       project,
		})

		return c.Status(fiber.StatusCreated).JSON(projectResponse(project))
	}
}

func ListProjectsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Project{}).Order("project_code")
		if t := c.Query("type"); t != "" {
			q = q.Where("project_type = ?", t)
		}
		if cid := c.QueryInt("client_id", 0); cid > 0 {
			q = q.Where("client_id = ?", cid)
		}

		var projects []models.Project
		if err := q.Find(&projects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list projects")
		}

		res := make([]ProjectResponse, 0, len(projects))
		for _, p := range projects {
			res = append(res, projectResponse(p))
		}
		return c.JSON(res)
	}
}

func GetProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var project models.Project
		if err := database.DB.First(&project, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "project not found")
		}
		return c.JSON(projectResponse(project))
	}
}

func UpdateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var project models.Project
		if err := database.DB.First(&project, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "project not found")
		}
		before := project

		var body UpdateProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			project.Name = name
		}
		if body.ProjectType != nil {
			if !validProjectType(*body.ProjectType) {
				return fiber.NewError(fiber.StatusBadRequest, "invalid project type")
			}
			project.ProjectType = models.ProjectType(*body.ProjectType)
		}
		if body.ClientID != nil {
			project.ClientID = body.ClientID
		}
		if body.DeliveryManagerID != nil {
			project.DeliveryManagerID = body.DeliveryManagerID
		}
		if body.BillingRate != nil {
			project.BillingRate = *body.BillingRate
		}
		if body.ContractValue != nil {
			project.ContractValue = *body.ContractValue
		}
		if body.InfraVendorCost != nil {
			project.InfraVendorCost = *body.InfraVendorCost
		}
		if body.Vertical != nil {
			project.Vertical = strings.TrimSpace(*body.Vertical)
		}

		if err := database.DB.Save(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update project")
		}

		userID, userName := actorFromContext(c)
		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "project", EntityID: project.ID,
			Action:      models.AuditActionUpdate,
			Description: "project updated: " + project.ProjectCode,
			Before:      before,
			After:       project,
		})

		return c.JSON(projectResponse(project))
	}
}

func DeleteProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var project models.Project
		if err := database.DB.First(&project, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "project not found")
		}

		// projects with recorded revenue or hours stay, history depends on them
		var revCount, tsCount int64
		database.DB.Model(&models.Revenue{}).Where("project_id = ?", project.ID).Count(&revCount)
		database.DB.Model(&models.Timesheet{}).Where("project_id = ?", project.ID).Count(&tsCount)
		if revCount > 0 || tsCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "project has revenue or timesheet history and cannot be deleted")
		}

		if err := database.DB.Delete(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete project")
		}

		userID, userName := actorFromContext(c)
		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "project", EntityID: project.ID,
			Action:      models.AuditActionDelete,
			Description: "project deleted: " + project.ProjectCode,
			Before:      project,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
