package master

import (
	"strings"

	"profitdash-backend/internal/audit"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type EmployeeResponse struct {
	ID            uint    `json:"id"`
	EmployeeCode  string  `json:"employee_code"`
	FinancialYear string  `json:"financial_year"`
	Name          string  `json:"name"`
	Designation   string  `json:"designation"`
	DepartmentID  uint    `json:"department_id"`
	Department    string  `json:"department,omitempty"`
	AnnualCTC     float64 `json:"annual_ctc"`
	IsBillable    bool    `json:"is_billable"`
	JoiningDate   string  `json:"joining_date,omitempty"`
}

type UpdateEmployeeRequest struct {
	Name         *string  `json:"name"`
	Designation  *string  `json:"designation"`
	DepartmentID *uint    `json:"department_id"`
	AnnualCTC    *float64 `json:"annual_ctc"`
	IsBillable   *bool    `json:"is_billable"`
}

func employeeResponse(e models.Employee) EmployeeResponse {
	res := EmployeeResponse{
		ID:            e.ID,
		EmployeeCode:  e.EmployeeCode,
		FinancialYear: e.FinancialYear,
		Name:          e.Name,
		Designation:   e.Designation,
		DepartmentID:  e.DepartmentID,
		Department:    e.Department.Name,
		AnnualCTC:     e.AnnualCTC,
		IsBillable:    e.IsBillable,
	}
	if e.JoiningDate != nil {
		res.JoiningDate = e.JoiningDate.Format("2006-01-02")
	}
	return res
}

// GET /api/employees?financial_year=&department_id=
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Employee{}).Preload("Department").Order("employee_code")
		if fy := c.Query("financial_year"); fy != "" {
			q = q.Where("financial_year = ?", fy)
		}
		if did := c.QueryInt("department_id", 0); did > 0 {
			q = q.Where("department_id = ?", did)
		}

		var employees []models.Employee
		if err := q.Find(&employees).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list employees")
		}

		res := make([]EmployeeResponse, 0, len(employees))
		for _, e := range employees {
			res = append(res, employeeResponse(e))
		}
		return c.JSON(res)
	}
}

func GetEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var employee models.Employee
		if err := database.DB.Preload("Department").First(&employee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}
		return c.JSON(employeeResponse(employee))
	}
}

// PUT /api/employees/:id - direct edit path beside the master upload
func UpdateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var employee models.Employee
		if err := database.DB.First(&employee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}
		before := employee

		var body UpdateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			employee.Name = name
		}
		if body.Designation != nil {
			employee.Designation = strings.TrimSpace(*body.Designation)
		}
		if body.DepartmentID != nil {
			var dept models.Department
			if err := database.DB.First(&dept, "id = ?", *body.DepartmentID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "department not found")
			}
			employee.DepartmentID = *body.DepartmentID
		}
		if body.AnnualCTC != nil {
			if *body.AnnualCTC < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "annual CTC cannot be negative")
			}
			employee.AnnualCTC = *body.AnnualCTC
		}
		if body.IsBillable != nil {
			employee.IsBillable = *body.IsBillable
		}

		if err := database.DB.Save(&employee).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update employee")
		}

		userID, userName := actorFromContext(c)
		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "employee", EntityID: employee.ID,
			Action:      models.AuditActionUpdate,
			Description: "employee updated: " + employee.EmployeeCode,
			Before:      before,
			After:       employee,
		})

		return c.JSON(employeeResponse(employee))
	}
}

// DELETE /api/employees/:id - soft delete; historical aggregations still see
// the row through the unscoped timesheet join.
func DeleteEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var employee models.Employee
		if err := database.DB.First(&employee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}

		if err := database.DB.Delete(&employee).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete employee")
		}

		userID, userName := actorFromContext(c)
		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID: userID, UserName: userName,
			EntityType: "employee", EntityID: employee.ID,
			Action:      models.AuditActionDelete,
			Description: "employee deactivated: " + employee.EmployeeCode,
			Before:      employee,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
