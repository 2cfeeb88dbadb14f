package auth

import (
	"profitdash-backend/internal/aggregate"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ResolveScope boils the caller's role down to a plain entity-id restriction.
// This is the whole of the authorization handoff: past this point the
// aggregation engine only ever sees the ScopeFilter, never a role.
func ResolveScope(c *fiber.Ctx) (aggregate.ScopeFilter, error) {
	roleVal := c.Locals(CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return aggregate.ScopeFilter{}, fiber.NewError(fiber.StatusForbidden, "role missing from request context")
	}

	switch role {
	case models.RoleAdmin, models.RoleFinance:
		return aggregate.ScopeFilter{}, nil

	case models.RoleDeliveryManager:
		empID, ok := c.Locals(CtxEmployeeIDKey).(*uint)
		if !ok || empID == nil {
			return aggregate.ScopeFilter{}, fiber.NewError(fiber.StatusForbidden, "delivery manager has no linked employee record")
		}
		return aggregate.ScopeFilter{DeliveryManagerID: empID}, nil

	case models.RoleEmployee:
		empID, ok := c.Locals(CtxEmployeeIDKey).(*uint)
		if !ok || empID == nil {
			return aggregate.ScopeFilter{}, fiber.NewError(fiber.StatusForbidden, "user has no linked employee record")
		}
		return aggregate.ScopeFilter{EmployeeIDs: []uint{*empID}}, nil

	default:
		return aggregate.ScopeFilter{}, fiber.NewError(fiber.StatusForbidden, "unknown role")
	}
}
