package models

import "time"

type UserRole string

const (
	RoleAdmin           UserRole = "admin"
	RoleFinance         UserRole = "finance"
	RoleDeliveryManager UserRole = "delivery_manager"
	RoleEmployee        UserRole = "employee"
)

// User - a dashboard login. Scoped roles carry the entity links the scope
// filter is built from: delivery managers and employees point at their
// Employee row, employees additionally at their department via that row.
type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:150;not null"`
	Email        string   `gorm:"size:150;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	EmployeeID   *uint    `gorm:"index"` // delivery_manager / employee roles
	DepartmentID *uint    `gorm:"index"` // optional department restriction
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
