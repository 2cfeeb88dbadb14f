package models

import "time"

type ProjectType string

const (
	ProjectTypeTM             ProjectType = "tm"             // billed hours * rate
	ProjectTypeFixedCost      ProjectType = "fixed_cost"     // fixed contract value, tracked via burn rate
	ProjectTypeInfrastructure ProjectType = "infrastructure" // fixed vendor cost, no per-hour billing
	ProjectTypeAMC            ProjectType = "amc"            // annual maintenance contract
)

// Project - the project type decides which money field is meaningful:
// tm -> BillingRate, fixed_cost/amc -> ContractValue, infrastructure -> InfraVendorCost.
type Project struct {
	ID                uint        `gorm:"primaryKey"`
	ProjectCode       string      `gorm:"size:50;uniqueIndex;not null"`
	Name              string      `gorm:"size:200;not null"`
	ProjectType       ProjectType `gorm:"size:20;not null;index"`
	ClientID          *uint       `gorm:"index"`
	Client            *Client
	DeliveryManagerID *uint `gorm:"index"` // Employee ID, used for scope filtering
	DeliveryManager   *Employee
	BillingRate       float64 `gorm:"default:0"` // INR/hour, tm projects
	ContractValue     float64 `gorm:"default:0"` // INR, fixed_cost and amc projects
	InfraVendorCost   float64 `gorm:"default:0"` // INR/month, infrastructure projects
	Vertical          string  `gorm:"size:100"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
