package models

import "time"

// Client - billed customer account. Vertical is the business vertical the
// client belongs to (e.g. "BFSI", "Healthcare"), used for revenue breakdowns.
type Client struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;uniqueIndex;not null"`
	Vertical  string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
