package models

import "time"

// SystemConfig - flat key/value store for tunables that drive the cost math.
// Values are stored as strings and parsed by the sysconfig resolver.
type SystemConfig struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"size:100;uniqueIndex;not null"`
	Value     string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
