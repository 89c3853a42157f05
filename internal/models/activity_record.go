package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityRecord captures auditable events triggered by teachers reviewing
// diary entries or managing profiles.
type ActivityRecord struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    string            `gorm:"size:64;not null" json:"actor_id"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   string            `gorm:"size:64" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
