package dto

import (
	"time"

	"github.com/mathmood/diary-api/internal/models"
)

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest filters the audit trail listing.
type ActivityListRequest struct {
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
	ActorID    string `query:"actor_id"`
	Action     string `query:"action"`
	EntityType string `query:"entity_type"`
}

// ActivityResponse serializes one audit record.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    string                 `json:"actor_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps paginated audit records.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts an activity record into its DTO.
func NewActivityResponse(record models.ActivityRecord) ActivityResponse {
	return ActivityResponse{
		ID:         record.ID,
		ActorID:    record.ActorID,
		Action:     record.Action,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		Metadata:   record.Metadata,
		CreatedAt:  record.CreatedAt,
	}
}
