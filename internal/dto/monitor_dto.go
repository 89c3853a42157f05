package dto

import (
	"time"

	"github.com/mathmood/diary-api/internal/aggregate"
)

// MonitorSnapshotResponse wraps one materialized monitoring snapshot.
type MonitorSnapshotResponse struct {
	Snapshot    aggregate.Snapshot `json:"snapshot"`
	GeneratedAt time.Time          `json:"generated_at"`
	CacheHit    bool               `json:"cache_hit"`
}

// DateListResponse lists calendar days, newest first.
type DateListResponse struct {
	Days []DateSummary `json:"days"`
}

// DateSummary is one row of the date filter list.
type DateSummary struct {
	Key     string `json:"key"`
	Entries int    `json:"entries"`
}

// SaveFeedbackRequest is the teacher's feedback payload for one entry.
type SaveFeedbackRequest struct {
	Feedback   string `json:"feedback" validate:"required"`
	GrantToken bool   `json:"grant_token"`
}

// SaveFeedbackResponse reports the persisted entry and whether this call
// granted the token (false when it had already been granted).
type SaveFeedbackResponse struct {
	Entry        DiaryEntryResponse `json:"entry"`
	TokenGranted bool               `json:"token_granted"`
}

// SuggestFeedbackResponse carries the AI-drafted feedback text.
type SuggestFeedbackResponse struct {
	Suggestion string `json:"suggestion"`
}

// SeedResponse reports how many demo records were created.
type SeedResponse struct {
	Profiles int64 `json:"profiles"`
	Entries  int64 `json:"entries"`
}

// ImportEntriesRequest carries raw entry documents exported from the
// predecessor app, in any of the historical shapes.
type ImportEntriesRequest struct {
	Entries []map[string]any `json:"entries"`
}

// ImportEntriesResponse reports the import outcome.
type ImportEntriesResponse struct {
	Imported int64 `json:"imported"`
	Skipped  int64 `json:"skipped"`
}
