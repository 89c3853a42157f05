package dto

import (
	"encoding/json"
	"time"

	"github.com/mathmood/diary-api/internal/models"
)

// ProblemArtifactPayload describes the optional problem attachment.
type ProblemArtifactPayload struct {
	Kind     string `json:"kind" validate:"required,oneof=photo text drawing"`
	Content  string `json:"content" validate:"omitempty,max=4000"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// SubmitEntryRequest is the diary submission payload.
type SubmitEntryRequest struct {
	Mood               string                  `json:"mood" validate:"required"`
	Reflection         string                  `json:"reflection" validate:"required,max=8000"`
	StudyHours         int                     `json:"study_hours" validate:"min=0,max=24"`
	StudyMinutes       int                     `json:"study_minutes" validate:"min=0,max=59"`
	ProblemArtifact    *ProblemArtifactPayload `json:"problem_artifact"`
	ProblemExplanation string                  `json:"problem_explanation" validate:"omitempty,max=4000"`
	Transcript         []models.TranscriptTurn `json:"transcript" validate:"omitempty,dive"`
	// ActivityAt overrides the activity instant; zero means "now".
	ActivityAt time.Time `json:"activity_at"`
}

// DiaryEntryResponse serializes an entry with its transcript decoded.
type DiaryEntryResponse struct {
	ID                 string                  `json:"id"`
	ProfileID          string                  `json:"profile_id"`
	SubmittedAt        time.Time               `json:"submitted_at"`
	ActivityDate       string                  `json:"activity_date"`
	ActivityTime       string                  `json:"activity_time"`
	Mood               string                  `json:"mood"`
	Reflection         string                  `json:"reflection"`
	StudyHours         int                     `json:"study_hours"`
	StudyMinutes       int                     `json:"study_minutes"`
	ProblemArtifact    map[string]interface{}  `json:"problem_artifact,omitempty"`
	ProblemExplanation string                  `json:"problem_explanation,omitempty"`
	Transcript         []models.TranscriptTurn `json:"transcript,omitempty"`
	Feedback           string                  `json:"feedback,omitempty"`
	FeedbackAt         *time.Time              `json:"feedback_at,omitempty"`
	TokenGranted       bool                    `json:"token_granted"`
}

// NewDiaryEntryResponse converts an entry model into its DTO.
func NewDiaryEntryResponse(entry models.DiaryEntry) DiaryEntryResponse {
	var transcript []models.TranscriptTurn
	if len(entry.Transcript) > 0 {
		_ = json.Unmarshal(entry.Transcript, &transcript)
	}

	return DiaryEntryResponse{
		ID:                 entry.ID,
		ProfileID:          entry.ProfileID,
		SubmittedAt:        entry.SubmittedAt,
		ActivityDate:       entry.ActivityDate,
		ActivityTime:       entry.ActivityTime,
		Mood:               entry.Mood,
		Reflection:         entry.Reflection,
		StudyHours:         entry.StudyHours,
		StudyMinutes:       entry.StudyMinutes,
		ProblemArtifact:    entry.ProblemArtifact,
		ProblemExplanation: entry.ProblemExplanation,
		Transcript:         transcript,
		Feedback:           entry.Feedback,
		FeedbackAt:         entry.FeedbackAt,
		TokenGranted:       entry.TokenGranted,
	}
}

// UploadArtifactResponse reports a stored artifact file.
type UploadArtifactResponse struct {
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
	Checksum  string `json:"checksum"`
	FileName  string `json:"file_name"`
}

// ChatRelayRequest carries one student chat turn with the running transcript.
type ChatRelayRequest struct {
	Message    string                  `json:"message" validate:"required,max=2000"`
	Transcript []models.TranscriptTurn `json:"transcript" validate:"omitempty,dive"`
}

// ChatRelayResponse returns the assistant reply.
type ChatRelayResponse struct {
	Reply string `json:"reply"`
}
