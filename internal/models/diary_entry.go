package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Mood glyphs students can attach to an entry.
var MoodPalette = []string{"😊", "😄", "😢", "😡", "😰", "🤔", "😌", "🥳"}

// Problem artifact kinds.
const (
	ArtifactKindPhoto   = "photo"
	ArtifactKindText    = "text"
	ArtifactKindDrawing = "drawing"
)

// Transcript speaker roles.
const (
	TranscriptRoleStudent   = "student"
	TranscriptRoleAssistant = "assistant"
)

// DiaryEntry is one diary submission by a student for one activity date.
//
// The decomposed activity date strings are authoritative for grouping; the
// SubmittedAt instant is authoritative for ordering. The owner display
// fields are a cache recorded at submission time; live profile data always
// wins over them when both exist.
type DiaryEntry struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`
	ProfileID string `gorm:"size:64;index;not null" json:"profile_id"`

	OwnerName           string `gorm:"size:128" json:"owner_name"`
	OwnerEmail          string `gorm:"size:160" json:"owner_email"`
	OwnerEnrollmentCode string `gorm:"size:8" json:"owner_enrollment_code"`
	OwnerGrade          string `gorm:"size:4" json:"owner_grade"`
	OwnerClassSection   string `gorm:"size:4" json:"owner_class_section"`
	OwnerRollNumber     string `gorm:"size:4" json:"owner_roll_number"`

	SubmittedAt    time.Time `gorm:"index" json:"submitted_at"`
	ActivityDate   string    `gorm:"size:16" json:"activity_date"`
	ActivityTime   string    `gorm:"size:8" json:"activity_time"`
	ActivityYear   string    `gorm:"size:4" json:"activity_year"`
	ActivityMonth  string    `gorm:"size:2" json:"activity_month"`
	ActivityDay    string    `gorm:"size:2" json:"activity_day"`
	ActivityHour   string    `gorm:"size:2" json:"activity_hour"`
	ActivityMinute string    `gorm:"size:2" json:"activity_minute"`

	Mood               string            `gorm:"size:16" json:"mood"`
	Reflection         string            `gorm:"type:text" json:"reflection"`
	StudyHours         int               `gorm:"default:0" json:"study_hours"`
	StudyMinutes       int               `gorm:"default:0" json:"study_minutes"`
	ProblemArtifact    datatypes.JSONMap `gorm:"type:json" json:"problem_artifact"`
	ProblemExplanation string            `gorm:"type:text" json:"problem_explanation"`
	Transcript         datatypes.JSON    `gorm:"type:json" json:"transcript"`

	Feedback     string     `gorm:"type:text" json:"feedback"`
	FeedbackAt   *time.Time `json:"feedback_at"`
	TokenGranted bool       `gorm:"not null;default:false" json:"token_granted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TranscriptTurn is a single exchange within the chatbot transcript.
type TranscriptTurn struct {
	Role string `json:"role" validate:"required,oneof=student assistant"`
	Text string `json:"text" validate:"required"`
}

// HasFeedback reports whether the entry carries non-blank teacher feedback.
func (e DiaryEntry) HasFeedback() bool {
	return strings.TrimSpace(e.Feedback) != ""
}

// IsValidMood reports whether the glyph belongs to the fixed palette.
func IsValidMood(mood string) bool {
	for _, m := range MoodPalette {
		if m == mood {
			return true
		}
	}
	return false
}
