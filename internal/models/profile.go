package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile is the persisted account record for one student (or operator).
// Profiles are created on first successful sign-in and never deleted by the
// application; the token balance is only ever raised by the grant transaction.
type Profile struct {
	ID                  string            `gorm:"primaryKey;size:64" json:"id"`
	Name                string            `gorm:"size:128" json:"name"`
	Email               string            `gorm:"size:160" json:"email"`
	EnrollmentCode      string            `gorm:"size:8" json:"enrollment_code"`
	Grade               string            `gorm:"size:4" json:"grade"`
	ClassSection        string            `gorm:"size:4" json:"class_section"`
	RollNumber          string            `gorm:"size:4" json:"roll_number"`
	TokenBalance        int               `gorm:"not null;default:0" json:"token_balance"`
	RepresentativeMoods datatypes.JSONMap `gorm:"type:json" json:"representative_moods"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// RepresentativeMoodFor returns the mood glyph the profile owner picked to
// represent the given YYYY-MM-DD date, or empty when none was chosen.
func (p Profile) RepresentativeMoodFor(dateKey string) string {
	if p.RepresentativeMoods == nil {
		return ""
	}
	if value, ok := p.RepresentativeMoods[dateKey]; ok {
		if mood, ok := value.(string); ok {
			return mood
		}
	}
	return ""
}

// HasClassInfo reports whether both grade and class section are present.
func (p Profile) HasClassInfo() bool {
	return p.Grade != "" && p.ClassSection != ""
}
