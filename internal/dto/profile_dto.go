package dto

import (
	"time"

	"github.com/mathmood/diary-api/internal/models"
)

// EnsureProfileRequest carries the identity attributes available at sign-in.
type EnsureProfileRequest struct {
	Name           string `json:"name" validate:"omitempty,max=128"`
	Email          string `json:"email" validate:"omitempty,email"`
	EnrollmentCode string `json:"enrollment_code" validate:"omitempty,len=5"`
}

// ProfileUpdateRequest captures the owner-editable profile fields.
type ProfileUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=128"`
	EnrollmentCode *string `json:"enrollment_code" validate:"omitempty,len=5"`
}

// RepresentativeMoodRequest picks the mood glyph representing one day.
type RepresentativeMoodRequest struct {
	Date string `json:"date" validate:"required,len=10"`
	Mood string `json:"mood" validate:"required"`
}

// ProfileResponse serializes a profile for the owner.
type ProfileResponse struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Email               string            `json:"email"`
	EnrollmentCode      string            `json:"enrollment_code"`
	Grade               string            `json:"grade"`
	ClassSection        string            `json:"class_section"`
	RollNumber          string            `json:"roll_number"`
	TokenBalance        int               `json:"token_balance"`
	RepresentativeMoods map[string]string `json:"representative_moods"`
	CreatedAt           time.Time         `json:"created_at"`
}

// NewProfileResponse converts a profile model into its DTO.
func NewProfileResponse(profile models.Profile) ProfileResponse {
	moods := make(map[string]string, len(profile.RepresentativeMoods))
	for key, value := range profile.RepresentativeMoods {
		if mood, ok := value.(string); ok {
			moods[key] = mood
		}
	}

	return ProfileResponse{
		ID:                  profile.ID,
		Name:                profile.Name,
		Email:               profile.Email,
		EnrollmentCode:      profile.EnrollmentCode,
		Grade:               profile.Grade,
		ClassSection:        profile.ClassSection,
		RollNumber:          profile.RollNumber,
		TokenBalance:        profile.TokenBalance,
		RepresentativeMoods: moods,
		CreatedAt:           profile.CreatedAt,
	}
}
