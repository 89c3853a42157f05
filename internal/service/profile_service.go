package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/enrollcode"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/repository"
)

var (
	// ErrProfileNotFound indicates no profile exists for the requested ID.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidEnrollmentCode indicates the enrollment code could not be decoded.
	ErrInvalidEnrollmentCode = errors.New("invalid enrollment code")
	// ErrInvalidMood indicates the mood is not part of the palette.
	ErrInvalidMood = errors.New("mood is not in the palette")
	// ErrInvalidDateKey indicates a malformed calendar date key.
	ErrInvalidDateKey = errors.New("invalid date key")
)

// ProfileService manages student profiles and their representative moods.
type ProfileService interface {
	EnsureProfile(ctx context.Context, userID string, req dto.EnsureProfileRequest) (dto.ProfileResponse, error)
	GetProfile(ctx context.Context, userID string) (dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	SetRepresentativeMood(ctx context.Context, userID string, req dto.RepresentativeMoodRequest) (dto.ProfileResponse, error)
}

type profileService struct {
	repo        repository.ProfileRepository
	invalidator SnapshotInvalidator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(repo repository.ProfileRepository, invalidator SnapshotInvalidator, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:        repo,
		invalidator: invalidator,
		validator:   validate,
		logger:      logger.With().Str("component", "profile_service").Logger(),
	}
}

// EnsureProfile returns the stored profile for the authenticated student,
// creating one on first sign-in.
func (s *profileService) EnsureProfile(ctx context.Context, userID string, req dto.EnsureProfileRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	existing, err := s.repo.GetByID(ctx, userID)
	if err == nil {
		return dto.NewProfileResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ProfileResponse{}, err
	}

	profile := models.Profile{
		ID:                  userID,
		Name:                strings.TrimSpace(req.Name),
		Email:               strings.TrimSpace(req.Email),
		RepresentativeMoods: datatypes.JSONMap{},
	}

	if code := strings.TrimSpace(req.EnrollmentCode); code != "" {
		decoded, err := enrollcode.Parse(code)
		if err != nil {
			return dto.ProfileResponse{}, ErrInvalidEnrollmentCode
		}
		applyEnrollment(&profile, decoded)
	}

	if err := s.repo.Create(ctx, &profile); err != nil {
		s.logger.Error().Err(err).Str("profile_id", userID).Msg("failed to create profile")
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Str("profile_id", userID).Msg("profile created")
	s.invalidate(ctx)

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (dto.ProfileResponse, error) {
	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.EnrollmentCode != nil {
		decoded, err := enrollcode.Parse(strings.TrimSpace(*req.EnrollmentCode))
		if err != nil {
			return dto.ProfileResponse{}, ErrInvalidEnrollmentCode
		}
		updates["enrollment_code"] = decoded.Format()
		updates["grade"] = decoded.GradeLabel()
		updates["class_section"] = decoded.SectionLabel()
		updates["roll_number"] = decoded.RollLabel()
	}

	if len(updates) == 0 {
		return s.GetProfile(ctx, userID)
	}

	updated, err := s.repo.Update(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, err
	}

	s.invalidate(ctx)

	return dto.NewProfileResponse(updated), nil
}

// SetRepresentativeMood pins the mood shown on the calendar for one date,
// regardless of which diary entry was written last.
func (s *profileService) SetRepresentativeMood(ctx context.Context, userID string, req dto.RepresentativeMoodRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	if !models.IsValidMood(req.Mood) {
		return dto.ProfileResponse{}, ErrInvalidMood
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return dto.ProfileResponse{}, ErrInvalidDateKey
	}

	if err := s.repo.SetRepresentativeMood(ctx, userID, req.Date, req.Mood); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, err
	}

	s.invalidate(ctx)

	return s.GetProfile(ctx, userID)
}

func (s *profileService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateSnapshot(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate monitor snapshot")
	}
}

func applyEnrollment(profile *models.Profile, code enrollcode.Code) {
	profile.EnrollmentCode = code.Format()
	profile.Grade = code.GradeLabel()
	profile.ClassSection = code.SectionLabel()
	profile.RollNumber = code.RollLabel()
}
