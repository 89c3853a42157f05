package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/normalize"
	"github.com/mathmood/diary-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads a demo classroom so the monitoring views have data to
// show during development, and imports legacy entry exports.
type SeedService interface {
	SeedDemo(ctx context.Context, token string) (dto.SeedResponse, error)
	ImportEntries(ctx context.Context, token string, documents []map[string]any) (dto.ImportEntriesResponse, error)
}

type seedService struct {
	profiles    repository.ProfileRepository
	entries     repository.DiaryEntryRepository
	invalidator SnapshotInvalidator
	enabled     bool
	token       string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSeedService constructs a seeding service.
func NewSeedService(
	profiles repository.ProfileRepository,
	entries repository.DiaryEntryRepository,
	invalidator SnapshotInvalidator,
	enabled bool,
	token string,
	logger zerolog.Logger,
) SeedService {
	return &seedService{
		profiles:    profiles,
		entries:     entries,
		invalidator: invalidator,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
		now:         time.Now,
	}
}

func (s *seedService) SeedDemo(ctx context.Context, token string) (dto.SeedResponse, error) {
	if !s.enabled {
		return dto.SeedResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedResponse{}, ErrSeedUnauthorized
	}

	now := s.now()
	profiles := demoProfiles()
	entries := demoEntries(profiles, now)

	var profileCount, entryCount int64
	for i := range profiles {
		if _, err := s.profiles.GetByID(ctx, profiles[i].ID); err == nil {
			continue
		}
		if err := s.profiles.Create(ctx, &profiles[i]); err != nil {
			return dto.SeedResponse{}, err
		}
		profileCount++
	}

	for i := range entries {
		if _, err := s.entries.GetByID(ctx, entries[i].ID); err == nil {
			continue
		}
		if err := s.entries.Create(ctx, &entries[i]); err != nil {
			return dto.SeedResponse{}, err
		}
		entryCount++
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateSnapshot(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate monitor snapshot")
		}
	}

	s.logger.Info().
		Int64("profiles", profileCount).
		Int64("entries", entryCount).
		Msg("demo classroom seeded")

	return dto.SeedResponse{Profiles: profileCount, Entries: entryCount}, nil
}

// ImportEntries stores raw entry documents exported from the predecessor
// app. Each document passes through the normalizer, so all three historical
// shapes are accepted; documents without an identifier and ids already
// present are skipped rather than aborting the batch.
func (s *seedService) ImportEntries(ctx context.Context, token string, documents []map[string]any) (dto.ImportEntriesResponse, error) {
	if !s.enabled {
		return dto.ImportEntriesResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.ImportEntriesResponse{}, ErrSeedUnauthorized
	}

	var imported, skipped int64
	for _, document := range documents {
		entry, err := normalize.Entry(document)
		if err != nil {
			skipped++
			s.logger.Warn().Err(err).Msg("skipping legacy document")
			continue
		}

		if _, err := s.entries.GetByID(ctx, entry.ID); err == nil {
			skipped++
			continue
		}
		if err := s.entries.Create(ctx, &entry); err != nil {
			return dto.ImportEntriesResponse{}, err
		}
		imported++
	}

	if imported > 0 && s.invalidator != nil {
		if err := s.invalidator.InvalidateSnapshot(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate monitor snapshot")
		}
	}

	s.logger.Info().
		Int64("imported", imported).
		Int64("skipped", skipped).
		Msg("legacy entries imported")

	return dto.ImportEntriesResponse{Imported: imported, Skipped: skipped}, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return constantTimeEqual(expected, strings.TrimSpace(token))
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}

func demoProfiles() []models.Profile {
	names := []struct {
		id, name, code string
	}{
		{"seed-aiko", "Aiko Tanaka", "10105"},
		{"seed-ben", "Ben Carter", "10112"},
		{"seed-chloe", "Chloe Kim", "10207"},
		{"seed-daniel", "Daniel Ortiz", "20118"},
		{"seed-emi", "Emi Sato", "20203"},
	}

	profiles := make([]models.Profile, 0, len(names))
	for _, n := range names {
		profiles = append(profiles, models.Profile{
			ID:                  n.id,
			Name:                n.name,
			Email:               fmt.Sprintf("%s@example.edu", n.id),
			EnrollmentCode:      n.code,
			Grade:               string(n.code[0]),
			ClassSection:        strings.TrimLeft(n.code[1:3], "0"),
			RollNumber:          strings.TrimLeft(n.code[3:5], "0"),
			RepresentativeMoods: datatypes.JSONMap{},
		})
	}
	return profiles
}

func demoEntries(profiles []models.Profile, now time.Time) []models.DiaryEntry {
	reflections := []string{
		"Finally understood how to complete the square today.",
		"Got stuck on the word problems again but asked for help.",
		"Quadratic formula practice went better than last week.",
		"I keep mixing up the signs when expanding brackets.",
		"Did every problem on the worksheet without checking answers!",
	}

	entries := make([]models.DiaryEntry, 0, len(profiles)*2)
	for i, profile := range profiles {
		for day := 0; day < 2; day++ {
			at := now.AddDate(0, 0, -day).Add(-time.Duration(i) * time.Minute)
			entry := models.DiaryEntry{
				ID:        fmt.Sprintf("seed-entry-%s-%d", profile.ID, day),
				ProfileID: profile.ID,

				OwnerName:           profile.Name,
				OwnerEmail:          profile.Email,
				OwnerEnrollmentCode: profile.EnrollmentCode,
				OwnerGrade:          profile.Grade,
				OwnerClassSection:   profile.ClassSection,
				OwnerRollNumber:     profile.RollNumber,

				SubmittedAt:  at,
				Mood:         models.MoodPalette[(i+day)%len(models.MoodPalette)],
				Reflection:   reflections[(i+day)%len(reflections)],
				StudyHours:   (i + day) % 3,
				StudyMinutes: (i * 10) % 60,
			}
			stampActivity(&entry, at)
			entries = append(entries, entry)
		}
	}
	return entries
}
