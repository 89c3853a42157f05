package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/repository"
)

func newProfileService(t *testing.T) (ProfileService, *fakeInvalidator, repository.ProfileRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewProfileRepository(db)
	invalidator := &fakeInvalidator{}
	return NewProfileService(repo, invalidator, newTestValidator(), zerolog.Nop()), invalidator, repo
}

func TestProfileServiceEnsureProfileCreatesOnce(t *testing.T) {
	svc, invalidator, _ := newProfileService(t)

	created, err := svc.EnsureProfile(context.Background(), "student-1", dto.EnsureProfileRequest{
		Name:           "Aiko Tanaka",
		Email:          "aiko@example.edu",
		EnrollmentCode: "10105",
	})
	require.NoError(t, err)
	require.Equal(t, "student-1", created.ID)
	require.Equal(t, "1", created.Grade)
	require.Equal(t, "1", created.ClassSection)
	require.Equal(t, "5", created.RollNumber)
	require.EqualValues(t, 1, invalidator.count())

	// Second call returns the stored profile untouched.
	again, err := svc.EnsureProfile(context.Background(), "student-1", dto.EnsureProfileRequest{Name: "Renamed"})
	require.NoError(t, err)
	require.Equal(t, "Aiko Tanaka", again.Name)
	require.EqualValues(t, 1, invalidator.count())
}

func TestProfileServiceEnsureProfileRejectsBadCode(t *testing.T) {
	svc, _, _ := newProfileService(t)

	_, err := svc.EnsureProfile(context.Background(), "student-1", dto.EnsureProfileRequest{
		EnrollmentCode: "1010x",
	})
	require.Error(t, err)
}

func TestProfileServiceUpdateDecodesEnrollmentCode(t *testing.T) {
	svc, _, repo := newProfileService(t)
	require.NoError(t, repo.Create(context.Background(), &models.Profile{ID: "student-1", Name: "Old"}))

	code := "30901"
	updated, err := svc.UpdateProfile(context.Background(), "student-1", dto.ProfileUpdateRequest{
		EnrollmentCode: &code,
	})
	require.NoError(t, err)
	require.Equal(t, "3", updated.Grade)
	require.Equal(t, "9", updated.ClassSection)
	require.Equal(t, "1", updated.RollNumber)
	require.Equal(t, "30901", updated.EnrollmentCode)
}

func TestProfileServiceUpdateUnknownProfile(t *testing.T) {
	svc, _, _ := newProfileService(t)

	name := "Nobody"
	_, err := svc.UpdateProfile(context.Background(), "missing", dto.ProfileUpdateRequest{Name: &name})
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileServiceSetRepresentativeMood(t *testing.T) {
	svc, invalidator, repo := newProfileService(t)
	require.NoError(t, repo.Create(context.Background(), &models.Profile{ID: "student-1"}))

	updated, err := svc.SetRepresentativeMood(context.Background(), "student-1", dto.RepresentativeMoodRequest{
		Date: "2026-03-07",
		Mood: models.MoodPalette[4],
	})
	require.NoError(t, err)
	require.Equal(t, models.MoodPalette[4], updated.RepresentativeMoods["2026-03-07"])
	require.EqualValues(t, 1, invalidator.count())

	_, err = svc.SetRepresentativeMood(context.Background(), "student-1", dto.RepresentativeMoodRequest{
		Date: "2026-03-07",
		Mood: "not-a-glyph",
	})
	require.ErrorIs(t, err, ErrInvalidMood)

	_, err = svc.SetRepresentativeMood(context.Background(), "student-1", dto.RepresentativeMoodRequest{
		Date: "07-03-2026",
		Mood: models.MoodPalette[0],
	})
	require.ErrorIs(t, err, ErrInvalidDateKey)
}
