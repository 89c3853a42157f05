package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/aggregate"
	"github.com/mathmood/diary-api/internal/identity"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/repository"
)

func seedMonitorData(t *testing.T, db *gorm.DB) {
	t.Helper()

	profiles := []models.Profile{
		{ID: "student-1", Name: "Aiko", Grade: "1", ClassSection: "1", RollNumber: "5", TokenBalance: 3},
		{ID: "student-2", Name: "Ben", Grade: "1", ClassSection: "2", RollNumber: "1", TokenBalance: 7},
		{ID: "operator-1", Name: "Teacher", TokenBalance: 99},
	}
	for i := range profiles {
		require.NoError(t, db.Create(&profiles[i]).Error)
	}

	entries := []models.DiaryEntry{
		{
			ID: "e1", ProfileID: "student-1", Mood: models.MoodPalette[0],
			SubmittedAt:  time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC),
			ActivityDate: "2026-03-07", ActivityYear: "2026", ActivityMonth: "03", ActivityDay: "07",
		},
		{
			ID: "e2", ProfileID: "student-2", Mood: models.MoodPalette[1],
			SubmittedAt:  time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC),
			ActivityDate: "2026-03-06", ActivityYear: "2026", ActivityMonth: "03", ActivityDay: "06",
			Feedback: "nice work",
		},
		{
			ID: "e3", ProfileID: "operator-1", Mood: models.MoodPalette[2],
			SubmittedAt:  time.Date(2026, 3, 7, 11, 0, 0, 0, time.UTC),
			ActivityDate: "2026-03-07", ActivityYear: "2026", ActivityMonth: "03", ActivityDay: "07",
		},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}
}

func newMonitorService(t *testing.T, db *gorm.DB) (*monitorService, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	svc := NewMonitorService(
		repository.NewDiaryEntryRepository(db),
		repository.NewProfileRepository(db),
		identity.NewClassifier([]string{"operator-1"}),
		client,
		time.Minute,
		zerolog.Nop(),
	).(*monitorService)

	return svc, mini
}

func TestMonitorServiceSnapshotExcludesOperatorsAndCaches(t *testing.T) {
	db := newTestDB(t)
	seedMonitorData(t, db)
	svc, _ := newMonitorService(t, db)

	first, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	require.Len(t, first.Snapshot.Dates.Days, 2)
	require.Equal(t, "2026-03-07", first.Snapshot.Dates.Days[0].Key)
	for _, day := range first.Snapshot.Dates.Days {
		for _, student := range day.Students {
			require.NotEqual(t, "operator-1", student.ProfileID)
		}
	}

	require.Len(t, first.Snapshot.Unreviewed, 1)
	require.Equal(t, "e1", first.Snapshot.Unreviewed[0].EntryID)

	require.Len(t, first.Snapshot.Ranking, 2)
	require.Equal(t, "student-2", first.Snapshot.Ranking[0].ProfileID)

	second, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.True(t, second.CacheHit)
}

func TestMonitorServiceInvalidateForcesRebuild(t *testing.T) {
	db := newTestDB(t)
	seedMonitorData(t, db)
	svc, _ := newMonitorService(t, db)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateSnapshot(context.Background()))

	rebuilt, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.False(t, rebuilt.CacheHit)
}

func TestMonitorServiceUnreviewedSortFallback(t *testing.T) {
	db := newTestDB(t)
	seedMonitorData(t, db)

	require.NoError(t, db.Create(&models.DiaryEntry{
		ID: "e4", ProfileID: "student-2", Mood: models.MoodPalette[3],
		SubmittedAt:  time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC),
		ActivityDate: "2026-03-08", ActivityYear: "2026", ActivityMonth: "03", ActivityDay: "08",
	}).Error)

	svc, _ := newMonitorService(t, db)

	rows, err := svc.Unreviewed(context.Background(), "bogus", "bogus")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// default is date descending
	require.Equal(t, "e4", rows[0].EntryID)

	asc, err := svc.Unreviewed(context.Background(), string(aggregate.SortByDate), string(aggregate.OrderAsc))
	require.NoError(t, err)
	require.Equal(t, "e1", asc[0].EntryID)
}

func TestMonitorServiceUnreviewedSortSurvivesCacheHit(t *testing.T) {
	db := newTestDB(t)
	seedMonitorData(t, db)

	require.NoError(t, db.Create(&models.DiaryEntry{
		ID: "e4", ProfileID: "student-2", Mood: models.MoodPalette[3],
		SubmittedAt:  time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC),
		ActivityDate: "2026-03-08", ActivityYear: "2026", ActivityMonth: "03", ActivityDay: "08",
	}).Error)

	svc, _ := newMonitorService(t, db)

	fresh, err := svc.Unreviewed(context.Background(), string(aggregate.SortByDate), string(aggregate.OrderDesc))
	require.NoError(t, err)
	require.Equal(t, "e4", fresh[0].EntryID)

	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.True(t, snapshot.CacheHit)

	// The sort keys must round-trip through the cached snapshot.
	cached, err := svc.Unreviewed(context.Background(), string(aggregate.SortByDate), string(aggregate.OrderDesc))
	require.NoError(t, err)
	require.Equal(t, "e4", cached[0].EntryID)

	byClass, err := svc.Unreviewed(context.Background(), string(aggregate.SortByClass), string(aggregate.OrderAsc))
	require.NoError(t, err)
	require.Equal(t, "e1", byClass[0].EntryID)
	require.Equal(t, "e4", byClass[1].EntryID)
}

func TestMonitorServiceDatesAndDateDetail(t *testing.T) {
	db := newTestDB(t)
	seedMonitorData(t, db)
	svc, _ := newMonitorService(t, db)

	dates, err := svc.Dates(context.Background())
	require.NoError(t, err)
	require.Len(t, dates.Days, 2)

	bucket, err := svc.DateDetail(context.Background(), "2026-03-07")
	require.NoError(t, err)
	require.Equal(t, 1, bucket.Count)

	_, err = svc.DateDetail(context.Background(), "1999-01-01")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestMonitorServiceEntryDetailDisplayFallback(t *testing.T) {
	db := newTestDB(t)

	// Entry whose owner profile no longer exists; cached fields must label it.
	require.NoError(t, db.Create(&models.DiaryEntry{
		ID: "orphan", ProfileID: "gone",
		OwnerName: "Cached Name", OwnerGrade: "2", OwnerClassSection: "3",
		Mood:         models.MoodPalette[0],
		SubmittedAt:  time.Now(),
		ActivityDate: "2026-03-07", ActivityYear: "2026", ActivityMonth: "03", ActivityDay: "07",
	}).Error)

	svc, _ := newMonitorService(t, db)

	entry, display, err := svc.EntryDetail(context.Background(), "orphan")
	require.NoError(t, err)
	require.Equal(t, "orphan", entry.ID)
	require.Equal(t, "Cached Name", display.Name)
	require.Equal(t, "2-3", display.ClassLabel())

	_, _, err = svc.EntryDetail(context.Background(), "missing")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestMonitorServiceClassDetail(t *testing.T) {
	db := newTestDB(t)
	seedMonitorData(t, db)
	svc, _ := newMonitorService(t, db)

	class, err := svc.ClassDetail(context.Background(), "1-2")
	require.NoError(t, err)
	require.Equal(t, "1", class.Grade)
	require.Equal(t, "2", class.Section)
	require.Len(t, class.Students, 1)
	require.Equal(t, "Ben", class.Students[0].Name)

	_, err = svc.ClassDetail(context.Background(), "9-9")
	require.ErrorIs(t, err, ErrClassNotFound)
}
