package aggregate

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/mathmood/diary-api/internal/identity"
	"github.com/mathmood/diary-api/internal/models"
)

func testInput(entries []models.DiaryEntry, profiles map[string]models.Profile, operators ...string) Input {
	return Input{
		Entries:    entries,
		Profiles:   profiles,
		Classifier: identity.NewClassifier(operators),
		Logger:     zerolog.Nop(),
	}
}

func entryOn(id, profileID, year, month, day string, submitted time.Time) models.DiaryEntry {
	return models.DiaryEntry{
		ID:            id,
		ProfileID:     profileID,
		ActivityYear:  year,
		ActivityMonth: month,
		ActivityDay:   day,
		SubmittedAt:   submitted,
		Mood:          "😊",
	}
}

func TestDateKeyZeroPadsValidTriples(t *testing.T) {
	entry := entryOn("e1", "p1", "2026", "3", "9", time.Now())
	key, ok := DateKey(entry)
	require.True(t, ok)
	require.Equal(t, "2026-03-09", key)

	entry = entryOn("e2", "p1", " 2026 ", "12", "31", time.Now())
	key, ok = DateKey(entry)
	require.True(t, ok)
	require.Equal(t, "2026-12-31", key)
}

func TestDateKeyRejectsInvalidComponents(t *testing.T) {
	cases := []models.DiaryEntry{
		entryOn("a", "p", "", "03", "09", time.Time{}),
		entryOn("b", "p", "2026", "abc", "09", time.Time{}),
		entryOn("c", "p", "1999", "03", "09", time.Time{}),
		entryOn("d", "p", "2101", "03", "09", time.Time{}),
		entryOn("e", "p", "2026", "13", "09", time.Time{}),
		entryOn("f", "p", "2026", "00", "09", time.Time{}),
		entryOn("g", "p", "2026", "03", "32", time.Time{}),
	}
	for _, entry := range cases {
		_, ok := DateKey(entry)
		require.False(t, ok, entry.ID)
	}
}

func TestDateIndexExcludesInvalidAndOrdersDaysDescending(t *testing.T) {
	now := time.Now()
	entries := []models.DiaryEntry{
		entryOn("e1", "p1", "2026", "03", "09", now),
		entryOn("e2", "p1", "2026", "03", "10", now),
		entryOn("e3", "p2", "2025", "12", "31", now),
		entryOn("bad", "p2", "1999", "01", "01", now),
	}

	index := BuildDateIndex(testInput(entries, nil))
	require.Len(t, index.Days, 3)
	require.Equal(t, "2026-03-10", index.Days[0].Key)
	require.Equal(t, "2026-03-09", index.Days[1].Key)
	require.Equal(t, "2025-12-31", index.Days[2].Key)
}

func TestDateIndexMostRecentEntryRepresentsTheDay(t *testing.T) {
	base := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	early := entryOn("early", "p1", "2026", "03", "09", base)
	early.Mood = "😢"
	late := entryOn("late", "p1", "2026", "03", "09", base.Add(2*time.Hour))
	late.Mood = "😄"

	index := BuildDateIndex(testInput([]models.DiaryEntry{early, late}, nil))
	require.Len(t, index.Days, 1)
	require.Len(t, index.Days[0].Students, 1)

	student := index.Days[0].Students[0]
	require.Equal(t, "late", student.Representative.ID)
	require.Equal(t, "😄", student.CalendarMood)
	require.Len(t, student.History, 2)
	require.Equal(t, 2, index.Days[0].Count)
}

func TestDateIndexRepresentativeMoodWinsForCalendarDisplay(t *testing.T) {
	base := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	early := entryOn("early", "p1", "2026", "03", "09", base)
	early.Mood = "😢"
	late := entryOn("late", "p1", "2026", "03", "09", base.Add(time.Hour))
	late.Mood = "😄"

	profiles := map[string]models.Profile{
		"p1": {
			ID:                  "p1",
			Name:                "Jiwoo",
			RepresentativeMoods: datatypes.JSONMap{"2026-03-09": "😢"},
		},
	}

	index := BuildDateIndex(testInput([]models.DiaryEntry{early, late}, profiles))
	student := index.Days[0].Students[0]

	// The picked mood wins for calendar display, but the most recent entry
	// is still the one the day cell opens.
	require.Equal(t, "😢", student.CalendarMood)
	require.Equal(t, "late", student.Representative.ID)
}

func TestClassIndexTwoPassKeepsProfilesWithoutEntries(t *testing.T) {
	now := time.Now()
	entry := entryOn("e1", "p1", "2026", "03", "09", now)
	entry.OwnerGrade = "1"
	entry.OwnerClassSection = "02"

	profiles := map[string]models.Profile{
		"p1": {ID: "p1", Name: "Writer", Grade: "1", ClassSection: "02", RollNumber: "05", TokenBalance: 2},
		"p2": {ID: "p2", Name: "Silent", Grade: "1", ClassSection: "02", RollNumber: "01"},
		"p3": {ID: "p3", Name: "Other Class", Grade: "2", ClassSection: "01", RollNumber: "03"},
		"p4": {ID: "p4", Name: "No Class Info"},
	}

	index := BuildClassIndex(testInput([]models.DiaryEntry{entry}, profiles))
	require.Len(t, index.Classes, 2)
	require.Equal(t, "1-02", index.Classes[0].Key)
	require.Equal(t, "2-01", index.Classes[1].Key)

	first := index.Classes[0]
	require.Len(t, first.Students, 2)
	require.Equal(t, "Silent", first.Students[0].Name, "roll 01 sorts before roll 05")
	require.Empty(t, first.Students[0].Entries)
	require.Equal(t, "Writer", first.Students[1].Name)
	require.Len(t, first.Students[1].Entries, 1)
	require.Equal(t, 2, first.Students[1].TokenBalance)
}

func TestClassIndexLiveProfileWinsOverEntryCache(t *testing.T) {
	now := time.Now()
	entry := entryOn("e1", "p1", "2026", "03", "09", now)
	entry.OwnerName = "Stale Name"
	entry.OwnerGrade = "1"
	entry.OwnerClassSection = "02"
	entry.OwnerRollNumber = "09"

	profiles := map[string]models.Profile{
		"p1": {ID: "p1", Name: "Edited Name", Grade: "3", ClassSection: "07", RollNumber: "12"},
	}

	index := BuildClassIndex(testInput([]models.DiaryEntry{entry}, profiles))
	require.Len(t, index.Classes, 1)
	require.Equal(t, "3-07", index.Classes[0].Key, "edit moves the student to the live class")
	require.Equal(t, "Edited Name", index.Classes[0].Students[0].Name)
	require.Equal(t, "12", index.Classes[0].Students[0].RollNumber)
}

func TestClassIndexBucketOrderIsNumeric(t *testing.T) {
	profiles := map[string]models.Profile{
		"a": {ID: "a", Name: "A", Grade: "10", ClassSection: "01"},
		"b": {ID: "b", Name: "B", Grade: "2", ClassSection: "01"},
		"c": {ID: "c", Name: "C", Grade: "2", ClassSection: "10"},
		"d": {ID: "d", Name: "D", Grade: "2", ClassSection: "02"},
	}

	index := BuildClassIndex(testInput(nil, profiles))
	keys := make([]string, 0, len(index.Classes))
	for _, class := range index.Classes {
		keys = append(keys, class.Key)
	}
	require.Equal(t, []string{"2-01", "2-02", "2-10", "10-01"}, keys)
}

func TestClassIndexUnparseableRollSortsLast(t *testing.T) {
	profiles := map[string]models.Profile{
		"a": {ID: "a", Name: "NoRoll", Grade: "1", ClassSection: "01"},
		"b": {ID: "b", Name: "Ninety", Grade: "1", ClassSection: "01", RollNumber: "90"},
		"c": {ID: "c", Name: "First", Grade: "1", ClassSection: "01", RollNumber: "01"},
	}

	index := BuildClassIndex(testInput(nil, profiles))
	students := index.Classes[0].Students
	require.Equal(t, "First", students[0].Name)
	require.Equal(t, "Ninety", students[1].Name)
	require.Equal(t, "NoRoll", students[2].Name)
}

func TestClassIndexEqualRollTieBreakIsStableAcrossRebuilds(t *testing.T) {
	// All three rolls are unparseable, so only the fixed encounter order
	// separates them.
	profiles := map[string]models.Profile{
		"p-c": {ID: "p-c", Name: "Gamma", Grade: "1", ClassSection: "01"},
		"p-a": {ID: "p-a", Name: "Alpha", Grade: "1", ClassSection: "01"},
		"p-b": {ID: "p-b", Name: "Beta", Grade: "1", ClassSection: "01"},
	}

	first := BuildClassIndex(testInput(nil, profiles))
	for i := 0; i < 20; i++ {
		rebuild := BuildClassIndex(testInput(nil, profiles))
		require.Equal(t, first, rebuild)
	}

	names := make([]string, 0, 3)
	for _, student := range first.Classes[0].Students {
		names = append(names, student.Name)
	}
	require.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names)
}

func TestUnreviewedFiltersFeedbackAndOperators(t *testing.T) {
	now := time.Now()
	pending := entryOn("pending", "p1", "2026", "03", "09", now)
	reviewed := entryOn("reviewed", "p1", "2026", "03", "09", now)
	reviewed.Feedback = "nice work"
	blank := entryOn("blank", "p2", "2026", "03", "09", now)
	blank.Feedback = "   "
	operator := entryOn("op", "teacher-1", "2026", "03", "09", now)

	rows := BuildUnreviewedIndex(testInput(
		[]models.DiaryEntry{pending, reviewed, blank, operator},
		nil,
		"teacher-1",
	))

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.EntryID)
	}
	require.ElementsMatch(t, []string{"pending", "blank"}, ids)
}

func TestUnreviewedSortByDate(t *testing.T) {
	older := entryOn("older", "p1", "2026", "03", "08", time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC))
	newer := entryOn("newer", "p1", "2026", "03", "09", time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC))
	missing := entryOn("missing", "p2", "2026", "03", "07", time.Time{})

	rows := BuildUnreviewedIndex(testInput([]models.DiaryEntry{newer, older, missing}, nil))

	SortUnreviewed(rows, SortByDate, OrderAsc)
	require.Equal(t, "missing", rows[0].EntryID, "missing timestamp sorts as epoch zero")
	require.Equal(t, "older", rows[1].EntryID)
	require.Equal(t, "newer", rows[2].EntryID)

	SortUnreviewed(rows, SortByDate, OrderDesc)
	require.Equal(t, "newer", rows[0].EntryID)
	require.Equal(t, "missing", rows[2].EntryID)
}

func TestUnreviewedSortByClassGradeWinsOverSectionAndRoll(t *testing.T) {
	gradeTwo := entryOn("grade2", "p1", "2026", "03", "09", time.Now())
	gradeTwo.OwnerGrade = "2"
	gradeTwo.OwnerClassSection = "3"
	gradeTwo.OwnerRollNumber = "5"

	gradeOne := entryOn("grade1", "p2", "2026", "03", "09", time.Now())
	gradeOne.OwnerGrade = "1"
	gradeOne.OwnerClassSection = "9"
	gradeOne.OwnerRollNumber = "1"

	rows := BuildUnreviewedIndex(testInput([]models.DiaryEntry{gradeTwo, gradeOne}, nil))
	SortUnreviewed(rows, SortByClass, OrderAsc)
	require.Equal(t, "grade1", rows[0].EntryID)
	require.Equal(t, "grade2", rows[1].EntryID)
}

func TestUnreviewedSortIsIdempotent(t *testing.T) {
	entries := []models.DiaryEntry{
		entryOn("a", "p1", "2026", "03", "09", time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)),
		entryOn("b", "p2", "2026", "03", "08", time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)),
		entryOn("c", "p3", "2026", "03", "07", time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)),
	}
	rows := BuildUnreviewedIndex(testInput(entries, nil))

	SortUnreviewed(rows, SortByDate, OrderDesc)
	first := make([]string, 0, len(rows))
	for _, row := range rows {
		first = append(first, row.EntryID)
	}

	SortUnreviewed(rows, SortByDate, OrderDesc)
	second := make([]string, 0, len(rows))
	for _, row := range rows {
		second = append(second, row.EntryID)
	}
	require.Equal(t, first, second)
}

func TestRankingOrdersByBalanceAndFlagsMedals(t *testing.T) {
	profiles := map[string]models.Profile{
		"p1": {ID: "p1", Name: "One", TokenBalance: 5},
		"p2": {ID: "p2", Name: "Two", TokenBalance: 9},
		"p3": {ID: "p3", Name: "Three", TokenBalance: 9},
		"p4": {ID: "p4", Name: "Four", TokenBalance: 1},
		"p5": {ID: "p5", Name: "Five", TokenBalance: 0},
	}

	rows := BuildRankingIndex(testInput(nil, profiles))
	require.Len(t, rows, 5)
	require.Equal(t, 9, rows[0].TokenBalance)
	require.Equal(t, 9, rows[1].TokenBalance)
	require.Equal(t, "Two", rows[0].Name, "ties keep encounter order")
	require.Equal(t, "Three", rows[1].Name)
	require.Equal(t, 5, rows[2].TokenBalance)

	for i, row := range rows {
		require.Equal(t, i+1, row.Position)
		require.Equal(t, i < 3, row.Medal)
	}
}

func TestOperatorProfilesAndEntriesExcludedEverywhere(t *testing.T) {
	now := time.Now()
	opEntry := entryOn("op-entry", "teacher-1", "2026", "03", "09", now)
	opEntry.OwnerGrade = "1"
	opEntry.OwnerClassSection = "01"

	profiles := map[string]models.Profile{
		"teacher-1": {ID: "teacher-1", Name: "Teacher", Grade: "1", ClassSection: "01", TokenBalance: 99},
		"p1":        {ID: "p1", Name: "Student", Grade: "1", ClassSection: "01", RollNumber: "01"},
	}

	in := testInput([]models.DiaryEntry{opEntry}, profiles, "teacher-1")
	snapshot := BuildSnapshot(in)

	require.Empty(t, snapshot.Dates.Days)
	require.Empty(t, snapshot.Unreviewed)

	require.Len(t, snapshot.Ranking, 1)
	require.Equal(t, "p1", snapshot.Ranking[0].ProfileID)

	require.Len(t, snapshot.Classes.Classes, 1)
	require.Len(t, snapshot.Classes.Classes[0].Students, 1)
	require.Equal(t, "p1", snapshot.Classes.Classes[0].Students[0].ProfileID)
}

func TestEmptyInputYieldsDefinedEmptyState(t *testing.T) {
	snapshot := BuildSnapshot(testInput(nil, nil))
	require.Empty(t, snapshot.Dates.Days)
	require.Empty(t, snapshot.Classes.Classes)
	require.Empty(t, snapshot.Unreviewed)
	require.Empty(t, snapshot.Ranking)
}
