package aggregate

import (
	"fmt"
	"sort"

	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/normalize"
)

// Valid ranges for decomposed activity date components.
const (
	minYear = 2000
	maxYear = 2100
)

// DateIndex groups entries by zero-padded YYYY-MM-DD key, newest day first.
type DateIndex struct {
	Days []DateBucket `json:"days"`
}

// DateBucket holds everything written on one activity date.
type DateBucket struct {
	Key      string        `json:"key"`
	Students []DateStudent `json:"students"`
	Count    int           `json:"count"`
}

// DateStudent is one student's presence on a day. Representative is the most
// recently time-stamped entry and is the one a day cell opens; CalendarMood
// may diverge from it when the profile owner picked a representative mood
// for the day.
type DateStudent struct {
	ProfileID      string              `json:"profile_id"`
	Name           string              `json:"name"`
	ClassLabel     string              `json:"class_label"`
	RollNumber     string              `json:"roll_number"`
	CalendarMood   string              `json:"calendar_mood"`
	HasFeedback    bool                `json:"has_feedback"`
	Representative models.DiaryEntry   `json:"representative"`
	History        []models.DiaryEntry `json:"history"`
}

// DateKey builds the zero-padded date key for an entry, rejecting blank,
// non-numeric, or out-of-range components.
func DateKey(entry models.DiaryEntry) (string, bool) {
	year, ok := normalize.ParseComponent(entry.ActivityYear)
	if !ok {
		return "", false
	}
	month, ok := normalize.ParseComponent(entry.ActivityMonth)
	if !ok {
		return "", false
	}
	day, ok := normalize.ParseComponent(entry.ActivityDay)
	if !ok {
		return "", false
	}

	if year < minYear || year > maxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// BuildDateIndex groups non-operator entries by activity date. Entries with
// an unusable date are skipped with a warning; an empty input yields an
// index with no days.
func BuildDateIndex(in Input) DateIndex {
	byDate := make(map[string][]models.DiaryEntry)

	for _, entry := range in.Entries {
		if in.isOperator(entry.ProfileID) {
			continue
		}
		key, ok := DateKey(entry)
		if !ok {
			in.Logger.Warn().
				Str("entry_id", entry.ID).
				Str("year", entry.ActivityYear).
				Str("month", entry.ActivityMonth).
				Str("day", entry.ActivityDay).
				Msg("skipping entry with unusable activity date")
			continue
		}
		byDate[key] = append(byDate[key], entry)
	}

	keys := make([]string, 0, len(byDate))
	for key := range byDate {
		keys = append(keys, key)
	}
	// Zero-padded keys make lexicographic order equal chronological order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	days := make([]DateBucket, 0, len(keys))
	for _, key := range keys {
		bucket := DateBucket{Key: key, Students: buildDateStudents(in, key, byDate[key])}
		for _, student := range bucket.Students {
			bucket.Count += len(student.History)
		}
		days = append(days, bucket)
	}

	return DateIndex{Days: days}
}

func buildDateStudents(in Input, dateKey string, entries []models.DiaryEntry) []DateStudent {
	grouped := make(map[string][]models.DiaryEntry)
	order := make([]string, 0)
	for _, entry := range entries {
		if entry.ProfileID == "" {
			in.Logger.Warn().Str("entry_id", entry.ID).Msg("skipping entry without owning profile")
			continue
		}
		if _, seen := grouped[entry.ProfileID]; !seen {
			order = append(order, entry.ProfileID)
		}
		grouped[entry.ProfileID] = append(grouped[entry.ProfileID], entry)
	}

	students := make([]DateStudent, 0, len(order))
	for _, profileID := range order {
		history := grouped[profileID]
		sort.SliceStable(history, func(i, j int) bool {
			return normalize.EpochMillis(history[i]) > normalize.EpochMillis(history[j])
		})

		profile := in.profileFor(profileID)
		display := normalize.ResolveDisplay(history[0], profile)

		// The representative mood wins for calendar display, but the most
		// recent entry still wins for which entry opens on click.
		mood := history[0].Mood
		if profile != nil {
			if picked := profile.RepresentativeMoodFor(dateKey); picked != "" {
				mood = picked
			}
		}

		students = append(students, DateStudent{
			ProfileID:      profileID,
			Name:           display.Name,
			ClassLabel:     display.ClassLabel(),
			RollNumber:     display.RollNumber,
			CalendarMood:   mood,
			HasFeedback:    history[0].HasFeedback(),
			Representative: history[0],
			History:        history,
		})
	}

	sort.SliceStable(students, func(i, j int) bool {
		if students[i].ClassLabel != students[j].ClassLabel {
			return students[i].ClassLabel < students[j].ClassLabel
		}
		return normalize.RollOrSentinel(students[i].RollNumber) < normalize.RollOrSentinel(students[j].RollNumber)
	})

	return students
}
