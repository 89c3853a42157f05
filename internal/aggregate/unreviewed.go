package aggregate

import (
	"sort"

	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/normalize"
)

// SortKey selects the comparator for the unreviewed queue.
type SortKey string

// Order selects ascending or descending application of the comparator.
type Order string

const (
	SortByDate  SortKey = "date"
	SortByClass SortKey = "class"

	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// UnreviewedRow is one entry awaiting teacher feedback.
type UnreviewedRow struct {
	EntryID      string            `json:"entry_id"`
	ProfileID    string            `json:"profile_id"`
	Name         string            `json:"name"`
	ClassLabel   string            `json:"class_label"`
	RollNumber   string            `json:"roll_number"`
	Mood         string            `json:"mood"`
	ActivityDate string            `json:"activity_date"`
	Entry        models.DiaryEntry `json:"entry"`

	// Precomputed sort keys. They serialize with the row so re-sorting a
	// snapshot loaded from the cache still has them.
	GradeOrder      int   `json:"grade_order"`
	SectionOrder    int   `json:"section_order"`
	RollOrder       int   `json:"roll_order"`
	SubmittedMillis int64 `json:"submitted_millis"`
}

// BuildUnreviewedIndex filters entries that are not operator-authored and
// carry no (or blank) feedback. The result is unsorted; callers apply
// SortUnreviewed with the key and order the view asked for.
func BuildUnreviewedIndex(in Input) []UnreviewedRow {
	rows := make([]UnreviewedRow, 0)
	for _, entry := range in.Entries {
		if in.isOperator(entry.ProfileID) || entry.HasFeedback() {
			continue
		}

		display := normalize.ResolveDisplay(entry, in.profileFor(entry.ProfileID))
		rows = append(rows, UnreviewedRow{
			EntryID:      entry.ID,
			ProfileID:    entry.ProfileID,
			Name:         display.Name,
			ClassLabel:   display.ClassLabel(),
			RollNumber:   display.RollNumber,
			Mood:         entry.Mood,
			ActivityDate: entry.ActivityDate,
			Entry:        entry,
			GradeOrder:      normalize.NumberOrZero(display.Grade),
			SectionOrder:    normalize.NumberOrZero(display.ClassSection),
			RollOrder:       normalize.NumberOrZero(display.RollNumber),
			SubmittedMillis: normalize.EpochMillis(entry),
		})
	}
	return rows
}

// SortUnreviewed orders rows in place by the selected key. Sorting is
// idempotent and safe to re-run against the live filtered set after every
// mutation.
func SortUnreviewed(rows []UnreviewedRow, key SortKey, order Order) {
	compare := func(a, b UnreviewedRow) int {
		switch key {
		case SortByClass:
			if a.GradeOrder != b.GradeOrder {
				return a.GradeOrder - b.GradeOrder
			}
			if a.SectionOrder != b.SectionOrder {
				return a.SectionOrder - b.SectionOrder
			}
			return a.RollOrder - b.RollOrder
		default:
			switch {
			case a.SubmittedMillis < b.SubmittedMillis:
				return -1
			case a.SubmittedMillis > b.SubmittedMillis:
				return 1
			}
			return 0
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		result := compare(rows[i], rows[j])
		if order == OrderDesc {
			result = -result
		}
		return result < 0
	})
}
