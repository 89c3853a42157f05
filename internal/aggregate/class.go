package aggregate

import (
	"fmt"
	"sort"

	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/normalize"
)

// ClassIndex groups profiles into class buckets keyed grade-section.
type ClassIndex struct {
	Classes []ClassBucket `json:"classes"`
}

// ClassBucket is one grade/section roster.
type ClassBucket struct {
	Key      string         `json:"key"`
	Grade    string         `json:"grade"`
	Section  string         `json:"section"`
	Students []ClassStudent `json:"students"`
}

// ClassStudent carries the display fields shown on the roster plus the
// student's entries for drill-down. A student with no entries still appears
// when their profile carries class info.
type ClassStudent struct {
	ProfileID      string              `json:"profile_id"`
	Name           string              `json:"name"`
	EnrollmentCode string              `json:"enrollment_code"`
	RollNumber     string              `json:"roll_number"`
	TokenBalance   int                 `json:"token_balance"`
	Entries        []models.DiaryEntry `json:"entries"`
}

// BuildClassIndex builds the roster in two passes so profiles without
// entries are not lost: pass 1 walks entries and upserts their owners with
// latest-wins display fields, pass 2 walks all non-operator profiles and
// fills in anyone pass 1 missed.
func BuildClassIndex(in Input) ClassIndex {
	type bucket struct {
		grade    string
		section  string
		students map[string]*ClassStudent
		order    []string
	}
	buckets := make(map[string]*bucket)

	ensureBucket := func(grade, section string) *bucket {
		key := grade + "-" + section
		b, ok := buckets[key]
		if !ok {
			b = &bucket{grade: grade, section: section, students: make(map[string]*ClassStudent)}
			buckets[key] = b
		}
		return b
	}

	for _, entry := range in.Entries {
		if entry.ProfileID == "" || in.isOperator(entry.ProfileID) {
			continue
		}

		profile := in.profileFor(entry.ProfileID)
		display := normalize.ResolveDisplay(entry, profile)
		if display.Grade == "" || display.ClassSection == "" {
			continue
		}

		b := ensureBucket(display.Grade, display.ClassSection)
		student, ok := b.students[entry.ProfileID]
		if !ok {
			student = &ClassStudent{ProfileID: entry.ProfileID}
			b.students[entry.ProfileID] = student
			b.order = append(b.order, entry.ProfileID)
		}

		// Latest wins: repeated upserts converge on the current profile state.
		student.Name = display.Name
		student.EnrollmentCode = display.EnrollmentCode
		student.RollNumber = display.RollNumber
		if profile != nil {
			student.TokenBalance = profile.TokenBalance
		}
		student.Entries = append(student.Entries, entry)
	}

	// Fixed iteration order keeps the equal-roll tie-break stable across
	// rebuilds.
	ids := make([]string, 0, len(in.Profiles))
	for id := range in.Profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		profile := in.Profiles[id]
		if in.isOperator(id) || !profile.HasClassInfo() {
			continue
		}
		b := ensureBucket(profile.Grade, profile.ClassSection)
		if _, ok := b.students[id]; ok {
			continue
		}
		b.students[id] = &ClassStudent{
			ProfileID:      id,
			Name:           profile.Name,
			EnrollmentCode: profile.EnrollmentCode,
			RollNumber:     profile.RollNumber,
			TokenBalance:   profile.TokenBalance,
		}
		b.order = append(b.order, id)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := buckets[keys[i]], buckets[keys[j]]
		gradeA := normalize.NumberOrZero(a.grade)
		gradeB := normalize.NumberOrZero(b.grade)
		if gradeA != gradeB {
			return gradeA < gradeB
		}
		return normalize.NumberOrZero(a.section) < normalize.NumberOrZero(b.section)
	})

	classes := make([]ClassBucket, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		students := make([]ClassStudent, 0, len(b.students))
		for _, id := range b.order {
			student := b.students[id]
			sort.SliceStable(student.Entries, func(i, j int) bool {
				return normalize.EpochMillis(student.Entries[i]) > normalize.EpochMillis(student.Entries[j])
			})
			students = append(students, *student)
		}
		sort.SliceStable(students, func(i, j int) bool {
			return normalize.RollOrSentinel(students[i].RollNumber) < normalize.RollOrSentinel(students[j].RollNumber)
		})

		classes = append(classes, ClassBucket{
			Key:      fmt.Sprintf("%s-%s", b.grade, b.section),
			Grade:    b.grade,
			Section:  b.section,
			Students: students,
		})
	}

	return ClassIndex{Classes: classes}
}
