package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/mathmood/diary-api/internal/models"
)

// ErrNoIdentifier indicates the raw document carries no usable entry id.
var ErrNoIdentifier = errors.New("document has no identifier")

// Placeholders used when neither a live profile nor the entry cache can
// supply a display field.
const (
	PlaceholderName  = "name unknown"
	PlaceholderClass = "no class info"
)

// Document unwraps a raw entry document into its canonical {id, fields}
// pair. Three historical shapes are accepted: the note payload bare, nested
// under "data", or nested under "note". A document without an identifier is
// unusable and fails closed.
func Document(raw map[string]any) (string, map[string]any, error) {
	if raw == nil {
		return "", nil, ErrNoIdentifier
	}

	fields := raw
	for _, wrapper := range []string{"data", "note"} {
		if nested, ok := raw[wrapper].(map[string]any); ok {
			fields = nested
			break
		}
	}

	id := stringField(raw, "id")
	if id == "" {
		id = stringField(fields, "id")
	}
	if id == "" {
		return "", nil, ErrNoIdentifier
	}

	return id, fields, nil
}

// Entry converts a raw document into a DiaryEntry. Unknown fields are
// ignored; missing fields keep their zero values so a partially populated
// legacy document still aggregates.
func Entry(raw map[string]any) (models.DiaryEntry, error) {
	id, fields, err := Document(raw)
	if err != nil {
		return models.DiaryEntry{}, err
	}

	entry := models.DiaryEntry{
		ID:                  id,
		ProfileID:           stringField(fields, "profile_id"),
		OwnerName:           stringField(fields, "owner_name"),
		OwnerEmail:          stringField(fields, "owner_email"),
		OwnerEnrollmentCode: stringField(fields, "owner_enrollment_code"),
		OwnerGrade:          stringField(fields, "owner_grade"),
		OwnerClassSection:   stringField(fields, "owner_class_section"),
		OwnerRollNumber:     stringField(fields, "owner_roll_number"),
		ActivityDate:        stringField(fields, "activity_date"),
		ActivityTime:        stringField(fields, "activity_time"),
		ActivityYear:        stringField(fields, "activity_year"),
		ActivityMonth:       stringField(fields, "activity_month"),
		ActivityDay:         stringField(fields, "activity_day"),
		ActivityHour:        stringField(fields, "activity_hour"),
		ActivityMinute:      stringField(fields, "activity_minute"),
		Mood:                stringField(fields, "mood"),
		Reflection:          stringField(fields, "reflection"),
		StudyHours:          intField(fields, "study_hours"),
		StudyMinutes:        intField(fields, "study_minutes"),
		ProblemExplanation:  stringField(fields, "problem_explanation"),
		Feedback:            stringField(fields, "feedback"),
		TokenGranted:        boolField(fields, "token_granted"),
	}

	if ts := stringField(fields, "submitted_at"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.SubmittedAt = parsed
		}
	}

	if artifact, ok := fields["problem_artifact"].(map[string]any); ok {
		entry.ProblemArtifact = datatypes.JSONMap(artifact)
	}

	if transcript, ok := fields["transcript"]; ok {
		if encoded, err := json.Marshal(transcript); err == nil {
			entry.Transcript = datatypes.JSON(encoded)
		}
	}

	return entry, nil
}

// Display holds the student-facing attributes resolved for an entry.
type Display struct {
	Name           string `json:"name"`
	EnrollmentCode string `json:"enrollment_code"`
	Grade          string `json:"grade"`
	ClassSection   string `json:"class_section"`
	RollNumber     string `json:"roll_number"`
}

// ResolveDisplay resolves student display attributes with the three-tier
// fallback: live profile first, the entry's cached copy second, generic
// placeholders last. Live data must win so that profile edits apply
// retroactively to every past entry without rewriting entry documents.
func ResolveDisplay(entry models.DiaryEntry, profile *models.Profile) Display {
	display := Display{
		Name:           entry.OwnerName,
		EnrollmentCode: entry.OwnerEnrollmentCode,
		Grade:          entry.OwnerGrade,
		ClassSection:   entry.OwnerClassSection,
		RollNumber:     entry.OwnerRollNumber,
	}

	if profile != nil {
		if profile.Name != "" {
			display.Name = profile.Name
		}
		if profile.EnrollmentCode != "" {
			display.EnrollmentCode = profile.EnrollmentCode
		}
		if profile.Grade != "" {
			display.Grade = profile.Grade
		}
		if profile.ClassSection != "" {
			display.ClassSection = profile.ClassSection
		}
		if profile.RollNumber != "" {
			display.RollNumber = profile.RollNumber
		}
	}

	if display.Name == "" {
		display.Name = PlaceholderName
	}

	return display
}

// ClassLabel renders the class the way teachers see it, or the placeholder
// when grade or section is missing.
func (d Display) ClassLabel() string {
	if d.Grade == "" || d.ClassSection == "" {
		return PlaceholderClass
	}
	return fmt.Sprintf("%s-%s", d.Grade, d.ClassSection)
}

// EpochMillis returns the entry's ordering timestamp as epoch milliseconds,
// treating a missing timestamp as epoch zero.
func EpochMillis(entry models.DiaryEntry) int64 {
	if entry.SubmittedAt.IsZero() {
		return 0
	}
	return entry.SubmittedAt.UnixMilli()
}

// ParseComponent trims and parses a decomposed date component, reporting
// whether it was a usable number.
func ParseComponent(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// NumberOrZero parses a display number, defaulting to 0 when unparseable.
func NumberOrZero(value string) int {
	parsed, ok := ParseComponent(value)
	if !ok {
		return 0
	}
	return parsed
}

// RollSentinel is the sort position assigned to unparseable roll numbers so
// they land after every numeric one.
const RollSentinel = 999

// RollOrSentinel parses a roll number for sorting, substituting the
// sentinel for blank or non-numeric values.
func RollOrSentinel(value string) int {
	parsed, ok := ParseComponent(value)
	if !ok {
		return RollSentinel
	}
	return parsed
}

func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	}
	return ""
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return parsed
		}
	}
	return 0
}

func boolField(fields map[string]any, key string) bool {
	if fields == nil {
		return false
	}
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return false
}
