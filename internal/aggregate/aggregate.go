// Package aggregate derives the teacher monitoring views from flat diary
// entry and profile collections: a date-indexed calendar, a class roster,
// an unreviewed queue, and a token leaderboard. Each index has its own key
// function, filter predicate, and comparator; a malformed record is skipped
// with a warning, never aborting the rest of the build.
package aggregate

import (
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/identity"
	"github.com/mathmood/diary-api/internal/models"
)

// Input bundles the flat collections every index builder consumes.
type Input struct {
	Entries    []models.DiaryEntry
	Profiles   map[string]models.Profile
	Classifier *identity.Classifier
	Logger     zerolog.Logger
}

// Snapshot is one point-in-time materialization of all four indices. It is
// disposable client state: rebuilt in full on every load and replaced, never
// patched remotely.
type Snapshot struct {
	Dates      DateIndex       `json:"dates"`
	Classes    ClassIndex      `json:"classes"`
	Unreviewed []UnreviewedRow `json:"unreviewed"`
	Ranking    []RankingRow    `json:"ranking"`
}

// BuildSnapshot materializes all indices from the same input.
func BuildSnapshot(in Input) Snapshot {
	return Snapshot{
		Dates:      BuildDateIndex(in),
		Classes:    BuildClassIndex(in),
		Unreviewed: BuildUnreviewedIndex(in),
		Ranking:    BuildRankingIndex(in),
	}
}

func (in Input) profileFor(id string) *models.Profile {
	if in.Profiles == nil {
		return nil
	}
	if profile, ok := in.Profiles[id]; ok {
		return &profile
	}
	return nil
}

func (in Input) isOperator(id string) bool {
	return in.Classifier.IsOperator(id)
}
