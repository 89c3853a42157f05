package aggregate

import "sort"

// RankingRow is one leaderboard position. Positions 1-3 carry the medal
// flag so renderers can give them distinct treatment; all later positions
// show the ordinal number.
type RankingRow struct {
	Position       int    `json:"position"`
	Medal          bool   `json:"medal"`
	ProfileID      string `json:"profile_id"`
	Name           string `json:"name"`
	EnrollmentCode string `json:"enrollment_code"`
	Grade          string `json:"grade"`
	ClassSection   string `json:"class_section"`
	RollNumber     string `json:"roll_number"`
	TokenBalance   int    `json:"token_balance"`
}

// BuildRankingIndex maps every non-operator profile onto the leaderboard,
// token balance descending with stable ties (encounter order preserved).
func BuildRankingIndex(in Input) []RankingRow {
	ids := make([]string, 0, len(in.Profiles))
	for id := range in.Profiles {
		ids = append(ids, id)
	}
	// Map iteration order is random; fix the encounter order before the
	// stable sort so tie order is reproducible.
	sort.Strings(ids)

	rows := make([]RankingRow, 0, len(ids))
	for _, id := range ids {
		if in.isOperator(id) {
			continue
		}
		profile := in.Profiles[id]
		rows = append(rows, RankingRow{
			ProfileID:      id,
			Name:           profile.Name,
			EnrollmentCode: profile.EnrollmentCode,
			Grade:          profile.Grade,
			ClassSection:   profile.ClassSection,
			RollNumber:     profile.RollNumber,
			TokenBalance:   profile.TokenBalance,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TokenBalance > rows[j].TokenBalance
	})

	for i := range rows {
		rows[i].Position = i + 1
		rows[i].Medal = i < 3
	}

	return rows
}
