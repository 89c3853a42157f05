package enrollcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDecodesPositionalDigits(t *testing.T) {
	cases := []struct {
		input   string
		grade   int
		section int
		roll    int
	}{
		{"04152", 0, 41, 52},
		{"30901", 3, 9, 1},
		{"10203", 1, 2, 3},
		{"99999", 9, 99, 99},
		{"00000", 0, 0, 0},
	}

	for _, tc := range cases {
		code, err := Parse(tc.input)
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.grade, code.Grade, tc.input)
		require.Equal(t, tc.section, code.ClassSection, tc.input)
		require.Equal(t, tc.roll, code.RollNumber, tc.input)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "123", "abc12", "123456", "1234x", " 1234", "１２３４５"} {
		_, err := Parse(input)
		require.ErrorIs(t, err, ErrInvalidCode, "input %q", input)
	}
}

func TestFormatRoundTrips(t *testing.T) {
	code, err := Parse("04152")
	require.NoError(t, err)
	require.Equal(t, "04152", code.Format())
}
