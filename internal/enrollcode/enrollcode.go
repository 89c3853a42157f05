package enrollcode

import (
	"errors"
	"fmt"
)

// ErrInvalidCode indicates the enrollment code is not exactly five ASCII digits.
var ErrInvalidCode = errors.New("invalid enrollment code")

// Code is the decoded form of a five digit enrollment code.
// Position 1 is the grade, positions 2-3 the class section, 4-5 the roll number.
// Leading zeros are significant: grade 0 is a valid decoded value.
type Code struct {
	Grade        int
	ClassSection int
	RollNumber   int
}

// Parse decodes a five digit enrollment code. Any input that is not exactly
// five ASCII digits returns ErrInvalidCode; callers must reject such input
// before persisting profile data.
func Parse(code string) (Code, error) {
	if len(code) != 5 {
		return Code{}, ErrInvalidCode
	}

	digits := make([]int, 5)
	for i := 0; i < 5; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return Code{}, ErrInvalidCode
		}
		digits[i] = int(c - '0')
	}

	return Code{
		Grade:        digits[0],
		ClassSection: digits[1]*10 + digits[2],
		RollNumber:   digits[3]*10 + digits[4],
	}, nil
}

// Format re-encodes a decoded code into its five digit string form.
func (c Code) Format() string {
	return fmt.Sprintf("%d%02d%02d", c.Grade, c.ClassSection, c.RollNumber)
}

// GradeLabel returns the grade as stored on profiles.
func (c Code) GradeLabel() string {
	return fmt.Sprintf("%d", c.Grade)
}

// SectionLabel returns the class section without leading zeros.
func (c Code) SectionLabel() string {
	return fmt.Sprintf("%d", c.ClassSection)
}

// RollLabel returns the roll number without leading zeros.
func (c Code) RollLabel() string {
	return fmt.Sprintf("%d", c.RollNumber)
}
