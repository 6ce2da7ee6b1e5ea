package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedNumericField is wrapped by MalformedNumericFieldError.
	ErrMalformedNumericField = errors.New("malformed numeric field")
	// ErrMissingColumn is wrapped by MissingColumnError.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoRecords is returned for an input with a header but no rows.
	ErrNoRecords = errors.New("input has no data rows")
)

// MalformedNumericFieldError names the offending cell.
type MalformedNumericFieldError struct {
	Row    int
	Column string
	Value  string
}

func (e *MalformedNumericFieldError) Error() string {
	return fmt.Sprintf("malformed numeric field %q at row %d: %q", e.Column, e.Row, e.Value)
}

func (e *MalformedNumericFieldError) Unwrap() error {
	return ErrMalformedNumericField
}

// MissingColumnError names the absent required column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// ParseDecimal converts a numeric cell to a decimal. Accepted forms are an
// already numeric value ("12.5", "3") or a decimal with the configured mark
// ("12,5"). Thousand separators, blanks and placeholders are rejected.
func ParseDecimal(raw string, decimalSep rune) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}

	if decimalSep != '.' && strings.ContainsRune(s, decimalSep) {
		if strings.ContainsRune(s, '.') {
			return decimal.Zero, fmt.Errorf("ambiguous separators in %q", raw)
		}
		s = strings.Replace(s, string(decimalSep), ".", 1)
	}

	if !isPlainNumber(s) {
		return decimal.Zero, fmt.Errorf("not a number: %q", raw)
	}

	return decimal.NewFromString(s)
}

// isPlainNumber accepts an optional sign, digits and at most one dot.
func isPlainNumber(s string) bool {
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" || s == "." {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		case r < '0' || r > '9':
			return false
		}
	}
	return true
}

// NormalizeField parses a cell and wraps failures with the row and column.
func NormalizeField(raw string, row int, column string, decimalSep rune) (decimal.Decimal, error) {
	d, err := ParseDecimal(raw, decimalSep)
	if err != nil {
		return decimal.Zero, &MalformedNumericFieldError{Row: row, Column: column, Value: raw}
	}
	return d, nil
}
