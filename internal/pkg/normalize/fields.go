package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPhone   = errors.New("invalid phone")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidTaxID   = errors.New("invalid tax id")
	ErrInvalidWeekday = errors.New("invalid class weekday")
	ErrMissingField   = errors.New("missing required field")
)

// FieldError is a validation failure for one field. The field is left out of
// the normalized record and processing continues.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PhoneLength is the number of digits kept: area code + mobile number.
const PhoneLength = 11

// NormalizePhone keeps the trailing 11 digits of raw. Fewer digits is an error.
func NormalizePhone(raw string) (string, error) {
	digits := DigitsOnly(raw)
	if len(digits) < PhoneLength {
		return "", fmt.Errorf("%w: %d digits", ErrInvalidPhone, len(digits))
	}
	return digits[len(digits)-PhoneLength:], nil
}

// IsValidPhone reports whether s is exactly 11 digits.
func IsValidPhone(s string) bool {
	return len(s) == PhoneLength && DigitsOnly(s) == s
}

// NormalizeTaxID keeps the digits of a CPF (11) or CNPJ (14).
func NormalizeTaxID(raw string) (string, error) {
	digits := DigitsOnly(raw)
	if len(digits) != 11 && len(digits) != 14 {
		return "", fmt.Errorf("%w: %d digits", ErrInvalidTaxID, len(digits))
	}
	return digits, nil
}

const isoDate = "2006-01-02"

var dateLayouts = []string{
	"2/1/2006",
	isoDate,
}

// ParseDate accepts dd/mm/yyyy (leading zeros optional) and yyyy-mm-dd.
// Anything else is absent; it never falls back to the current date.
func ParseDate(raw string) (*time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, true
		}
	}
	return nil, false
}

// FormatDate renders an optional date as yyyy-mm-dd, or "" when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(isoDate)
}

var currencyStripper = strings.NewReplacer("R$", "", "r$", "", " ", "", "\u00a0", "")

// ParseAmount parses a Brazilian or plain currency amount ("R$ 1.234,56",
// "1234.56", "150"). Empty input is zero.
func ParseAmount(raw string) (float64, error) {
	s := currencyStripper.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, nil
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		// A single dot followed by exactly three digits is a thousands separator.
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return math.Round(v*100) / 100, nil
}

var weekdayAliases = map[string]time.Weekday{
	"segunda": time.Monday, "seg": time.Monday, "2a": time.Monday, "monday": time.Monday, "mon": time.Monday,
	"terca": time.Tuesday, "ter": time.Tuesday, "3a": time.Tuesday, "tuesday": time.Tuesday, "tue": time.Tuesday,
	"quarta": time.Wednesday, "qua": time.Wednesday, "4a": time.Wednesday, "wednesday": time.Wednesday, "wed": time.Wednesday,
	"quinta": time.Thursday, "qui": time.Thursday, "5a": time.Thursday, "thursday": time.Thursday, "thu": time.Thursday,
	"sexta": time.Friday, "sex": time.Friday, "6a": time.Friday, "friday": time.Friday, "fri": time.Friday,
}

// ParseWeekday resolves a class day name (Portuguese or English). Only
// Monday through Friday are class days.
func ParseWeekday(raw string) (time.Weekday, error) {
	for _, word := range strings.Fields(Fold(raw)) {
		if wd, ok := weekdayAliases[word]; ok {
			return wd, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
}
