package validate

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends a non-nil field error.
func (e *Errs) Add(ef *ErrField) {
	if ef != nil {
		*e = append(*e, *ef)
	}
}

// Err returns nil for an empty list so callers can `return errs.Err()`.
func (e Errs) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

func IntRange(field string, v, min, max int64) *ErrField {
	if v < min || v > max {
		return &ErrField{Field: field, Msg: "must be between " + strconv.FormatInt(min, 10) + " and " + strconv.FormatInt(max, 10)}
	}
	return nil
}

// Length checks the trimmed rune count. max <= 0 disables the upper bound.
func Length(field, value string, min, max int) *ErrField {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		return &ErrField{Field: field, Msg: "required"}
	}
	if n < min {
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	}
	if max > 0 && n > max {
		return &ErrField{Field: field, Msg: "must be at most " + strconv.Itoa(max) + " characters"}
	}
	return nil
}

func Positive(field string, v float64) *ErrField {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &ErrField{Field: field, Msg: "must be > 0"}
	}
	return nil
}

func FloatRange(field string, v, min, max float64) *ErrField {
	if math.IsNaN(v) || v < min || v > max {
		return &ErrField{Field: field, Msg: "must be between " + strconv.FormatFloat(min, 'f', -1, 64) + " and " + strconv.FormatFloat(max, 'f', -1, 64)}
	}
	return nil
}
