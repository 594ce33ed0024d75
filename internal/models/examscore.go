// internal/models/examscore.go
package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	FieldLanguages       = "languages"
	FieldHumanities      = "humanities"
	FieldNaturalSciences = "natural_sciences"
	FieldMathematics     = "mathematics"
	FieldWriting         = "writing"

	MaxExamScore = 1000.0
)

// ScoreFieldNames lists the five exam areas in display order.
var ScoreFieldNames = []string{
	FieldLanguages,
	FieldHumanities,
	FieldNaturalSciences,
	FieldMathematics,
	FieldWriting,
}

var (
	ErrScoreFormat       = errors.New("score must be digits with an optional comma decimal of at most two digits")
	ErrScoreOutOfRange   = errors.New("score must be between 0 and 1000")
	ErrUnknownScoreField = errors.New("unknown exam score field")
)

// Integer part plus optional comma decimal with at most two fractional
// digits. Anything else (dot decimals, signs, letters) is rejected.
var scorePattern = regexp.MustCompile(`^\d+(,\d{1,2})?$`)

// ParseScore validates and parses a raw score string as entered by the user.
func ParseScore(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if !scorePattern.MatchString(trimmed) {
		return 0, fmt.Errorf("%w: %q", ErrScoreFormat, raw)
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrScoreFormat, raw)
	}
	if value > MaxExamScore {
		return 0, fmt.Errorf("%w: %q", ErrScoreOutOfRange, raw)
	}
	return value, nil
}

// ExamScoreRecord holds one exam year's scores. A nil field means "not yet
// entered"; completeness requires all five fields present.
type ExamScoreRecord struct {
	Year            int      `json:"year"`
	Languages       *float64 `json:"languages"`
	Humanities      *float64 `json:"humanities"`
	NaturalSciences *float64 `json:"naturalSciences"`
	Mathematics     *float64 `json:"mathematics"`
	Writing         *float64 `json:"writing"`
}

func (r *ExamScoreRecord) field(name string) (**float64, error) {
	switch name {
	case FieldLanguages:
		return &r.Languages, nil
	case FieldHumanities:
		return &r.Humanities, nil
	case FieldNaturalSciences:
		return &r.NaturalSciences, nil
	case FieldMathematics:
		return &r.Mathematics, nil
	case FieldWriting:
		return &r.Writing, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScoreField, name)
	}
}

// IsComplete reports whether all five fields have been entered.
func (r *ExamScoreRecord) IsComplete() bool {
	return r.Languages != nil &&
		r.Humanities != nil &&
		r.NaturalSciences != nil &&
		r.Mathematics != nil &&
		r.Writing != nil
}

// IsOptOutSentinel reports whether the record is the all-zero marker used
// when the user declared they did not take the exam. Indistinguishable from
// a legitimately scored zero across the board; semantics carried over from
// the original product and kept pending clarification.
func (r *ExamScoreRecord) IsOptOutSentinel() bool {
	zero := func(f *float64) bool { return f != nil && *f == 0 }
	return zero(r.Languages) && zero(r.Humanities) && zero(r.NaturalSciences) &&
		zero(r.Mathematics) && zero(r.Writing)
}

// ZeroScoreRecord builds the opt-out sentinel for the given year.
func ZeroScoreRecord(year int) *ExamScoreRecord {
	z := func() *float64 { v := 0.0; return &v }
	return &ExamScoreRecord{
		Year:            year,
		Languages:       z(),
		Humanities:      z(),
		NaturalSciences: z(),
		Mathematics:     z(),
		Writing:         z(),
	}
}

// ScoreCollector tracks one record per exam year, independently editable.
type ScoreCollector struct {
	records map[int]*ExamScoreRecord
}

func NewScoreCollector() *ScoreCollector {
	return &ScoreCollector{records: make(map[int]*ExamScoreRecord)}
}

// SetField validates rawText and stores it on the given year's record.
// An empty string clears the field.
func (c *ScoreCollector) SetField(year int, fieldName, rawText string) error {
	record, ok := c.records[year]
	if !ok {
		record = &ExamScoreRecord{Year: year}
		c.records[year] = record
	}

	slot, err := record.field(fieldName)
	if err != nil {
		return err
	}

	if strings.TrimSpace(rawText) == "" {
		*slot = nil
		return nil
	}

	value, err := ParseScore(rawText)
	if err != nil {
		return err
	}
	*slot = &value
	return nil
}

// Record returns the record for a year, or nil if nothing was entered.
func (c *ScoreCollector) Record(year int) *ExamScoreRecord {
	return c.records[year]
}

// IsComplete reports completeness of a single year.
func (c *ScoreCollector) IsComplete(year int) bool {
	record, ok := c.records[year]
	return ok && record.IsComplete()
}

// HasAnyCompleteYear is the submission gate: at least one year fully entered.
func (c *ScoreCollector) HasAnyCompleteYear() bool {
	for _, record := range c.records {
		if record.IsComplete() {
			return true
		}
	}
	return false
}

// CompleteYears returns the years with fully entered records, sorted.
func (c *ScoreCollector) CompleteYears() []int {
	years := []int{}
	for year, record := range c.records {
		if record.IsComplete() {
			years = append(years, year)
		}
	}
	for i := 1; i < len(years); i++ {
		for j := i; j > 0 && years[j] < years[j-1]; j-- {
			years[j], years[j-1] = years[j-1], years[j]
		}
	}
	return years
}
