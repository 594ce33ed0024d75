// internal/models/preference.go
package models

import (
	"errors"
	"fmt"
	"sort"
)

// QuotaTag is an admission-category label affecting eligibility matching.
type QuotaTag string

const (
	QuotaGeneralAdmission       QuotaTag = "general_admission"
	QuotaPublicSchool           QuotaTag = "public_school"
	QuotaBlack                  QuotaTag = "black"
	QuotaBrown                  QuotaTag = "brown"
	QuotaIndigenous             QuotaTag = "indigenous"
	QuotaQuilombola             QuotaTag = "quilombola"
	QuotaRomani                 QuotaTag = "romani"
	QuotaRiverside              QuotaTag = "riverside"
	QuotaRural                  QuotaTag = "rural"
	QuotaLowIncome              QuotaTag = "low_income"
	QuotaPhysicalDisability     QuotaTag = "physical_disability"
	QuotaHearingDisability      QuotaTag = "hearing_disability"
	QuotaVisualDisability       QuotaTag = "visual_disability"
	QuotaIntellectualDisability QuotaTag = "intellectual_disability"
	QuotaAutismSpectrum         QuotaTag = "autism_spectrum"
	QuotaRefugee                QuotaTag = "refugee"
	QuotaImmigrant              QuotaTag = "immigrant"
	QuotaTrans                  QuotaTag = "trans"
	QuotaSingleMother           QuotaTag = "single_mother"
	QuotaMilitary               QuotaTag = "military"
	QuotaReligiousMinority      QuotaTag = "religious_minority"
	QuotaAthlete                QuotaTag = "high_performance_athlete"
)

// AllQuotaTags is the closed set of accepted categories.
var AllQuotaTags = []QuotaTag{
	QuotaGeneralAdmission, QuotaPublicSchool, QuotaBlack, QuotaBrown,
	QuotaIndigenous, QuotaQuilombola, QuotaRomani, QuotaRiverside,
	QuotaRural, QuotaLowIncome, QuotaPhysicalDisability,
	QuotaHearingDisability, QuotaVisualDisability,
	QuotaIntellectualDisability, QuotaAutismSpectrum, QuotaRefugee,
	QuotaImmigrant, QuotaTrans, QuotaSingleMother, QuotaMilitary,
	QuotaReligiousMinority, QuotaAthlete,
}

var validQuotaTags = func() map[QuotaTag]bool {
	m := make(map[QuotaTag]bool, len(AllQuotaTags))
	for _, tag := range AllQuotaTags {
		m[tag] = true
	}
	return m
}()

var ErrUnknownQuotaTag = errors.New("unknown quota tag")

// ParseQuotaTag rejects values outside the closed set.
func ParseQuotaTag(s string) (QuotaTag, error) {
	tag := QuotaTag(s)
	if !validQuotaTags[tag] {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuotaTag, s)
	}
	return tag, nil
}

// QuotaSelection holds the mutually-exclusive "no quota" declaration and the
// selected tag set. Invariant: NoQuotaDeclared implies an empty tag set.
type QuotaSelection struct {
	tags            map[QuotaTag]bool
	NoQuotaDeclared bool
}

func NewQuotaSelection() *QuotaSelection {
	return &QuotaSelection{tags: make(map[QuotaTag]bool)}
}

// Toggle flips a tag's membership. Selecting any tag clears the "no quota"
// declaration.
func (q *QuotaSelection) Toggle(tag QuotaTag) error {
	if !validQuotaTags[tag] {
		return fmt.Errorf("%w: %q", ErrUnknownQuotaTag, tag)
	}
	if q.tags[tag] {
		delete(q.tags, tag)
		return nil
	}
	q.tags[tag] = true
	q.NoQuotaDeclared = false
	return nil
}

// SetNoQuota sets or clears the declaration; setting it clears all tags.
func (q *QuotaSelection) SetNoQuota(declared bool) {
	q.NoQuotaDeclared = declared
	if declared {
		q.tags = make(map[QuotaTag]bool)
	}
}

// IsValid is the quota-step submission gate: either an explicit opt-out or
// at least one selected tag.
func (q *QuotaSelection) IsValid() bool {
	return q.NoQuotaDeclared || len(q.tags) > 0
}

// Has reports tag membership.
func (q *QuotaSelection) Has(tag QuotaTag) bool {
	return q.tags[tag]
}

// Tags returns the selected tags, sorted for stable persistence.
func (q *QuotaSelection) Tags() []QuotaTag {
	out := make([]QuotaTag, 0, len(q.tags))
	for tag := range q.tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Shift enumerates course schedule preferences.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftEvening   Shift = "evening"
	ShiftFullTime  Shift = "full_time"
	ShiftRemote    Shift = "remote"
)

var validShifts = map[Shift]bool{
	ShiftMorning: true, ShiftAfternoon: true, ShiftEvening: true,
	ShiftFullTime: true, ShiftRemote: true,
}

var ErrUnknownShift = errors.New("unknown shift")

func ParseShift(s string) (Shift, error) {
	shift := Shift(s)
	if !validShifts[shift] {
		return "", fmt.Errorf("%w: %q", ErrUnknownShift, s)
	}
	return shift, nil
}

// University type and program preferences; "any" is a stored wildcard, a
// nil pointer means never answered.
const (
	UniversityPublic  = "public"
	UniversityPrivate = "private"
	UniversityAny     = "any"

	ProgramSisu   = "sisu"
	ProgramProuni = "prouni"
	ProgramAny    = "any"
)

var validUniversityTypes = map[string]bool{
	UniversityPublic: true, UniversityPrivate: true, UniversityAny: true,
}

var validPrograms = map[string]bool{
	ProgramSisu: true, ProgramProuni: true, ProgramAny: true,
}

var (
	ErrUnknownUniversityType = errors.New("unknown university type")
	ErrUnknownProgram        = errors.New("unknown program")
)

func ValidateUniversityType(s string) error {
	if !validUniversityTypes[s] {
		return fmt.Errorf("%w: %q", ErrUnknownUniversityType, s)
	}
	return nil
}

func ValidateProgram(s string) error {
	if !validPrograms[s] {
		return fmt.Errorf("%w: %q", ErrUnknownProgram, s)
	}
	return nil
}

// PreferenceProfile is the per-user preference record. The wizard mutates a
// subset (quota types, income); the free-form editor mutates the full set;
// the match-request builder consumes it read-only.
type PreferenceProfile struct {
	UserID           string     `json:"userId"`
	RegistrationStep Step       `json:"registrationStep"`
	CourseInterests  []string   `json:"courseInterests"`
	EnemScore        *float64   `json:"enemScore"`
	PreferredShifts  []Shift    `json:"preferredShifts"`
	UniversityType   *string    `json:"universityType"`
	Program          *string    `json:"program"`
	IncomePerCapita  *float64   `json:"incomePerCapita"`
	QuotaTypes       []QuotaTag `json:"quotaTypes"`
	City             *string    `json:"city"`
	State            *string    `json:"state"`
	DeviceLatitude   *float64   `json:"deviceLatitude"`
	DeviceLongitude  *float64   `json:"deviceLongitude"`
}
