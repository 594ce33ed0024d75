// internal/workers/registration/save-preference-profile/models.go
package savepreferenceprofile

type Input struct {
	UserID          string   `json:"userId"`
	CourseInterests []string `json:"courseInterests"`
	EnemScore       *float64 `json:"enemScore"`
	PreferredShifts []string `json:"preferredShifts"`
	UniversityType  *string  `json:"universityType"`
	Program         *string  `json:"program"`
	IncomePerCapita *float64 `json:"incomePerCapita"`
	QuotaTypes      []string `json:"quotaTypes"`
	NoQuotaDeclared bool     `json:"noQuotaDeclared"`
	City            *string  `json:"city"`
	State           *string  `json:"state"`
}

type Output struct {
	Saved     bool   `json:"saved"`
	UserID    string `json:"userId"`
	UpdatedAt string `json:"updatedAt"` // ISO 8601
}
