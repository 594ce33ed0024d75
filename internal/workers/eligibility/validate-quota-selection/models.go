// internal/workers/eligibility/validate-quota-selection/models.go
package validatequotaselection

type Input struct {
	UserID          string   `json:"userId"`
	QuotaTypes      []string `json:"quotaTypes"`
	NoQuotaDeclared bool     `json:"noQuotaDeclared"`
}

type Output struct {
	Valid bool `json:"valid"`
	// NormalizedTags is deduplicated and sorted, empty when no quota was
	// declared.
	NormalizedTags  []string `json:"normalizedTags"`
	NoQuotaDeclared bool     `json:"noQuotaDeclared"`
	Reason          string   `json:"reason,omitempty"`
}
