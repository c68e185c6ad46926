package models

import (
	"time"

	"github.com/google/uuid"
)

// Scholarship status values. The deadline sweeper flips open records to
// closed once the application deadline passes.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// ProviderType classifies who funds a scholarship.
type ProviderType string

const (
	ProviderGovernment    ProviderType = "Government"
	ProviderPrivate       ProviderType = "Private"
	ProviderLGU           ProviderType = "LGU"
	ProviderInternational ProviderType = "International"
	ProviderNGO           ProviderType = "NGO"
)

func ValidProviderType(p ProviderType) bool {
	switch p {
	case ProviderGovernment, ProviderPrivate, ProviderLGU, ProviderInternational, ProviderNGO:
		return true
	}
	return false
}

// Eligibility is a sparse constraint object. A nil pointer or empty list
// means the corresponding dimension is unconstrained.
type Eligibility struct {
	MinGWA          *float64 `json:"min_gwa"`
	IncomeCeiling   *float64 `json:"income_ceiling"`
	AllowedStrands  []string `json:"allowed_strands"`
	PriorityStrands []string `json:"priority_strands"`
	PriorityCourses []string `json:"priority_courses"`
}

// LocationConstraints restricts a scholarship geographically. Nationwide
// overrides the ID lists; otherwise a student matches if their region,
// province OR city appears in the corresponding list. Empty lists mean
// no geographic restriction.
type LocationConstraints struct {
	Nationwide        bool  `json:"nationwide"`
	RegionIDs         []int `json:"region_ids"`
	ProvinceIDs       []int `json:"province_ids"`
	CityIDs           []int `json:"city_ids"`
	MinResidencyYears *int  `json:"min_residency_years"`
}

// Unrestricted reports whether no geographic ID list is set.
func (lc LocationConstraints) Unrestricted() bool {
	return len(lc.RegionIDs) == 0 && len(lc.ProvinceIDs) == 0 && len(lc.CityIDs) == 0
}

type Scholarship struct {
	ID                  uuid.UUID           `json:"id"`
	Name                string              `json:"name"`
	ProviderName        string              `json:"provider_name"`
	ProviderType        ProviderType        `json:"provider_type"`
	Description         string              `json:"description"` // Sanitized HTML
	Summary             string              `json:"summary"`
	ApplicationStart    *time.Time          `json:"application_start"`
	ApplicationDeadline time.Time           `json:"application_deadline"`
	Status              string              `json:"status"`
	Eligibility         Eligibility         `json:"eligibility"`
	Location            LocationConstraints `json:"location"`
	RequiredDocuments   []string            `json:"required_documents"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
