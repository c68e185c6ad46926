// Package validation checks raw student input before it reaches the
// matching engine and normalizes GWA onto the canonical percentage scale.
// Problems come back as field-level messages the UI can render inline.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

// Canonical GWA bounds (Philippine SHS percentage scale). Collegiate-scale
// input (inverted 1.0-5.0) is converted before these apply.
const (
	GWAMin = 70.0
	GWAMax = 100.0

	collegiateScaleMax = 5.0
)

// FieldError is one actionable validation problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// QuickMatchRequest is the ad-hoc profile accepted by the quick-match
// endpoint.
type QuickMatchRequest struct {
	GWA            float64 `json:"gwa" validate:"required"`
	AnnualIncome   float64 `json:"annual_income" validate:"gte=0"`
	SHSType        string  `json:"shs_type" validate:"required,oneof=Public Private"`
	Strand         string  `json:"strand" validate:"omitempty,oneof=STEM ABM HUMSS GAS TVL Sports Arts"`
	IntendedCourse string  `json:"intended_course"`
	CityID         int     `json:"city_id" validate:"omitempty,gt=0"`
	ResidencyYears int     `json:"residency_years" validate:"gte=0,lte=50"`
}

// CreateStudentRequest creates a persisted student profile.
type CreateStudentRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=120"`
	GWA            float64 `json:"gwa" validate:"required"`
	AnnualIncome   float64 `json:"annual_income" validate:"gte=0"`
	SHSType        string  `json:"shs_type" validate:"required,oneof=Public Private"`
	Strand         string  `json:"strand" validate:"omitempty,oneof=STEM ABM HUMSS GAS TVL Sports Arts"`
	IntendedCourse string  `json:"intended_course"`
	CityID         int     `json:"city_id" validate:"required,gt=0"`
	ResidencyYears int     `json:"residency_years" validate:"gte=0,lte=50"`
	IsPWD          bool    `json:"is_pwd"`
	IsSoloParent   bool    `json:"is_solo_parent_child"`
	IsIndigenous   bool    `json:"is_indigenous"`
}

// QuickMatchProblems validates a quick-match request and normalizes its
// GWA in place. An empty slice means the request is clean.
func QuickMatchProblems(req *QuickMatchRequest) []FieldError {
	problems := structProblems(req)
	problems = appendGWAProblems(problems, &req.GWA)
	problems = appendCourseProblems(problems, req.IntendedCourse)
	return problems
}

// CreateStudentProblems validates a create-student request and normalizes
// its GWA in place.
func CreateStudentProblems(req *CreateStudentRequest) []FieldError {
	problems := structProblems(req)
	problems = appendGWAProblems(problems, &req.GWA)
	problems = appendCourseProblems(problems, req.IntendedCourse)
	return problems
}

// DocumentTypeProblem validates an uploaded document type code.
func DocumentTypeProblem(code string) *FieldError {
	if models.ValidDocumentType(code) {
		return nil
	}
	return &FieldError{
		Field:   "document_type",
		Message: fmt.Sprintf("unknown document type %q; valid types are %s", code, strings.Join(models.DocumentTypes, ", ")),
	}
}

// NormalizeGWA converts input to the canonical 70-100 percentage scale.
// Values on the inverted collegiate scale (1.0 best, 5.0 worst) map
// linearly: 1.0 -> 100, 3.0 -> 75, 5.0 -> 50. Values between the two
// scales are ambiguous and rejected.
func NormalizeGWA(gwa float64) (float64, error) {
	switch {
	case gwa >= 1.0 && gwa <= collegiateScaleMax:
		return 100 - (gwa-1.0)*12.5, nil
	case gwa >= GWAMin && gwa <= GWAMax:
		return gwa, nil
	default:
		return 0, fmt.Errorf("gwa %.2f is outside both the %.0f-%.0f percentage scale and the 1.0-5.0 collegiate scale", gwa, GWAMin, GWAMax)
	}
}

func appendGWAProblems(problems []FieldError, gwa *float64) []FieldError {
	normalized, err := NormalizeGWA(*gwa)
	if err != nil {
		return append(problems, FieldError{Field: "gwa", Message: err.Error()})
	}
	if normalized < GWAMin {
		// Collegiate input below 3.0-equivalent converts under the SHS
		// floor; still out of the validated domain.
		return append(problems, FieldError{Field: "gwa", Message: fmt.Sprintf("gwa converts to %.1f, below the %.0f minimum", normalized, GWAMin)})
	}
	*gwa = normalized
	return problems
}

func structProblems(req any) []FieldError {
	problems := []FieldError{}
	err := validate.Struct(req)
	if err == nil {
		return problems
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(problems, FieldError{Field: "request", Message: err.Error()})
	}
	for _, fe := range errs {
		problems = append(problems, FieldError{Field: jsonFieldName(fe), Message: messageFor(fe)})
	}
	return problems
}

// jsonFieldName lowercases the struct field into its snake_case JSON name.
func jsonFieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "AnnualIncome":
		return "annual_income"
	case "SHSType":
		return "shs_type"
	case "IntendedCourse":
		return "intended_course"
	case "CityID":
		return "city_id"
	case "ResidencyYears":
		return "residency_years"
	case "IsPWD":
		return "is_pwd"
	case "IsSoloParent":
		return "is_solo_parent_child"
	case "IsIndigenous":
		return "is_indigenous"
	default:
		return strings.ToLower(fe.Field())
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
