package matching

import (
	"math"
	"strings"

	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

// ScoreBreakdown records the exact point contribution of each weighted
// factor. The total score is always the sum of these fields, so every
// point in a match percentage traces back to one human-readable reason.
type ScoreBreakdown struct {
	PriorityCourse    int `json:"priority_course"`
	PublicSHS         int `json:"public_shs"`
	StrandMatch       int `json:"strand_match"`
	PriorityStrand    int `json:"priority_strand"`
	DocumentsComplete int `json:"documents_complete"`
	IncomeLower       int `json:"income_lower"`
	GWAHigher         int `json:"gwa_higher"`
	ResidencyMargin   int `json:"residency_margin"`
	PWD               int `json:"pwd"`
	SoloParentChild   int `json:"solo_parent_child"`
	Indigenous        int `json:"indigenous"`
}

func (b ScoreBreakdown) Total() int {
	return b.PriorityCourse + b.PublicSHS + b.StrandMatch + b.PriorityStrand +
		b.DocumentsComplete + b.IncomeLower + b.GWAHigher + b.ResidencyMargin +
		b.PWD + b.SoloParentChild + b.Indigenous
}

// Score evaluates the full weight table for a candidate that already
// passed the eligibility gates. uploadedDocs is the set of document type
// codes the student has furnished.
func Score(s models.Scholarship, p models.StudentProfile, uploadedDocs map[string]bool, w ScoringWeights) ScoreBreakdown {
	b := quickFactors(s, p, w)

	if len(s.Eligibility.PriorityStrands) > 0 && containsStrand(s.Eligibility.PriorityStrands, p.Strand) {
		b.PriorityStrand = w.PriorityStrand
	}

	// Documents complete: vacuously true when nothing is required.
	if allDocumentsUploaded(s.RequiredDocuments, uploadedDocs) {
		b.DocumentsComplete = w.DocumentsComplete
	}

	// Income significantly below the ceiling. Only evaluated when a
	// ceiling exists; a zero ceiling would make the ratio undefined, so
	// the bonus is skipped rather than divided.
	if ceiling := s.Eligibility.IncomeCeiling; ceiling != nil && *ceiling > 0 {
		if p.AnnualHouseholdIncome / *ceiling <= 0.5 {
			b.IncomeLower = w.IncomeLower
		}
	}

	// GWA margin: full weight for a 5-point margin over the minimum,
	// half weight as a neutral bonus when the scholarship sets no minimum.
	if minGWA := s.Eligibility.MinGWA; minGWA != nil {
		if p.GWA-*minGWA >= 5 {
			b.GWAHigher = w.GWAHigher
		}
	} else {
		b.GWAHigher = w.GWAHigher / 2
	}

	if minYears := s.Location.MinResidencyYears; minYears != nil && p.ResidencyYears >= *minYears+2 {
		b.ResidencyMargin = w.ResidencyMargin
	}

	if p.IsPWD {
		b.PWD = w.PWD
	}
	if p.IsSoloParentChild {
		b.SoloParentChild = w.SoloParentChild
	}
	if p.IsIndigenous {
		b.Indigenous = w.Indigenous
	}

	return b
}

// QuickScore is the simplified variant for anonymous profiles that carry
// no document or residency data: only the course, SHS-type and strand
// factors are evaluated.
func QuickScore(s models.Scholarship, p models.StudentProfile, w ScoringWeights) ScoreBreakdown {
	return quickFactors(s, p, w)
}

func quickFactors(s models.Scholarship, p models.StudentProfile, w ScoringWeights) ScoreBreakdown {
	var b ScoreBreakdown

	if matchesCourse(s.Eligibility.PriorityCourses, p.IntendedCourse) {
		b.PriorityCourse = w.PriorityCourse
	}

	// Private money favoring public-school students.
	if p.SHSType == models.SHSPublic &&
		(s.ProviderType == models.ProviderPrivate || s.ProviderType == models.ProviderNGO) {
		b.PublicSHS = w.PublicSHS
	}

	// Strand fit: an unconstrained scholarship grants the bonus outright,
	// a constrained one only on a declared match.
	if len(s.Eligibility.AllowedStrands) == 0 || containsStrand(s.Eligibility.AllowedStrands, p.Strand) {
		b.StrandMatch = w.StrandMatch
	}

	return b
}

// matchesCourse does the fuzzy priority-course comparison: lowercase,
// trim, then substring containment in both directions. "BS Computer
// Science" matches a priority entry of "computer science" and vice versa.
func matchesCourse(priorityCourses []string, intendedCourse string) bool {
	course := normalizeCourse(intendedCourse)
	if course == "" {
		return false
	}
	for _, entry := range priorityCourses {
		candidate := normalizeCourse(entry)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, course) || strings.Contains(course, candidate) {
			return true
		}
	}
	return false
}

func normalizeCourse(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func allDocumentsUploaded(required []string, uploaded map[string]bool) bool {
	for _, doc := range required {
		if !uploaded[doc] {
			return false
		}
	}
	return true
}

// Percentage normalizes a full-match score against the maximum possible
// score, rounded and clamped to [0, 100].
func Percentage(score int, w ScoringWeights) int {
	return clampPercent(int(math.Round(float64(score) / float64(w.MaxPossibleScore()) * 100)))
}

// QuickPercentage maps a quick score into [25, 100]: the flat base
// acknowledges that the hard gates already passed, and the remaining 75
// points scale with the quick score.
func QuickPercentage(score int, w ScoringWeights) int {
	scaled := int(math.Round(float64(score) / float64(w.QuickMaxScore()) * float64(100-QuickBasePercentage)))
	return clampPercent(QuickBasePercentage + scaled)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
