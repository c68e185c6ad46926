package matching

import (
	"time"

	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

// Eligible reports whether a student could conceivably qualify for a
// scholarship. All six gates must pass; failing any one silently excludes
// the candidate from scoring. The storage layer pre-filters the cheap
// gates in SQL, but every gate is re-validated here so the result never
// depends on which query produced the catalog slice.
func Eligible(s models.Scholarship, p models.StudentProfile, now time.Time) bool {
	return passesDeadline(s, now) &&
		passesGWA(s, p) &&
		passesIncome(s, p) &&
		passesLocation(s, p) &&
		passesResidency(s, p) &&
		passesStrand(s, p)
}

// passesDeadline requires an open status and a deadline that has not
// passed. Deadlines are dates; a scholarship closing today is still open.
func passesDeadline(s models.Scholarship, now time.Time) bool {
	if s.Status != models.StatusOpen {
		return false
	}
	return !s.ApplicationDeadline.Before(dateOf(now))
}

func passesGWA(s models.Scholarship, p models.StudentProfile) bool {
	if s.Eligibility.MinGWA == nil {
		return true
	}
	return p.GWA >= *s.Eligibility.MinGWA
}

func passesIncome(s models.Scholarship, p models.StudentProfile) bool {
	if s.Eligibility.IncomeCeiling == nil {
		return true
	}
	return p.AnnualHouseholdIncome <= *s.Eligibility.IncomeCeiling
}

// passesLocation is a logical OR across granularities: matching on region,
// province or city alone is enough, not a strict hierarchy check.
func passesLocation(s models.Scholarship, p models.StudentProfile) bool {
	lc := s.Location
	if lc.Nationwide || lc.Unrestricted() {
		return true
	}
	return containsInt(lc.RegionIDs, p.Location.RegionID) ||
		containsInt(lc.ProvinceIDs, p.Location.ProvinceID) ||
		containsInt(lc.CityIDs, p.Location.CityID)
}

func passesResidency(s models.Scholarship, p models.StudentProfile) bool {
	if s.Location.MinResidencyYears == nil {
		return true
	}
	return p.ResidencyYears >= *s.Location.MinResidencyYears
}

// passesStrand lets students with no declared strand through: a blank
// strand is unknown, not disqualified. The strand bonus in scoring still
// requires an actual match.
func passesStrand(s models.Scholarship, p models.StudentProfile) bool {
	if len(s.Eligibility.AllowedStrands) == 0 || p.Strand == "" {
		return true
	}
	return containsStrand(s.Eligibility.AllowedStrands, p.Strand)
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsStrand(list []string, s models.Strand) bool {
	for _, item := range list {
		if models.Strand(item) == s {
			return true
		}
	}
	return false
}
