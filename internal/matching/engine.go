package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

// Catalog is the data-access collaborator the engine reads from. All I/O
// happens through it before scoring begins; scoring itself is pure.
type Catalog interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error)
	GetStudentDocuments(ctx context.Context, id uuid.UUID) ([]string, error)
	// ListOpenScholarships returns open records whose deadline, minimum
	// GWA and income ceiling do not already rule the student out. The
	// engine re-validates every gate regardless.
	ListOpenScholarships(ctx context.Context, now time.Time, gwa, income float64) ([]models.Scholarship, error)
	GetCityAncestry(ctx context.Context, cityID int) (*models.LocationRef, error)
}

// QuickProfile is the ad-hoc input to QuickMatch: no persisted student
// record, no uploaded documents. GWA must already be on the canonical
// percentage scale.
type QuickProfile struct {
	GWA            float64
	AnnualIncome   float64
	SHSType        models.SHSType
	Strand         models.Strand
	IntendedCourse string
	CityID         int
	ResidencyYears int
}

// MatchResponse is the full-match contract to HTTP callers.
type MatchResponse struct {
	Success          bool          `json:"success"`
	StudentID        uuid.UUID     `json:"student_id"`
	StudentName      string        `json:"student_name"`
	TotalMatches     int           `json:"total_matches"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	Matches          []MatchResult `json:"matches"`
	Summary          MatchSummary  `json:"summary"`
}

// QuickMatchResponse is the simplified contract for anonymous profiles.
type QuickMatchResponse struct {
	Success          bool          `json:"success"`
	TotalMatches     int           `json:"total_matches"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	Matches          []MatchResult `json:"matches"`
}

// Engine runs the three matching phases: eligibility filter, weighted
// scoring, result assembly. It holds no mutable state between
// invocations; each call is a pure function of its inputs plus the clock.
type Engine struct {
	catalog Catalog
	weights ScoringWeights

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func NewEngine(catalog Catalog, weights ScoringWeights) *Engine {
	return &Engine{catalog: catalog, weights: weights, now: time.Now}
}

// Weights exposes the injected scoring policy for API introspection.
func (e *Engine) Weights() ScoringWeights {
	return e.weights
}

// MatchScholarships runs a full match for a persisted student. An unknown
// ID surfaces models.ErrStudentNotFound, distinct from an empty result.
func (e *Engine) MatchScholarships(ctx context.Context, studentID uuid.UUID) (*MatchResponse, error) {
	started := time.Now()
	now := e.now().UTC()

	student, err := e.catalog.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	docList, err := e.catalog.GetStudentDocuments(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("loading documents for %s: %w", studentID, err)
	}
	uploaded := documentSet(docList)

	catalog, err := e.catalog.ListOpenScholarships(ctx, now, student.GWA, student.AnnualHouseholdIncome)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	matches := []MatchResult{}
	for _, s := range catalog {
		if !Eligible(s, *student, now) {
			continue
		}
		breakdown := Score(s, *student, uploaded, e.weights)
		percentage := Percentage(breakdown.Total(), e.weights)
		matches = append(matches, newMatchResult(s, breakdown, percentage, uploaded, now))
	}
	sortMatches(matches)

	return &MatchResponse{
		Success:          true,
		StudentID:        student.ID,
		StudentName:      student.Name,
		TotalMatches:     len(matches),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		Matches:          matches,
		Summary:          summarize(matches),
	}, nil
}

// QuickMatch runs the simplified variant against an ad-hoc profile. Only
// the course, SHS-type and strand factors score; a flat base percentage
// stands in for the document and residency data a quick profile lacks.
func (e *Engine) QuickMatch(ctx context.Context, qp QuickProfile) (*QuickMatchResponse, error) {
	started := time.Now()
	now := e.now().UTC()

	profile := models.StudentProfile{
		GWA:                   qp.GWA,
		AnnualHouseholdIncome: qp.AnnualIncome,
		Strand:                qp.Strand,
		IntendedCourse:        qp.IntendedCourse,
		SHSType:               qp.SHSType,
		ResidencyYears:        qp.ResidencyYears,
	}

	if qp.CityID > 0 {
		ancestry, err := e.catalog.GetCityAncestry(ctx, qp.CityID)
		if err != nil {
			return nil, err
		}
		profile.Location = *ancestry
	}

	catalog, err := e.catalog.ListOpenScholarships(ctx, now, profile.GWA, profile.AnnualHouseholdIncome)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	matches := []MatchResult{}
	for _, s := range catalog {
		if !Eligible(s, profile, now) {
			continue
		}
		breakdown := QuickScore(s, profile, e.weights)
		percentage := QuickPercentage(breakdown.Total(), e.weights)
		matches = append(matches, newMatchResult(s, breakdown, percentage, nil, now))
	}
	sortMatches(matches)

	return &QuickMatchResponse{
		Success:          true,
		TotalMatches:     len(matches),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		Matches:          matches,
	}, nil
}

func documentSet(docs []string) map[string]bool {
	set := make(map[string]bool, len(docs))
	for _, doc := range docs {
		set[doc] = true
	}
	return set
}
