package matching

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

// urgentWindowDays marks a deadline as urgent when it is this close.
const urgentWindowDays = 14

// ScholarshipCard is the denormalized subset of a scholarship surfaced in
// match results.
type ScholarshipCard struct {
	ID                  uuid.UUID           `json:"id"`
	Name                string              `json:"name"`
	ProviderName        string              `json:"provider_name"`
	ProviderType        models.ProviderType `json:"provider_type"`
	Summary             string              `json:"summary"`
	ApplicationDeadline time.Time           `json:"application_deadline"`
	RequiredDocuments   []string            `json:"required_documents"`
}

// MatchResult is one ranked candidate. It is ephemeral: recomputed on
// every request, never persisted.
type MatchResult struct {
	Scholarship      ScholarshipCard `json:"scholarship"`
	MatchScore       int             `json:"match_score"`
	MatchPercentage  int             `json:"match_percentage"`
	Breakdown        ScoreBreakdown  `json:"scoring_breakdown"`
	DaysRemaining    int             `json:"days_remaining"`
	IsUrgent         bool            `json:"is_urgent"`
	MissingDocuments []string        `json:"missing_documents"`
}

// MatchSummary aggregates a result set for dashboard display.
type MatchSummary struct {
	HighMatches     int            `json:"high_matches"`   // percentage >= 70
	MediumMatches   int            `json:"medium_matches"` // 40-69
	LowMatches      int            `json:"low_matches"`    // < 40
	UrgentDeadlines int            `json:"urgent_deadlines"`
	ByProviderType  map[string]int `json:"by_provider_type"`
}

// newMatchResult annotates a scored candidate with deadline and document
// metadata.
func newMatchResult(s models.Scholarship, b ScoreBreakdown, percentage int, uploadedDocs map[string]bool, now time.Time) MatchResult {
	days := daysRemaining(s.ApplicationDeadline, now)
	return MatchResult{
		Scholarship: ScholarshipCard{
			ID:                  s.ID,
			Name:                s.Name,
			ProviderName:        s.ProviderName,
			ProviderType:        s.ProviderType,
			Summary:             s.Summary,
			ApplicationDeadline: s.ApplicationDeadline,
			RequiredDocuments:   s.RequiredDocuments,
		},
		MatchScore:       b.Total(),
		MatchPercentage:  percentage,
		Breakdown:        b,
		DaysRemaining:    days,
		IsUrgent:         days <= urgentWindowDays,
		MissingDocuments: missingDocuments(s.RequiredDocuments, uploadedDocs),
	}
}

// daysRemaining is the whole number of days between today and the
// deadline date, floored.
func daysRemaining(deadline, now time.Time) int {
	return int(dateOf(deadline).Sub(dateOf(now)).Hours() / 24)
}

// missingDocuments is the set difference requiredDocuments minus the
// uploaded set, preserving the required order. Never nil.
func missingDocuments(required []string, uploaded map[string]bool) []string {
	missing := []string{}
	for _, doc := range required {
		if !uploaded[doc] {
			missing = append(missing, doc)
		}
	}
	return missing
}

// sortMatches orders by score descending. Ties break by the nearer
// deadline, then by name, so equal-score ordering is a documented
// contract instead of an accident of catalog order.
func sortMatches(matches []MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		di, dj := matches[i].Scholarship.ApplicationDeadline, matches[j].Scholarship.ApplicationDeadline
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return matches[i].Scholarship.Name < matches[j].Scholarship.Name
	})
}

func summarize(matches []MatchResult) MatchSummary {
	summary := MatchSummary{ByProviderType: map[string]int{}}
	for _, m := range matches {
		switch {
		case m.MatchPercentage >= 70:
			summary.HighMatches++
		case m.MatchPercentage >= 40:
			summary.MediumMatches++
		default:
			summary.LowMatches++
		}
		if m.IsUrgent {
			summary.UrgentDeadlines++
		}
		summary.ByProviderType[string(m.Scholarship.ProviderType)]++
	}
	return summary
}
