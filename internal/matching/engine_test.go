package matching

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

// fakeCatalog is an in-memory Catalog for engine tests.
type fakeCatalog struct {
	students     map[uuid.UUID]models.StudentProfile
	documents    map[uuid.UUID][]string
	scholarships []models.Scholarship
	cities       map[int]models.LocationRef
}

func (f *fakeCatalog) GetStudent(_ context.Context, id uuid.UUID) (*models.StudentProfile, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, models.ErrStudentNotFound
	}
	return &student, nil
}

func (f *fakeCatalog) GetStudentDocuments(_ context.Context, id uuid.UUID) ([]string, error) {
	return f.documents[id], nil
}

func (f *fakeCatalog) ListOpenScholarships(_ context.Context, now time.Time, gwa, income float64) ([]models.Scholarship, error) {
	// Mirrors the storage pre-filter: open, future deadline, and hard
	// GWA/income constraints that do not already rule the student out.
	var out []models.Scholarship
	for _, s := range f.scholarships {
		if s.Status != models.StatusOpen || s.ApplicationDeadline.Before(dateOf(now)) {
			continue
		}
		if s.Eligibility.MinGWA != nil && *s.Eligibility.MinGWA > gwa {
			continue
		}
		if s.Eligibility.IncomeCeiling != nil && *s.Eligibility.IncomeCeiling < income {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeCatalog) GetCityAncestry(_ context.Context, cityID int) (*models.LocationRef, error) {
	ref, ok := f.cities[cityID]
	if !ok {
		return nil, models.ErrCityNotFound
	}
	return &ref, nil
}

func testEngine(t *testing.T, catalog *fakeCatalog, now time.Time) *Engine {
	t.Helper()
	w, err := DefaultWeights()
	if err != nil {
		t.Fatalf("loading weights: %v", err)
	}
	e := NewEngine(catalog, w)
	e.now = func() time.Time { return now }
	return e
}

func matchFixture() (*fakeCatalog, uuid.UUID) {
	studentID := uuid.MustParse("0e3f0aa1-14b2-4a86-9a63-1df6cf8b9f01")
	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	qualifying := models.Scholarship{
		ID:                  uuid.MustParse("37a4f7c2-5ad7-4a5e-8d2e-0f50a8f6a001"),
		Name:                "DOST Merit Scholarship",
		ProviderName:        "DOST",
		ProviderType:        models.ProviderGovernment,
		Status:              models.StatusOpen,
		ApplicationDeadline: deadline,
		Eligibility: models.Eligibility{
			MinGWA:          floatPtr(85),
			IncomeCeiling:   floatPtr(300000),
			PriorityStrands: []string{"STEM"},
		},
		Location:          models.LocationConstraints{Nationwide: true},
		RequiredDocuments: []string{models.DocPSABirthCertificate},
	}
	tooStrict := models.Scholarship{
		ID:                  uuid.MustParse("37a4f7c2-5ad7-4a5e-8d2e-0f50a8f6a002"),
		Name:                "Dean's Circle Grant",
		ProviderName:        "Dean's Circle Foundation",
		ProviderType:        models.ProviderNGO,
		Status:              models.StatusOpen,
		ApplicationDeadline: deadline,
		Eligibility:         models.Eligibility{MinGWA: floatPtr(97)},
		Location:            models.LocationConstraints{Nationwide: true},
	}

	return &fakeCatalog{
		students: map[uuid.UUID]models.StudentProfile{
			studentID: {
				ID:                    studentID,
				Name:                  "Juan Dela Cruz",
				GWA:                   95,
				AnnualHouseholdIncome: 100000,
				SHSType:               models.SHSPublic,
				Strand:                models.StrandSTEM,
				Location:              models.LocationRef{RegionID: 13, ProvinceID: 4021, CityID: 402105},
				ResidencyYears:        5,
			},
		},
		documents:    map[uuid.UUID][]string{},
		scholarships: []models.Scholarship{tooStrict, qualifying},
		cities: map[int]models.LocationRef{
			402105: {RegionID: 13, ProvinceID: 4021, CityID: 402105},
		},
	}, studentID
}

func TestMatchScholarships_UnknownStudent(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	catalog, _ := matchFixture()
	e := testEngine(t, catalog, now)

	_, err := e.MatchScholarships(context.Background(), uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"))
	if !errors.Is(err, models.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestMatchScholarships_FiltersAndScores(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	catalog, studentID := matchFixture()
	e := testEngine(t, catalog, now)

	resp, err := e.MatchScholarships(context.Background(), studentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.StudentName != "Juan Dela Cruz" {
		t.Fatalf("expected student name in response, got %q", resp.StudentName)
	}
	if resp.TotalMatches != 1 {
		t.Fatalf("expected the 97-GWA scholarship excluded, got %d matches", resp.TotalMatches)
	}

	m := resp.Matches[0]
	if m.Scholarship.Name != "DOST Merit Scholarship" {
		t.Fatalf("unexpected match: %s", m.Scholarship.Name)
	}
	if m.MatchScore != 30 || m.MatchPercentage != 32 {
		t.Fatalf("expected score 30 at 32%%, got %d at %d%%", m.MatchScore, m.MatchPercentage)
	}
	if !reflect.DeepEqual(m.MissingDocuments, []string{models.DocPSABirthCertificate}) {
		t.Fatalf("expected PSA missing, got %v", m.MissingDocuments)
	}
	if m.DaysRemaining != 83 || m.IsUrgent {
		t.Fatalf("unexpected deadline annotation: days=%d urgent=%v", m.DaysRemaining, m.IsUrgent)
	}
	if resp.Summary.LowMatches != 1 || resp.Summary.ByProviderType["Government"] != 1 {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}
}

func TestMatchScholarships_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	catalog, studentID := matchFixture()
	e := testEngine(t, catalog, now)

	first, err := e.MatchScholarships(context.Background(), studentID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := e.MatchScholarships(context.Background(), studentID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	first.ProcessingTimeMs, second.ProcessingTimeMs = 0, 0
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical output for unchanged inputs")
	}
}

func TestQuickMatch_BasePercentageAndQuickFactors(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	catalog, _ := matchFixture()
	e := testEngine(t, catalog, now)

	resp, err := e.QuickMatch(context.Background(), QuickProfile{
		GWA:          95,
		AnnualIncome: 100000,
		SHSType:      models.SHSPublic,
		Strand:       models.StrandSTEM,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalMatches != 1 {
		t.Fatalf("expected 1 quick match, got %d", resp.TotalMatches)
	}

	m := resp.Matches[0]
	// Strand bonus only: unconstrained allow-list on the DOST record.
	if m.MatchScore != 5 {
		t.Fatalf("expected quick score 5, got %d", m.MatchScore)
	}
	// 25 base + round(5/35*75) = 25 + 11
	if m.MatchPercentage != 36 {
		t.Fatalf("expected quick percentage 36, got %d", m.MatchPercentage)
	}
	if m.Breakdown.DocumentsComplete != 0 || m.Breakdown.GWAHigher != 0 || m.Breakdown.IncomeLower != 0 {
		t.Fatalf("expected only quick factors in breakdown, got %+v", m.Breakdown)
	}
}

func TestQuickMatch_UnknownCity(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	catalog, _ := matchFixture()
	e := testEngine(t, catalog, now)

	_, err := e.QuickMatch(context.Background(), QuickProfile{GWA: 90, SHSType: models.SHSPublic, CityID: 999999})
	if !errors.Is(err, models.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
}
