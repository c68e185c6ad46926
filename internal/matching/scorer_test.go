package matching

import (
	"testing"
	"time"

	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

func testWeights(t *testing.T) ScoringWeights {
	t.Helper()
	w, err := DefaultWeights()
	if err != nil {
		t.Fatalf("loading default weights: %v", err)
	}
	return w
}

func TestDefaultWeights_SumTo95(t *testing.T) {
	w := testWeights(t)
	if got := w.MaxPossibleScore(); got != 95 {
		t.Fatalf("expected max possible score 95, got %d", got)
	}
	if got := w.QuickMaxScore(); got != 35 {
		t.Fatalf("expected quick max score 35, got %d", got)
	}
	if w.Version == "" {
		t.Fatal("expected a policy version")
	}
}

// Scenario from the product requirements: a strong STEM applicant against
// a government scholarship with a GWA floor, income ceiling and one
// required document they have not uploaded.
func TestScore_StrongStemApplicant(t *testing.T) {
	w := testWeights(t)

	s := models.Scholarship{
		ProviderType: models.ProviderGovernment,
		Eligibility: models.Eligibility{
			MinGWA:          floatPtr(85),
			IncomeCeiling:   floatPtr(300000),
			PriorityStrands: []string{"STEM"},
		},
		RequiredDocuments: []string{models.DocPSABirthCertificate},
	}
	p := models.StudentProfile{
		GWA:                   95,
		AnnualHouseholdIncome: 100000,
		SHSType:               models.SHSPublic,
		Strand:                models.StrandSTEM,
	}

	b := Score(s, p, nil, w)

	if b.StrandMatch != 5 {
		t.Fatalf("expected unconstrained strand bonus 5, got %d", b.StrandMatch)
	}
	if b.PriorityStrand != 10 {
		t.Fatalf("expected priority strand 10, got %d", b.PriorityStrand)
	}
	if b.GWAHigher != 10 {
		t.Fatalf("expected full gwa margin weight 10, got %d", b.GWAHigher)
	}
	if b.IncomeLower != 5 {
		t.Fatalf("expected income-lower bonus 5, got %d", b.IncomeLower)
	}
	if b.PublicSHS != 0 {
		t.Fatalf("expected no public-SHS bonus for a government provider, got %d", b.PublicSHS)
	}
	if b.DocumentsComplete != 0 {
		t.Fatalf("expected no documents bonus with PSA missing, got %d", b.DocumentsComplete)
	}
	if b.Total() != 30 {
		t.Fatalf("expected total 30, got %d", b.Total())
	}
	if pct := Percentage(b.Total(), w); pct != 32 {
		t.Fatalf("expected percentage 32, got %d", pct)
	}
}

func TestScore_ZeroIncomeCeilingSkipsRatio(t *testing.T) {
	w := testWeights(t)
	s := models.Scholarship{Eligibility: models.Eligibility{IncomeCeiling: floatPtr(0)}}
	p := models.StudentProfile{AnnualHouseholdIncome: 0}

	b := Score(s, p, nil, w)
	if b.IncomeLower != 0 {
		t.Fatalf("expected income bonus skipped for a zero ceiling, got %d", b.IncomeLower)
	}
}

func TestScore_GWAHalfWeightWithoutMinimum(t *testing.T) {
	w := testWeights(t)
	b := Score(models.Scholarship{}, models.StudentProfile{GWA: 88}, nil, w)
	if b.GWAHigher != w.GWAHigher/2 {
		t.Fatalf("expected half weight %d without a minimum, got %d", w.GWAHigher/2, b.GWAHigher)
	}

	s := models.Scholarship{Eligibility: models.Eligibility{MinGWA: floatPtr(85)}}
	b = Score(s, models.StudentProfile{GWA: 88}, nil, w)
	if b.GWAHigher != 0 {
		t.Fatalf("expected no bonus for a 3-point margin, got %d", b.GWAHigher)
	}
}

func TestScore_DocumentsComplete(t *testing.T) {
	w := testWeights(t)

	// Vacuously complete when nothing is required.
	b := Score(models.Scholarship{}, models.StudentProfile{}, nil, w)
	if b.DocumentsComplete != w.DocumentsComplete {
		t.Fatalf("expected vacuous documents bonus, got %d", b.DocumentsComplete)
	}

	s := models.Scholarship{RequiredDocuments: []string{models.DocPSABirthCertificate, models.DocITR}}
	uploaded := map[string]bool{models.DocPSABirthCertificate: true, models.DocITR: true}
	b = Score(s, models.StudentProfile{}, uploaded, w)
	if b.DocumentsComplete != w.DocumentsComplete {
		t.Fatalf("expected documents bonus with full set, got %d", b.DocumentsComplete)
	}

	delete(uploaded, models.DocITR)
	b = Score(s, models.StudentProfile{}, uploaded, w)
	if b.DocumentsComplete != 0 {
		t.Fatalf("expected no documents bonus with ITR missing, got %d", b.DocumentsComplete)
	}
}

func TestMatchesCourse_BidirectionalSubstring(t *testing.T) {
	priority := []string{"Computer Science", "Civil Engineering"}

	if !matchesCourse(priority, "BS COMPUTER SCIENCE") {
		t.Fatal("expected intended course containing a priority entry to match")
	}
	if !matchesCourse([]string{"BS Computer Science"}, "computer science") {
		t.Fatal("expected priority entry containing the intended course to match")
	}
	if matchesCourse(priority, "Nursing") {
		t.Fatal("expected unrelated course not to match")
	}
	// Strict containment only: the looser word-overlap rule belongs to the
	// validation suggestions, never to scoring.
	if matchesCourse([]string{"BS Computer Science"}, "BSCS Computer Science major in AI") {
		t.Fatal("expected an abbreviated degree variant not to match")
	}
	if matchesCourse(priority, "") {
		t.Fatal("expected empty intended course not to match")
	}
	if matchesCourse(nil, "Nursing") {
		t.Fatal("expected empty priority list not to match")
	}
}

func TestScore_FullTriggerReaches95(t *testing.T) {
	w := testWeights(t)

	s := models.Scholarship{
		ProviderType: models.ProviderNGO,
		Eligibility: models.Eligibility{
			MinGWA:          floatPtr(85),
			IncomeCeiling:   floatPtr(300000),
			AllowedStrands:  []string{"STEM"},
			PriorityStrands: []string{"STEM"},
			PriorityCourses: []string{"Computer Science"},
		},
		Location:          models.LocationConstraints{Nationwide: true, MinResidencyYears: intPtr(2)},
		RequiredDocuments: []string{models.DocPSABirthCertificate},
	}
	p := models.StudentProfile{
		GWA:                   95,
		AnnualHouseholdIncome: 100000,
		SHSType:               models.SHSPublic,
		Strand:                models.StrandSTEM,
		IntendedCourse:        "BS Computer Science",
		ResidencyYears:        10,
		IsPWD:                 true,
		IsSoloParentChild:     true,
		IsIndigenous:          true,
	}
	uploaded := map[string]bool{models.DocPSABirthCertificate: true}

	b := Score(s, p, uploaded, w)
	if b.Total() != 95 {
		t.Fatalf("expected every factor to trigger for total 95, got %d (%+v)", b.Total(), b)
	}
	if pct := Percentage(b.Total(), w); pct != 100 {
		t.Fatalf("expected percentage 100, got %d", pct)
	}
}

func TestQuickScore_OnlyQuickFactors(t *testing.T) {
	w := testWeights(t)

	s := models.Scholarship{
		ProviderType: models.ProviderPrivate,
		Eligibility: models.Eligibility{
			MinGWA:          floatPtr(80),
			IncomeCeiling:   floatPtr(300000),
			PriorityCourses: []string{"nursing"},
		},
		Location:          models.LocationConstraints{MinResidencyYears: intPtr(1)},
		RequiredDocuments: []string{models.DocPSABirthCertificate},
	}
	p := models.StudentProfile{
		GWA:            96,
		SHSType:        models.SHSPublic,
		IntendedCourse: "BS Nursing",
		ResidencyYears: 10,
		IsPWD:          true,
	}

	b := QuickScore(s, p, w)
	if b.PriorityCourse != w.PriorityCourse || b.PublicSHS != w.PublicSHS || b.StrandMatch != w.StrandMatch {
		t.Fatalf("expected course/shs/strand factors, got %+v", b)
	}
	if b.GWAHigher != 0 || b.DocumentsComplete != 0 || b.ResidencyMargin != 0 || b.PWD != 0 || b.IncomeLower != 0 {
		t.Fatalf("expected non-quick factors to stay zero, got %+v", b)
	}
}

// Priority strand is a full-match factor; the quick variant must never
// award it, or a quick score could exceed the quick maximum and saturate
// the percentage.
func TestQuickScore_PriorityStrandScoresOnlyInFullMatch(t *testing.T) {
	w := testWeights(t)

	s := models.Scholarship{
		ProviderType: models.ProviderPrivate,
		Eligibility: models.Eligibility{
			PriorityStrands: []string{"STEM"},
			PriorityCourses: []string{"Computer Science"},
		},
	}
	p := models.StudentProfile{
		SHSType:        models.SHSPublic,
		Strand:         models.StrandSTEM,
		IntendedCourse: "BS Computer Science",
	}

	quick := QuickScore(s, p, w)
	if quick.PriorityStrand != 0 {
		t.Fatalf("expected no priority-strand points in a quick score, got %d", quick.PriorityStrand)
	}
	if total := quick.Total(); total > w.QuickMaxScore() {
		t.Fatalf("quick score %d exceeds quick max %d", total, w.QuickMaxScore())
	}
	if total := quick.Total(); total != w.QuickMaxScore() {
		t.Fatalf("expected all three quick factors for %d, got %d (%+v)", w.QuickMaxScore(), total, quick)
	}

	full := Score(s, p, nil, w)
	if full.PriorityStrand != w.PriorityStrand {
		t.Fatalf("expected full match to award priority strand %d, got %d", w.PriorityStrand, full.PriorityStrand)
	}
}

func TestQuickPercentage_BaseAndCeiling(t *testing.T) {
	w := testWeights(t)

	if pct := QuickPercentage(0, w); pct != QuickBasePercentage {
		t.Fatalf("expected base percentage %d for zero score, got %d", QuickBasePercentage, pct)
	}
	if pct := QuickPercentage(w.QuickMaxScore(), w); pct != 100 {
		t.Fatalf("expected 100 at quick max, got %d", pct)
	}
}

func TestScore_DeterministicForFixedInputs(t *testing.T) {
	w := testWeights(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	s := openScholarship(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	s.Eligibility.MinGWA = floatPtr(80)
	p := baseProfile()

	first := Score(s, p, nil, w)
	second := Score(s, p, nil, w)
	if first != second {
		t.Fatalf("expected identical breakdowns, got %+v vs %+v", first, second)
	}
	if !Eligible(s, p, now) {
		t.Fatal("expected the scenario scholarship to be eligible")
	}
}
