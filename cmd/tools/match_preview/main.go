// Previews quick-match results for an ad-hoc applicant profile without
// creating a student record. Useful for checking how catalog or weight
// changes shift the rankings.
//
// Usage: go run ./cmd/tools/match_preview -gwa 92 -income 180000 -strand STEM -city 402105
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/iskolarhub/iskolarhub-backend/internal/db"
	"github.com/iskolarhub/iskolarhub-backend/internal/matching"
	"github.com/iskolarhub/iskolarhub-backend/internal/models"
	"github.com/iskolarhub/iskolarhub-backend/internal/validation"
)

func main() {
	gwa := flag.Float64("gwa", 0, "general weighted average (70-100, or 1.0-5.0 collegiate)")
	income := flag.Float64("income", 0, "annual household income in PHP")
	shs := flag.String("shs", "Public", "senior high school type (Public or Private)")
	strand := flag.String("strand", "", "SHS strand (STEM, ABM, HUMSS, GAS, TVL, Sports, Arts)")
	course := flag.String("course", "", "intended college course")
	city := flag.Int("city", 0, "city ID for location-restricted scholarships")
	residency := flag.Int("residency", 0, "years of residency in the city")
	limit := flag.Int("limit", 20, "maximum rows to display")
	flag.Parse()

	normalized, err := validation.NormalizeGWA(*gwa)
	if err != nil {
		log.Fatalf("Invalid GWA %.2f: %v", *gwa, err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	weights, err := matching.DefaultWeights()
	if err != nil {
		log.Fatalf("Failed to load scoring weights: %v", err)
	}

	engine := matching.NewEngine(db.NewStore(pool), weights)
	resp, err := engine.QuickMatch(ctx, matching.QuickProfile{
		GWA:            normalized,
		AnnualIncome:   *income,
		SHSType:        models.SHSType(*shs),
		Strand:         models.Strand(*strand),
		IntendedCourse: *course,
		CityID:         *city,
		ResidencyYears: *residency,
	})
	if err != nil {
		log.Fatalf("Quick match failed: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Scholarship", "Provider", "Score", "Match %", "Deadline", "Days Left"})

	for i, m := range resp.Matches {
		if i >= *limit {
			break
		}
		days := fmt.Sprintf("%d", m.DaysRemaining)
		if m.IsUrgent {
			days += " (urgent)"
		}
		t.AppendRow(table.Row{
			m.Scholarship.Name,
			m.Scholarship.ProviderName,
			m.MatchScore,
			fmt.Sprintf("%d%%", m.MatchPercentage),
			m.Scholarship.ApplicationDeadline.Format("2006-01-02"),
			days,
		})
	}
	t.Render()

	fmt.Printf("\n%d eligible scholarships (processed in %dms)\n", resp.TotalMatches, resp.ProcessingTimeMs)
}
