// Seeds the scholarship catalog from a YAML file. Records are upserted by
// (name, provider_name), so re-running with an updated file refreshes the
// catalog in place.
//
// Usage: go run ./cmd/tools/seed_catalog -file seeds/catalog.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iskolarhub/iskolarhub-backend/internal/catalog"
	"github.com/iskolarhub/iskolarhub-backend/internal/db"
	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

type seedFile struct {
	Scholarships []seedScholarship `yaml:"scholarships"`
}

type seedScholarship struct {
	Name                string   `yaml:"name"`
	ProviderName        string   `yaml:"provider_name"`
	ProviderType        string   `yaml:"provider_type"`
	Description         string   `yaml:"description"`
	ApplicationStart    string   `yaml:"application_start"` // YYYY-MM-DD
	ApplicationDeadline string   `yaml:"application_deadline"`
	MinGWA              *float64 `yaml:"min_gwa"`
	IncomeCeiling       *float64 `yaml:"income_ceiling"`
	AllowedStrands      []string `yaml:"allowed_strands"`
	PriorityStrands     []string `yaml:"priority_strands"`
	PriorityCourses     []string `yaml:"priority_courses"`
	Nationwide          *bool    `yaml:"nationwide"`
	RegionIDs           []int    `yaml:"region_ids"`
	ProvinceIDs         []int    `yaml:"province_ids"`
	CityIDs             []int    `yaml:"city_ids"`
	MinResidencyYears   *int     `yaml:"min_residency_years"`
	RequiredDocuments   []string `yaml:"required_documents"`
}

func main() {
	file := flag.String("file", "seeds/catalog.yaml", "path to the seed YAML file")
	flag.Parse()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	var seeds seedFile
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}
	if len(seeds.Scholarships) == 0 {
		log.Fatal("Seed file contains no scholarships")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := db.NewStore(pool)
	seeded := 0
	for _, seed := range seeds.Scholarships {
		sch, err := seed.toModel()
		if err != nil {
			log.Printf("Skipping %q: %v", seed.Name, err)
			continue
		}
		if err := store.UpsertScholarship(ctx, sch); err != nil {
			log.Printf("Failed to seed %q: %v", seed.Name, err)
			continue
		}
		seeded++
	}

	log.Printf("Seeded %d/%d scholarships", seeded, len(seeds.Scholarships))
}

func (s seedScholarship) toModel() (models.Scholarship, error) {
	if !models.ValidProviderType(models.ProviderType(s.ProviderType)) {
		return models.Scholarship{}, fmt.Errorf("unknown provider_type %q", s.ProviderType)
	}

	deadline, err := time.Parse("2006-01-02", s.ApplicationDeadline)
	if err != nil {
		return models.Scholarship{}, err
	}

	var start *time.Time
	if s.ApplicationStart != "" {
		t, err := time.Parse("2006-01-02", s.ApplicationStart)
		if err != nil {
			return models.Scholarship{}, err
		}
		start = &t
	}

	nationwide := true
	if s.Nationwide != nil {
		nationwide = *s.Nationwide
	}

	sanitized := catalog.SanitizeDescription(s.Description)
	return models.Scholarship{
		Name:                s.Name,
		ProviderName:        s.ProviderName,
		ProviderType:        models.ProviderType(s.ProviderType),
		Description:         sanitized,
		Summary:             catalog.Summarize(sanitized),
		ApplicationStart:    start,
		ApplicationDeadline: deadline,
		Status:              models.StatusOpen,
		Eligibility: models.Eligibility{
			MinGWA:          s.MinGWA,
			IncomeCeiling:   s.IncomeCeiling,
			AllowedStrands:  s.AllowedStrands,
			PriorityStrands: s.PriorityStrands,
			PriorityCourses: s.PriorityCourses,
		},
		Location: models.LocationConstraints{
			Nationwide:        nationwide,
			RegionIDs:         s.RegionIDs,
			ProvinceIDs:       s.ProvinceIDs,
			CityIDs:           s.CityIDs,
			MinResidencyYears: s.MinResidencyYears,
		},
		RequiredDocuments: s.RequiredDocuments,
	}, nil
}
