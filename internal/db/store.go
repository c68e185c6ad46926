package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iskolarhub/iskolarhub-backend/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// scholarshipCols is the comprehensive column list for scholarship queries.
const scholarshipCols = `id, name, provider_name, provider_type, description_html, summary,
	application_start, application_deadline, status,
	min_gwa, income_ceiling, allowed_strands, priority_strands, priority_courses,
	nationwide, region_ids, province_ids, city_ids, min_residency_years,
	required_documents, created_at, updated_at`

func scanScholarship(scan func(dest ...interface{}) error) (models.Scholarship, error) {
	var s models.Scholarship
	err := scan(
		&s.ID, &s.Name, &s.ProviderName, &s.ProviderType, &s.Description, &s.Summary,
		&s.ApplicationStart, &s.ApplicationDeadline, &s.Status,
		&s.Eligibility.MinGWA, &s.Eligibility.IncomeCeiling,
		&s.Eligibility.AllowedStrands, &s.Eligibility.PriorityStrands, &s.Eligibility.PriorityCourses,
		&s.Location.Nationwide, &s.Location.RegionIDs, &s.Location.ProvinceIDs, &s.Location.CityIDs,
		&s.Location.MinResidencyYears,
		&s.RequiredDocuments, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Students

func (s *Store) GetStudent(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error) {
	var p models.StudentProfile
	var strand, course *string

	err := s.pool.QueryRow(ctx, `
		SELECT st.id, st.name, st.gwa, st.annual_household_income, st.strand, st.intended_course,
		       st.shs_type, st.city_id, c.province_id, p.region_id,
		       st.residency_years, st.is_pwd, st.is_solo_parent_child, st.is_indigenous, st.created_at
		FROM students st
		JOIN cities c ON c.id = st.city_id
		JOIN provinces p ON p.id = c.province_id
		WHERE st.id = $1
	`, id).Scan(
		&p.ID, &p.Name, &p.GWA, &p.AnnualHouseholdIncome, &strand, &course,
		&p.SHSType, &p.Location.CityID, &p.Location.ProvinceID, &p.Location.RegionID,
		&p.ResidencyYears, &p.IsPWD, &p.IsSoloParentChild, &p.IsIndigenous, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student failed: %w", err)
	}

	if strand != nil {
		p.Strand = models.Strand(*strand)
	}
	if course != nil {
		p.IntendedCourse = *course
	}
	return &p, nil
}

func (s *Store) CreateStudent(ctx context.Context, p models.StudentProfile) (*models.StudentProfile, error) {
	var strand *string
	if p.Strand != "" {
		v := string(p.Strand)
		strand = &v
	}
	var course *string
	if p.IntendedCourse != "" {
		course = &p.IntendedCourse
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO students (
			name, gwa, annual_household_income, strand, intended_course, shs_type,
			city_id, residency_years, is_pwd, is_solo_parent_child, is_indigenous
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`,
		p.Name, p.GWA, p.AnnualHouseholdIncome, strand, course, p.SHSType,
		p.Location.CityID, p.ResidencyYears, p.IsPWD, p.IsSoloParentChild, p.IsIndigenous,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert student failed: %w", err)
	}

	return &p, nil
}

func (s *Store) GetStudentDocuments(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT document_type FROM student_documents
		WHERE student_id = $1
		ORDER BY document_type
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan document failed: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) AddStudentDocument(ctx context.Context, id uuid.UUID, documentType string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO student_documents (student_id, document_type)
		VALUES ($1, $2)
		ON CONFLICT (student_id, document_type) DO NOTHING
	`, id, documentType)
	if err != nil {
		// A missing student surfaces as an FK violation.
		var exists bool
		if checkErr := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)", id).Scan(&exists); checkErr == nil && !exists {
			return models.ErrStudentNotFound
		}
		return fmt.Errorf("add document failed: %w", err)
	}
	return nil
}

// Geography

func (s *Store) GetCityAncestry(ctx context.Context, cityID int) (*models.LocationRef, error) {
	var ref models.LocationRef
	err := s.pool.QueryRow(ctx, `
		SELECT c.id, c.province_id, p.region_id
		FROM cities c
		JOIN provinces p ON p.id = c.province_id
		WHERE c.id = $1
	`, cityID).Scan(&ref.CityID, &ref.ProvinceID, &ref.RegionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("city ancestry failed: %w", err)
	}
	return &ref, nil
}

// Scholarships

// ListOpenScholarships is the storage pre-filter for a match run: open
// records with a live deadline whose hard GWA/income constraints do not
// already rule the student out. The engine re-validates every gate, so
// this only has to be a superset of the true candidate set.
func (s *Store) ListOpenScholarships(ctx context.Context, now time.Time, gwa, income float64) ([]models.Scholarship, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM scholarships
		WHERE status = 'open'
		  AND application_deadline >= $1::date
		  AND (min_gwa IS NULL OR min_gwa <= $2)
		  AND (income_ceiling IS NULL OR income_ceiling >= $3)
		ORDER BY application_deadline ASC, name ASC
	`, scholarshipCols)

	rows, err := s.pool.Query(ctx, sql, now.UTC(), gwa, income)
	if err != nil {
		return nil, fmt.Errorf("open catalog query failed: %w", err)
	}
	defer rows.Close()

	var out []models.Scholarship
	for rows.Next() {
		sch, err := scanScholarship(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan scholarship failed: %w", err)
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

type ListParams struct {
	Query        string
	ProviderType []string
	Strand       string // keeps only scholarships this strand could hold
	Status       string // "open" (default), "closed", or "all"
	SortBy       string // "deadline" (default) or "newest"
	Limit        int
	Offset       int
}

type ListResult struct {
	Scholarships []models.Scholarship `json:"scholarships"`
	Total        int                  `json:"total"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

// buildListWhere constructs the WHERE clause and arguments for
// ListScholarships.
func buildListWhere(params ListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (name ILIKE '%%' || $%d || '%%' OR provider_name ILIKE '%%' || $%d || '%%' OR summary ILIKE '%%' || $%d || '%%')", argIdx, argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if len(params.ProviderType) > 0 {
		where += fmt.Sprintf(" AND provider_type = ANY($%d)", argIdx)
		args = append(args, params.ProviderType)
		argIdx++
	}
	if params.Strand != "" {
		where += fmt.Sprintf(" AND (allowed_strands = '{}' OR $%d = ANY(allowed_strands))", argIdx)
		args = append(args, params.Strand)
		argIdx++
	}

	status := params.Status
	if status == "" {
		status = models.StatusOpen
	}
	if status != "all" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	return where, args
}

func (s *Store) ListScholarships(ctx context.Context, params ListParams) (*ListResult, error) {
	where, args := buildListWhere(params)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM scholarships "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM scholarships %s", scholarshipCols, where)
	switch params.SortBy {
	case "newest":
		selectSQL += " ORDER BY created_at DESC"
	default: // "deadline"
		selectSQL += " ORDER BY application_deadline ASC, name ASC"
	}

	argIdx := len(args) + 1
	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var scholarships []models.Scholarship
	for rows.Next() {
		sch, err := scanScholarship(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		scholarships = append(scholarships, sch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if scholarships == nil {
		scholarships = []models.Scholarship{}
	}

	return &ListResult{
		Scholarships: scholarships,
		Total:        total,
		Limit:        params.Limit,
		Offset:       params.Offset,
	}, nil
}

func (s *Store) GetScholarship(ctx context.Context, id uuid.UUID) (*models.Scholarship, error) {
	sql := fmt.Sprintf("SELECT %s FROM scholarships WHERE id = $1", scholarshipCols)
	sch, err := scanScholarship(s.pool.QueryRow(ctx, sql, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrScholarshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scholarship failed: %w", err)
	}
	return &sch, nil
}

func (s *Store) CreateScholarship(ctx context.Context, sch models.Scholarship) (*models.Scholarship, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO scholarships (
			name, provider_name, provider_type, description_html, summary,
			application_start, application_deadline, status,
			min_gwa, income_ceiling, allowed_strands, priority_strands, priority_courses,
			nationwide, region_ids, province_ids, city_ids, min_residency_years,
			required_documents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`,
		sch.Name, sch.ProviderName, sch.ProviderType, sch.Description, sch.Summary,
		sch.ApplicationStart, sch.ApplicationDeadline, sch.Status,
		sch.Eligibility.MinGWA, sch.Eligibility.IncomeCeiling,
		emptyIfNil(sch.Eligibility.AllowedStrands), emptyIfNil(sch.Eligibility.PriorityStrands), emptyIfNil(sch.Eligibility.PriorityCourses),
		sch.Location.Nationwide, emptyIntsIfNil(sch.Location.RegionIDs), emptyIntsIfNil(sch.Location.ProvinceIDs), emptyIntsIfNil(sch.Location.CityIDs),
		sch.Location.MinResidencyYears, emptyIfNil(sch.RequiredDocuments),
	).Scan(&sch.ID, &sch.CreatedAt, &sch.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert scholarship failed: %w", err)
	}
	return &sch, nil
}

func (s *Store) UpdateScholarship(ctx context.Context, sch models.Scholarship) (*models.Scholarship, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE scholarships SET
			name = $2, provider_name = $3, provider_type = $4,
			description_html = $5, summary = $6,
			application_start = $7, application_deadline = $8, status = $9,
			min_gwa = $10, income_ceiling = $11,
			allowed_strands = $12, priority_strands = $13, priority_courses = $14,
			nationwide = $15, region_ids = $16, province_ids = $17, city_ids = $18,
			min_residency_years = $19, required_documents = $20,
			updated_at = NOW()
		WHERE id = $1
	`,
		sch.ID, sch.Name, sch.ProviderName, sch.ProviderType,
		sch.Description, sch.Summary,
		sch.ApplicationStart, sch.ApplicationDeadline, sch.Status,
		sch.Eligibility.MinGWA, sch.Eligibility.IncomeCeiling,
		emptyIfNil(sch.Eligibility.AllowedStrands), emptyIfNil(sch.Eligibility.PriorityStrands), emptyIfNil(sch.Eligibility.PriorityCourses),
		sch.Location.Nationwide, emptyIntsIfNil(sch.Location.RegionIDs), emptyIntsIfNil(sch.Location.ProvinceIDs), emptyIntsIfNil(sch.Location.CityIDs),
		sch.Location.MinResidencyYears, emptyIfNil(sch.RequiredDocuments),
	)
	if err != nil {
		return nil, fmt.Errorf("update scholarship failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, models.ErrScholarshipNotFound
	}
	return s.GetScholarship(ctx, sch.ID)
}

// UpsertScholarship inserts or refreshes a record keyed by (name,
// provider_name); used by the catalog seed tool.
func (s *Store) UpsertScholarship(ctx context.Context, sch models.Scholarship) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scholarships (
			name, provider_name, provider_type, description_html, summary,
			application_start, application_deadline, status,
			min_gwa, income_ceiling, allowed_strands, priority_strands, priority_courses,
			nationwide, region_ids, province_ids, city_ids, min_residency_years,
			required_documents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (name, provider_name) DO UPDATE SET
			provider_type = EXCLUDED.provider_type,
			description_html = EXCLUDED.description_html,
			summary = EXCLUDED.summary,
			application_start = EXCLUDED.application_start,
			application_deadline = EXCLUDED.application_deadline,
			status = EXCLUDED.status,
			min_gwa = EXCLUDED.min_gwa,
			income_ceiling = EXCLUDED.income_ceiling,
			allowed_strands = EXCLUDED.allowed_strands,
			priority_strands = EXCLUDED.priority_strands,
			priority_courses = EXCLUDED.priority_courses,
			nationwide = EXCLUDED.nationwide,
			region_ids = EXCLUDED.region_ids,
			province_ids = EXCLUDED.province_ids,
			city_ids = EXCLUDED.city_ids,
			min_residency_years = EXCLUDED.min_residency_years,
			required_documents = EXCLUDED.required_documents,
			updated_at = NOW()
	`,
		sch.Name, sch.ProviderName, sch.ProviderType, sch.Description, sch.Summary,
		sch.ApplicationStart, sch.ApplicationDeadline, sch.Status,
		sch.Eligibility.MinGWA, sch.Eligibility.IncomeCeiling,
		emptyIfNil(sch.Eligibility.AllowedStrands), emptyIfNil(sch.Eligibility.PriorityStrands), emptyIfNil(sch.Eligibility.PriorityCourses),
		sch.Location.Nationwide, emptyIntsIfNil(sch.Location.RegionIDs), emptyIntsIfNil(sch.Location.ProvinceIDs), emptyIntsIfNil(sch.Location.CityIDs),
		sch.Location.MinResidencyYears, emptyIfNil(sch.RequiredDocuments),
	)
	if err != nil {
		return fmt.Errorf("upsert scholarship failed: %w", err)
	}
	return nil
}

// CloseExpired flips open scholarships whose deadline has passed to
// closed. Run by the deadline sweeper; the engine's deadline gate would
// exclude them anyway, so this only keeps the stored status honest.
func (s *Store) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE scholarships
		SET status = 'closed', updated_at = NOW()
		WHERE status = 'open' AND application_deadline < $1::date
	`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("close expired failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total, open, students int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM scholarships").Scan(&total)
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM scholarships WHERE status = 'open' AND application_deadline >= NOW()::date").Scan(&open)
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&students)
	stats["total_scholarships"] = total
	stats["open_scholarships"] = open
	stats["students"] = students

	providerCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT provider_type, COUNT(*) FROM scholarships GROUP BY provider_type")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var providerType string
			var count int
			if scanErr := rows.Scan(&providerType, &count); scanErr == nil {
				providerCounts[providerType] = count
			}
		}
	}
	stats["by_provider_type"] = providerCounts

	var urgent int
	s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM scholarships
		WHERE status = 'open'
		  AND application_deadline >= NOW()::date
		  AND application_deadline <= NOW()::date + INTERVAL '14 days'
	`).Scan(&urgent)
	stats["urgent_deadlines"] = urgent

	return stats, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func emptyIntsIfNil(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
