package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/iskolarhub/iskolarhub-backend/internal/catalog"
	"github.com/iskolarhub/iskolarhub-backend/internal/db"
	"github.com/iskolarhub/iskolarhub-backend/internal/jobs"
	"github.com/iskolarhub/iskolarhub-backend/internal/matching"
	"github.com/iskolarhub/iskolarhub-backend/internal/models"
	"github.com/iskolarhub/iskolarhub-backend/internal/validation"
)

type Server struct {
	Store   *db.Store
	Engine  *matching.Engine
	Sweeper *jobs.Sweeper
	Echo    *echo.Echo
	DB      *pgxpool.Pool
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, weights matching.ScoringWeights) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:5173"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Admin-Secret"},
	}))

	store := db.NewStore(pool)

	s := &Server{
		DB:      pool,
		Store:   store,
		Engine:  matching.NewEngine(store, weights),
		Sweeper: jobs.NewSweeper(store, sweepSchedule()),
		Echo:    e,
	}

	s.routes()
	return s
}

func sweepSchedule() string {
	if spec := strings.TrimSpace(os.Getenv("SWEEP_SCHEDULE")); spec != "" {
		return spec
	}
	return "10 0 * * *"
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Catalog
	api.GET("/scholarships", s.handleListScholarships)
	api.GET("/scholarships/:id", s.handleGetScholarship)
	api.GET("/stats", s.handleGetStats)

	// Matching
	api.GET("/students/:id/matches", s.handleMatchStudent)
	api.POST("/match/quick", s.handleQuickMatch)
	api.GET("/match/weights", s.handleGetWeights)

	// Students
	api.POST("/students", s.handleCreateStudent)
	api.GET("/students/:id", s.handleGetStudent)
	api.POST("/students/:id/documents", s.handleAddStudentDocument)

	// Admin Routes (Catalog management)
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/scholarships", s.handleCreateScholarship)
	admin.PATCH("/scholarships/:id", s.handleUpdateScholarship)
	admin.POST("/admin/close-expired", s.handleCloseExpired)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Matching handlers

func (s *Server) handleMatchStudent(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}

	resp, err := s.Engine.MatchScholarships(c.Request().Context(), studentID)
	if errors.Is(err, models.ErrStudentNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Student not found"})
	}
	if err != nil {
		c.Logger().Errorf("Matching failed for %s: %v", studentID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleQuickMatch(c echo.Context) error {
	var req validation.QuickMatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if problems := validation.QuickMatchProblems(&req); len(problems) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": problems})
	}

	resp, err := s.Engine.QuickMatch(c.Request().Context(), matching.QuickProfile{
		GWA:            req.GWA,
		AnnualIncome:   req.AnnualIncome,
		SHSType:        models.SHSType(req.SHSType),
		Strand:         models.Strand(req.Strand),
		IntendedCourse: req.IntendedCourse,
		CityID:         req.CityID,
		ResidencyYears: req.ResidencyYears,
	})
	if errors.Is(err, models.ErrCityNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "City not found"})
	}
	if err != nil {
		c.Logger().Errorf("Quick match failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetWeights(c echo.Context) error {
	weights := s.Engine.Weights()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"weights":               weights,
		"max_possible_score":    weights.MaxPossibleScore(),
		"quick_max_score":       weights.QuickMaxScore(),
		"quick_base_percentage": matching.QuickBasePercentage,
	})
}

// Student handlers

func (s *Server) handleCreateStudent(c echo.Context) error {
	var req validation.CreateStudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if problems := validation.CreateStudentProblems(&req); len(problems) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": problems})
	}

	// Resolve geographic ancestry so the profile carries region/province.
	ancestry, err := s.Store.GetCityAncestry(c.Request().Context(), req.CityID)
	if errors.Is(err, models.ErrCityNotFound) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": []validation.FieldError{{Field: "city_id", Message: "unknown city"}},
		})
	}
	if err != nil {
		c.Logger().Errorf("City lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	student, err := s.Store.CreateStudent(c.Request().Context(), models.StudentProfile{
		Name:                  req.Name,
		GWA:                   req.GWA,
		AnnualHouseholdIncome: req.AnnualIncome,
		Strand:                models.Strand(req.Strand),
		IntendedCourse:        req.IntendedCourse,
		SHSType:               models.SHSType(req.SHSType),
		Location:              *ancestry,
		ResidencyYears:        req.ResidencyYears,
		IsPWD:                 req.IsPWD,
		IsSoloParentChild:     req.IsSoloParent,
		IsIndigenous:          req.IsIndigenous,
	})
	if err != nil {
		c.Logger().Errorf("Create student failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusCreated, student)
}

func (s *Server) handleGetStudent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}

	student, err := s.Store.GetStudent(c.Request().Context(), id)
	if errors.Is(err, models.ErrStudentNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Student not found"})
	}
	if err != nil {
		c.Logger().Errorf("Get student failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, student)
}

func (s *Server) handleAddStudentDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}

	var req struct {
		DocumentType string `json:"document_type"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if problem := validation.DocumentTypeProblem(req.DocumentType); problem != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": []validation.FieldError{*problem}})
	}

	if err := s.Store.AddStudentDocument(c.Request().Context(), id, req.DocumentType); err != nil {
		if errors.Is(err, models.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Student not found"})
		}
		c.Logger().Errorf("Add document failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"status": "recorded", "document_type": req.DocumentType})
}

// Catalog handlers

func (s *Server) handleListScholarships(c echo.Context) error {
	limit := 20
	offset := 0
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		offset = o
	}

	result, err := s.Store.ListScholarships(c.Request().Context(), db.ListParams{
		Query:        c.QueryParam("q"),
		ProviderType: splitCSV(c.QueryParam("provider_type")),
		Strand:       c.QueryParam("strand"),
		Status:       c.QueryParam("status"),
		SortBy:       c.QueryParam("sort"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		c.Logger().Errorf("Failed to list scholarships: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetScholarship(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid scholarship ID"})
	}

	sch, err := s.Store.GetScholarship(c.Request().Context(), id)
	if errors.Is(err, models.ErrScholarshipNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Scholarship not found"})
	}
	if err != nil {
		c.Logger().Errorf("Get scholarship failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, sch)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

// Admin handlers

// ScholarshipRequest is the admin payload for creating or replacing a
// scholarship record.
type ScholarshipRequest struct {
	Name                string                     `json:"name"`
	ProviderName        string                     `json:"provider_name"`
	ProviderType        string                     `json:"provider_type"`
	Description         string                     `json:"description"`
	ApplicationStart    *time.Time                 `json:"application_start"`
	ApplicationDeadline time.Time                  `json:"application_deadline"`
	Status              string                     `json:"status"`
	Eligibility         models.Eligibility         `json:"eligibility"`
	Location            models.LocationConstraints `json:"location"`
	RequiredDocuments   []string                   `json:"required_documents"`
}

func (r *ScholarshipRequest) problems() []validation.FieldError {
	problems := []validation.FieldError{}
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, validation.FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(r.ProviderName) == "" {
		problems = append(problems, validation.FieldError{Field: "provider_name", Message: "is required"})
	}
	if !models.ValidProviderType(models.ProviderType(r.ProviderType)) {
		problems = append(problems, validation.FieldError{Field: "provider_type", Message: "must be one of: Government, Private, LGU, International, NGO"})
	}
	if r.ApplicationDeadline.IsZero() {
		problems = append(problems, validation.FieldError{Field: "application_deadline", Message: "is required"})
	}
	if r.Status != "" && r.Status != models.StatusOpen && r.Status != models.StatusClosed {
		problems = append(problems, validation.FieldError{Field: "status", Message: "must be open or closed"})
	}
	for _, strand := range append(append([]string{}, r.Eligibility.AllowedStrands...), r.Eligibility.PriorityStrands...) {
		if !models.ValidStrand(models.Strand(strand)) {
			problems = append(problems, validation.FieldError{Field: "eligibility", Message: fmt.Sprintf("unknown strand %q", strand)})
		}
	}
	for _, doc := range r.RequiredDocuments {
		if !models.ValidDocumentType(doc) {
			problems = append(problems, validation.FieldError{Field: "required_documents", Message: fmt.Sprintf("unknown document type %q", doc)})
		}
	}
	return problems
}

func (r *ScholarshipRequest) toModel() models.Scholarship {
	status := r.Status
	if status == "" {
		status = models.StatusOpen
	}
	sanitized := catalog.SanitizeDescription(r.Description)
	return models.Scholarship{
		Name:                strings.TrimSpace(r.Name),
		ProviderName:        strings.TrimSpace(r.ProviderName),
		ProviderType:        models.ProviderType(r.ProviderType),
		Description:         sanitized,
		Summary:             catalog.Summarize(sanitized),
		ApplicationStart:    r.ApplicationStart,
		ApplicationDeadline: r.ApplicationDeadline,
		Status:              status,
		Eligibility:         r.Eligibility,
		Location:            r.Location,
		RequiredDocuments:   r.RequiredDocuments,
	}
}

func (s *Server) handleCreateScholarship(c echo.Context) error {
	var req ScholarshipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if problems := req.problems(); len(problems) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": problems})
	}

	sch, err := s.Store.CreateScholarship(c.Request().Context(), req.toModel())
	if err != nil {
		c.Logger().Errorf("Create scholarship failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusCreated, sch)
}

func (s *Server) handleUpdateScholarship(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid scholarship ID"})
	}

	var req ScholarshipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if problems := req.problems(); len(problems) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": problems})
	}

	sch := req.toModel()
	sch.ID = id
	updated, err := s.Store.UpdateScholarship(c.Request().Context(), sch)
	if errors.Is(err, models.ErrScholarshipNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Scholarship not found"})
	}
	if err != nil {
		c.Logger().Errorf("Update scholarship failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleCloseExpired(c echo.Context) error {
	closed, err := s.Sweeper.Run(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Deadline sweep complete",
		"closed":  closed,
	})
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
