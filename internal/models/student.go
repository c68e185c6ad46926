package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrScholarshipNotFound = errors.New("scholarship not found")
	ErrCityNotFound        = errors.New("city not found")
)

// SHSType is the kind of senior high school a student attends.
type SHSType string

const (
	SHSPublic  SHSType = "Public"
	SHSPrivate SHSType = "Private"
)

// Strand is an SHS academic/technical track.
type Strand string

const (
	StrandSTEM   Strand = "STEM"
	StrandABM    Strand = "ABM"
	StrandHUMSS  Strand = "HUMSS"
	StrandGAS    Strand = "GAS"
	StrandTVL    Strand = "TVL"
	StrandSports Strand = "Sports"
	StrandArts   Strand = "Arts"
)

// Strands lists every valid strand code.
var Strands = []Strand{StrandSTEM, StrandABM, StrandHUMSS, StrandGAS, StrandTVL, StrandSports, StrandArts}

func ValidStrand(s Strand) bool {
	for _, known := range Strands {
		if s == known {
			return true
		}
	}
	return false
}

// Document type codes a student may upload. RequiredDocuments on a
// scholarship is a subset of these.
const (
	DocPSABirthCertificate = "PSA"
	DocForm138             = "FORM_138"
	DocITR                 = "ITR"
	DocIndigencyCert       = "INDIGENCY_CERT"
	DocGoodMoral           = "GOOD_MORAL"
	DocBarangayResidency   = "BRGY_RESIDENCY"
	DocPWDID               = "PWD_ID"
	DocSoloParentID        = "SOLO_PARENT_ID"
	DocEnrollmentCert      = "ENROLLMENT_CERT"
)

// DocumentTypes is the fixed document enumeration.
var DocumentTypes = []string{
	DocPSABirthCertificate, DocForm138, DocITR, DocIndigencyCert,
	DocGoodMoral, DocBarangayResidency, DocPWDID, DocSoloParentID,
	DocEnrollmentCert,
}

func ValidDocumentType(code string) bool {
	for _, known := range DocumentTypes {
		if code == known {
			return true
		}
	}
	return false
}

// LocationRef is the resolved geographic ancestry of a student's city.
type LocationRef struct {
	RegionID   int `json:"region_id"`
	ProvinceID int `json:"province_id"`
	CityID     int `json:"city_id"`
}

// StudentProfile is the canonical profile the matching engine consumes.
// GWA is always on the 70-100 percentage scale; conversion from the
// inverted 1.0-5.0 collegiate scale happens at the validation boundary.
type StudentProfile struct {
	ID                    uuid.UUID   `json:"id"`
	Name                  string      `json:"name"`
	GWA                   float64     `json:"gwa"`
	AnnualHouseholdIncome float64     `json:"annual_household_income"`
	Strand                Strand      `json:"strand"` // empty when undeclared
	IntendedCourse        string      `json:"intended_course"`
	SHSType               SHSType     `json:"shs_type"`
	Location              LocationRef `json:"location"`
	ResidencyYears        int         `json:"residency_years"`
	IsPWD                 bool        `json:"is_pwd"`
	IsSoloParentChild     bool        `json:"is_solo_parent_child"`
	IsIndigenous          bool        `json:"is_indigenous"`
	CreatedAt             time.Time   `json:"created_at"`
}
