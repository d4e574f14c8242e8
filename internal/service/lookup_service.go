package service

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/selimk/obs-catalog-api/internal/models"
	appErrors "github.com/selimk/obs-catalog-api/pkg/errors"
)

// popularDeptCodes are the catalog subdivisions most lookup traffic
// concerns. Searching them first bounds the common cold-index case to a
// handful of department fetches.
var popularDeptCodes = []string{
	"MAT", "FIZ", "KIM", "BLG", "EHB", "ELK", "INS", "MAK", "END", "UCK",
	"GEM", "DEN", "CEV", "GID", "JEF", "MET", "KMM", "IBM", "IML", "BIO",
	"HTA", "TEK", "ISL", "KOM", "MAD", "GEO", "AKM", "TUR", "ING", "BED",
	"EUT", "MIM", "PEM", "SBP", "ICM", "MTO", "JEO", "CHZ", "ROS", "UZB",
}

var crnFormat = regexp.MustCompile(`^\d{5}$`)

type catalogProvider interface {
	Departments(ctx context.Context) []models.Department
	Courses(ctx context.Context, deptID int) []models.CourseOffering
	CachedOffering(crn string) (models.CourseOffering, bool)
}

// LookupService resolves CRNs against the catalog: index first, then the
// popular departments, then an exhaustive scan of the remainder.
type LookupService struct {
	catalog catalogProvider
	logger  *zap.Logger
}

// NewLookupService constructs a LookupService.
func NewLookupService(catalog catalogProvider, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{catalog: catalog, logger: logger}
}

// LookupCRN resolves a single CRN. It returns ErrCRNNotFound after the
// exhaustive scan comes up empty, and ErrValidation for a malformed CRN.
func (s *LookupService) LookupCRN(ctx context.Context, crn string) (*models.CourseOffering, error) {
	if !crnFormat.MatchString(crn) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "crn must be a 5-digit number")
	}

	if offering, ok := s.catalog.CachedOffering(crn); ok {
		return &offering, nil
	}

	departments := s.catalog.Departments(ctx)
	if len(departments) == 0 {
		return nil, appErrors.ErrCRNNotFound
	}

	deptByCode := make(map[string]int, len(departments))
	for _, dept := range departments {
		deptByCode[dept.Code] = dept.ID
	}

	searched := make(map[int]struct{}, len(popularDeptCodes))
	for _, code := range popularDeptCodes {
		deptID, ok := deptByCode[code]
		if !ok {
			continue
		}
		searched[deptID] = struct{}{}
		s.catalog.Courses(ctx, deptID)
		if offering, ok := s.catalog.CachedOffering(crn); ok {
			return &offering, nil
		}
	}

	for _, dept := range departments {
		if _, done := searched[dept.ID]; done {
			continue
		}
		s.catalog.Courses(ctx, dept.ID)
		if offering, ok := s.catalog.CachedOffering(crn); ok {
			return &offering, nil
		}
	}

	s.logger.Info("crn not found after exhaustive scan", zap.String("crn", crn))
	return nil, appErrors.ErrCRNNotFound
}

// LookupCRNs resolves a batch of CRNs with the same department order as
// LookupCRN, but stops issuing department fetches as soon as every
// requested CRN is resolved. Unresolved CRNs map to nil.
func (s *LookupService) LookupCRNs(ctx context.Context, crns []string) map[string]*models.CourseOffering {
	results := make(map[string]*models.CourseOffering, len(crns))
	remaining := make(map[string]struct{})

	for _, crn := range crns {
		if offering, ok := s.catalog.CachedOffering(crn); ok {
			offering := offering
			results[crn] = &offering
			continue
		}
		results[crn] = nil
		if crnFormat.MatchString(crn) {
			remaining[crn] = struct{}{}
		}
	}
	if len(remaining) == 0 {
		return results
	}

	departments := s.catalog.Departments(ctx)
	if len(departments) == 0 {
		return results
	}

	deptByCode := make(map[string]int, len(departments))
	for _, dept := range departments {
		deptByCode[dept.Code] = dept.ID
	}

	collect := func() {
		for crn := range remaining {
			if offering, ok := s.catalog.CachedOffering(crn); ok {
				offering := offering
				results[crn] = &offering
				delete(remaining, crn)
			}
		}
	}

	searched := make(map[int]struct{}, len(popularDeptCodes))
	for _, code := range popularDeptCodes {
		if len(remaining) == 0 {
			return results
		}
		deptID, ok := deptByCode[code]
		if !ok {
			continue
		}
		searched[deptID] = struct{}{}
		s.catalog.Courses(ctx, deptID)
		collect()
	}

	for _, dept := range departments {
		if len(remaining) == 0 {
			break
		}
		if _, done := searched[dept.ID]; done {
			continue
		}
		s.catalog.Courses(ctx, dept.ID)
		collect()
	}

	return results
}
