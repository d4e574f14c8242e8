package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimk/obs-catalog-api/internal/models"
	appErrors "github.com/selimk/obs-catalog-api/pkg/errors"
)

// catalogStub simulates the fill-then-index behaviour of the catalog
// service: fetching a department makes its offerings visible in the index.
type catalogStub struct {
	departments []models.Department
	offerings   map[int][]models.CourseOffering

	index       map[string]models.CourseOffering
	courseCalls []int
}

func newCatalogStub(departments []models.Department, offerings map[int][]models.CourseOffering) *catalogStub {
	return &catalogStub{
		departments: departments,
		offerings:   offerings,
		index:       make(map[string]models.CourseOffering),
	}
}

func (s *catalogStub) Departments(ctx context.Context) []models.Department {
	return s.departments
}

func (s *catalogStub) Courses(ctx context.Context, deptID int) []models.CourseOffering {
	s.courseCalls = append(s.courseCalls, deptID)
	offerings := s.offerings[deptID]
	for _, offering := range offerings {
		s.index[offering.CRN] = offering
	}
	return offerings
}

func (s *catalogStub) CachedOffering(crn string) (models.CourseOffering, bool) {
	offering, ok := s.index[crn]
	return offering, ok
}

func offeringWithCRN(crn, code string) models.CourseOffering {
	return models.CourseOffering{CRN: crn, CourseCode: code}
}

func TestLookupCRNHitsIndexWithoutAnyFetch(t *testing.T) {
	catalog := newCatalogStub(nil, nil)
	catalog.index["12345"] = offeringWithCRN("12345", "BLG 101E")
	svc := NewLookupService(catalog, nil)

	offering, err := svc.LookupCRN(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "BLG 101E", offering.CourseCode)
	assert.Empty(t, catalog.courseCalls)
}

func TestLookupCRNStopsAtEarlyPriorityDepartment(t *testing.T) {
	// MAT precedes FIZ in the priority order; a CRN owned by MAT must
	// never trigger a FIZ fetch or the exhaustive fallback.
	departments := []models.Department{
		{Code: "FIZ", ID: 2},
		{Code: "MAT", ID: 1},
		{Code: "TAR", ID: 3},
	}
	catalog := newCatalogStub(departments, map[int][]models.CourseOffering{
		1: {offeringWithCRN("20001", "MAT 101")},
	})
	svc := NewLookupService(catalog, nil)

	offering, err := svc.LookupCRN(context.Background(), "20001")
	require.NoError(t, err)
	assert.Equal(t, "MAT 101", offering.CourseCode)
	assert.Equal(t, []int{1}, catalog.courseCalls)
}

func TestLookupCRNFallsThroughToNonPriorityDepartments(t *testing.T) {
	departments := []models.Department{
		{Code: "MAT", ID: 1},
		{Code: "TAR", ID: 3},
	}
	catalog := newCatalogStub(departments, map[int][]models.CourseOffering{
		3: {offeringWithCRN("30001", "TAR 201")},
	})
	svc := NewLookupService(catalog, nil)

	offering, err := svc.LookupCRN(context.Background(), "30001")
	require.NoError(t, err)
	assert.Equal(t, "TAR 201", offering.CourseCode)
	// MAT is searched via the priority list, then TAR in directory order.
	assert.Equal(t, []int{1, 3}, catalog.courseCalls)
}

func TestLookupCRNNotFoundAfterExhaustiveScan(t *testing.T) {
	departments := []models.Department{
		{Code: "MAT", ID: 1},
		{Code: "TAR", ID: 3},
	}
	catalog := newCatalogStub(departments, nil)
	svc := NewLookupService(catalog, nil)

	_, err := svc.LookupCRN(context.Background(), "99999")
	assert.ErrorIs(t, err, appErrors.ErrCRNNotFound)
	assert.Equal(t, []int{1, 3}, catalog.courseCalls)
}

func TestLookupCRNEmptyDirectoryReportsNotFound(t *testing.T) {
	svc := NewLookupService(newCatalogStub(nil, nil), nil)

	_, err := svc.LookupCRN(context.Background(), "12345")
	assert.ErrorIs(t, err, appErrors.ErrCRNNotFound)
}

func TestLookupCRNRejectsMalformedCRN(t *testing.T) {
	svc := NewLookupService(newCatalogStub(nil, nil), nil)

	for _, crn := range []string{"", "1234", "123456", "12a45"} {
		_, err := svc.LookupCRN(context.Background(), crn)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code, "crn %q", crn)
	}
}

func TestLookupCRNsStopsFetchingOnceResolved(t *testing.T) {
	departments := []models.Department{
		{Code: "MAT", ID: 1},
		{Code: "FIZ", ID: 2},
		{Code: "TAR", ID: 3},
	}
	catalog := newCatalogStub(departments, map[int][]models.CourseOffering{
		1: {offeringWithCRN("20001", "MAT 101"), offeringWithCRN("20002", "MAT 102")},
	})
	svc := NewLookupService(catalog, nil)

	results := svc.LookupCRNs(context.Background(), []string{"20001", "20002"})
	require.NotNil(t, results["20001"])
	require.NotNil(t, results["20002"])
	assert.Equal(t, []int{1}, catalog.courseCalls, "no further departments once every crn is resolved")
}

func TestLookupCRNsMixedResolution(t *testing.T) {
	departments := []models.Department{
		{Code: "MAT", ID: 1},
		{Code: "TAR", ID: 3},
	}
	catalog := newCatalogStub(departments, map[int][]models.CourseOffering{
		1: {offeringWithCRN("20001", "MAT 101")},
		3: {offeringWithCRN("30001", "TAR 201")},
	})
	catalog.index["40001"] = offeringWithCRN("40001", "BLG 499")
	svc := NewLookupService(catalog, nil)

	results := svc.LookupCRNs(context.Background(), []string{"40001", "20001", "30001", "99999"})
	require.Len(t, results, 4)
	assert.Equal(t, "BLG 499", results["40001"].CourseCode)
	assert.Equal(t, "MAT 101", results["20001"].CourseCode)
	assert.Equal(t, "TAR 201", results["30001"].CourseCode)
	assert.Nil(t, results["99999"])
}

func TestLookupCRNsAllCachedIssuesNoFetches(t *testing.T) {
	catalog := newCatalogStub(nil, nil)
	catalog.index["12345"] = offeringWithCRN("12345", "BLG 101E")
	svc := NewLookupService(catalog, nil)

	results := svc.LookupCRNs(context.Background(), []string{"12345"})
	require.NotNil(t, results["12345"])
	assert.Empty(t, catalog.courseCalls)
}

func TestLookupCRNsEmptyDirectoryMarksAllMissing(t *testing.T) {
	svc := NewLookupService(newCatalogStub(nil, nil), nil)

	results := svc.LookupCRNs(context.Background(), []string{"12345", "54321"})
	require.Len(t, results, 2)
	assert.Nil(t, results["12345"])
	assert.Nil(t, results["54321"])
}
