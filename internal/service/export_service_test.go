package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimk/obs-catalog-api/internal/models"
	appErrors "github.com/selimk/obs-catalog-api/pkg/errors"
)

type resolverStub struct {
	results map[string]*models.CourseOffering
}

func (s *resolverStub) LookupCRNs(ctx context.Context, crns []string) map[string]*models.CourseOffering {
	return s.results
}

func sampleOffering() models.CourseOffering {
	return models.CourseOffering{
		CRN:            "12345",
		CourseCode:     "BLG 101E",
		CourseName:     "Introduction to Computing",
		Instructor:     "E. Demir",
		TeachingMethod: "Yüz Yüze",
		Capacity:       120,
		Enrolled:       115,
		Sessions: []models.CourseSession{
			{Day: 0, StartTime: "08:30", EndTime: "11:29", Room: "A11", Building: "MED"},
			{Day: 2, StartTime: "13:30", EndTime: "15:29", Room: "--", Building: "--"},
		},
		Programmes: "BLGE_LS",
	}
}

func newExportForTest(offerings map[int][]models.CourseOffering, resolver crnResolver, enabled bool) *ExportService {
	catalog := newCatalogStub([]models.Department{{Code: "BLG", ID: 7}}, offerings)
	return NewExportService(ExportServiceParams{
		Catalog: catalog,
		Lookup:  resolver,
		Enabled: enabled,
	})
}

func TestDepartmentCoursesCSV(t *testing.T) {
	svc := newExportForTest(map[int][]models.CourseOffering{7: {sampleOffering()}}, nil, true)

	result, err := svc.DepartmentCourses(context.Background(), 7, "csv")
	require.NoError(t, err)

	assert.Equal(t, "BLG-courses.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	body := string(result.Payload)
	assert.True(t, strings.HasPrefix(body, "CRN,"), "header row first")
	assert.Contains(t, body, "12345")
	assert.Contains(t, body, "Mon 08:30-11:29 A11")
	assert.Contains(t, body, "Wed 13:30-15:29")
	assert.NotContains(t, body, "Wed 13:30-15:29 --", "placeholder room is not printed")
}

func TestDepartmentCoursesPDF(t *testing.T) {
	svc := newExportForTest(map[int][]models.CourseOffering{7: {sampleOffering()}}, nil, true)

	result, err := svc.DepartmentCourses(context.Background(), 7, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "BLG-courses.pdf", result.Filename)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestDepartmentCoursesUnknownFormat(t *testing.T) {
	svc := newExportForTest(map[int][]models.CourseOffering{7: {sampleOffering()}}, nil, true)

	_, err := svc.DepartmentCourses(context.Background(), 7, "xlsx")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDepartmentCoursesEmptyDataset(t *testing.T) {
	svc := newExportForTest(nil, nil, true)

	_, err := svc.DepartmentCourses(context.Background(), 7, "csv")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmptyDataset.Code, appErr.Code)
	assert.Equal(t, "no course offerings available for this department", appErr.Message)
}

func TestExportsDisabled(t *testing.T) {
	svc := newExportForTest(map[int][]models.CourseOffering{7: {sampleOffering()}}, nil, false)

	_, err := svc.DepartmentCourses(context.Background(), 7, "csv")
	assert.ErrorIs(t, err, appErrors.ErrDisabled)

	_, err = svc.Timetable(context.Background(), []string{"12345"})
	assert.ErrorIs(t, err, appErrors.ErrDisabled)
}

func TestTimetableRendersResolvedSessions(t *testing.T) {
	offering := sampleOffering()
	resolver := &resolverStub{results: map[string]*models.CourseOffering{"12345": &offering}}
	svc := newExportForTest(nil, resolver, true)

	result, err := svc.Timetable(context.Background(), []string{"12345"})
	require.NoError(t, err)
	assert.Equal(t, "timetable.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestTimetableNoSessions(t *testing.T) {
	resolver := &resolverStub{results: map[string]*models.CourseOffering{"12345": nil}}
	svc := newExportForTest(nil, resolver, true)

	_, err := svc.Timetable(context.Background(), []string{"12345"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmptyDataset.Code, appErr.Code)
}
