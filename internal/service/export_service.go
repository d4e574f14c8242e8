package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/selimk/obs-catalog-api/internal/models"
	appErrors "github.com/selimk/obs-catalog-api/pkg/errors"
	"github.com/selimk/obs-catalog-api/pkg/export"
)

var weekdayShort = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

type crnResolver interface {
	LookupCRNs(ctx context.Context, crns []string) map[string]*models.CourseOffering
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type tableRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type gridRenderer interface {
	Render(entries []export.TimetableEntry, title string) ([]byte, error)
}

// ExportResult is a rendered document ready to be served.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders cached catalog data into downloadable documents.
type ExportService struct {
	catalog   catalogProvider
	lookup    crnResolver
	csv       datasetRenderer
	pdf       tableRenderer
	timetable gridRenderer
	logger    *zap.Logger
	enabled   bool
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Catalog catalogProvider
	Lookup  crnResolver
	Logger  *zap.Logger
	Enabled bool
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		catalog:   params.Catalog,
		lookup:    params.Lookup,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		timetable: export.NewTimetableExporter(),
		logger:    logger,
		enabled:   params.Enabled,
	}
}

// DepartmentCourses renders one department's offerings as CSV or PDF.
func (s *ExportService) DepartmentCourses(ctx context.Context, deptID int, format string) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.ErrDisabled
	}

	offerings := s.catalog.Courses(ctx, deptID)
	if len(offerings) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyDataset, "no course offerings available for this department")
	}

	dataset := offeringsDataset(offerings)
	name := s.departmentLabel(ctx, deptID)

	switch strings.ToLower(format) {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-courses.csv", name),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("%s course listing", name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-courses.pdf", name),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// Timetable renders a weekly grid of the sessions of the resolved CRNs.
func (s *ExportService) Timetable(ctx context.Context, crns []string) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.ErrDisabled
	}

	results := s.lookup.LookupCRNs(ctx, crns)

	var entries []export.TimetableEntry
	for _, crn := range crns {
		offering := results[crn]
		if offering == nil {
			continue
		}
		for _, session := range offering.Sessions {
			text := fmt.Sprintf("%s %s-%s", offering.CourseCode, session.StartTime, session.EndTime)
			if session.Room != models.PlaceholderRoom {
				text += " " + session.Room
			}
			entries = append(entries, export.TimetableEntry{Day: session.Day, Text: text})
		}
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyDataset, "no sessions found for requested crns")
	}

	payload, err := s.timetable.Render(entries, "Weekly Timetable")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render timetable")
	}
	return &ExportResult{
		Filename:    "timetable.pdf",
		ContentType: "application/pdf",
		Payload:     payload,
	}, nil
}

func (s *ExportService) departmentLabel(ctx context.Context, deptID int) string {
	for _, dept := range s.catalog.Departments(ctx) {
		if dept.ID == deptID {
			return dept.Code
		}
	}
	return "dept-" + strconv.Itoa(deptID)
}

func offeringsDataset(offerings []models.CourseOffering) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"CRN", "Course Code", "Course Name", "Instructor", "Method", "Capacity", "Enrolled", "Schedule", "Programmes"},
	}
	for _, offering := range offerings {
		dataset.Rows = append(dataset.Rows, []string{
			offering.CRN,
			offering.CourseCode,
			offering.CourseName,
			offering.Instructor,
			offering.TeachingMethod,
			strconv.Itoa(offering.Capacity),
			strconv.Itoa(offering.Enrolled),
			formatSessions(offering.Sessions),
			offering.Programmes,
		})
	}
	return dataset
}

func formatSessions(sessions []models.CourseSession) string {
	parts := make([]string, 0, len(sessions))
	for _, session := range sessions {
		day := "?"
		if session.Day >= 0 && session.Day < len(weekdayShort) {
			day = weekdayShort[session.Day]
		}
		part := fmt.Sprintf("%s %s-%s", day, session.StartTime, session.EndTime)
		if session.Room != models.PlaceholderRoom {
			part += " " + session.Room
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
