package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
	appErrors "github.com/mei-dev/tutor-center-api/pkg/errors"
	"github.com/mei-dev/tutor-center-api/pkg/export"
)

// RosterFormat enumerates supported roster download formats.
type RosterFormat string

const (
	RosterFormatCSV RosterFormat = "csv"
	RosterFormatPDF RosterFormat = "pdf"
)

// ParseRosterFormat maps a raw query value onto a supported format.
func ParseRosterFormat(raw string) (RosterFormat, bool) {
	switch RosterFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case RosterFormatCSV, RosterFormat(""):
		return RosterFormatCSV, true
	case RosterFormatPDF:
		return RosterFormatPDF, true
	default:
		return "", false
	}
}

// RosterExport carries a rendered roster file.
type RosterExport struct {
	Payload     []byte
	ContentType string
	Filename    string
}

type courseDetailProvider interface {
	Get(ctx context.Context, id string) (*models.CourseWithDetails, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders course rosters into downloadable files.
type ExportService struct {
	courses courseDetailProvider
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(courses courseDetailProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{courses: courses, csv: csv, pdf: pdf, logger: logger}
}

// RenderRoster builds the enrolled-students table for a course and renders it
// in the requested format.
func (s *ExportService) RenderRoster(ctx context.Context, courseID string, format RosterFormat) (*RosterExport, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	dataset := rosterDataset(course)
	title := fmt.Sprintf("Course Roster %s", course.StartTime)

	var payload []byte
	var contentType string
	switch format {
	case RosterFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case RosterFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported roster format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	filename := fmt.Sprintf("roster_%s_%s.%s", course.ID, time.Now().UTC().Format("20060102_150405"), format)
	return &RosterExport{Payload: payload, ContentType: contentType, Filename: filename}, nil
}

func rosterDataset(course *models.CourseWithDetails) export.Dataset {
	headers := []string{"Student ID", "Name", "Gender", "Phone", "Address", "Remark"}
	rows := make([]map[string]string, 0, len(course.Students))
	for _, student := range course.Students {
		rows = append(rows, map[string]string{
			"Student ID": student.ID,
			"Name":       student.Name,
			"Gender":     genderLabel(student.Gender),
			"Phone":      derefOr(student.Phone, ""),
			"Address":    derefOr(student.Address, ""),
			"Remark":     derefOr(student.Remark, ""),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func genderLabel(gender int) string {
	if gender == 1 {
		return "male"
	}
	return "female"
}

func derefOr(ptr *string, fallback string) string {
	if ptr == nil {
		return fallback
	}
	return *ptr
}
