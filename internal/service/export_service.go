package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/ojt-records-api/internal/models"
	appErrors "github.com/noah-isme/ojt-records-api/pkg/errors"
	"github.com/noah-isme/ojt-records-api/pkg/export"
)

// Supported roster export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var rosterHeaders = []string{
	"Full Name", "Email", "Department", "Project", "Skills", "School", "Course",
	"Year Level", "Contact Number", "Start Date", "End Date", "Registered At",
}

type profileLister interface {
	ListAll(ctx context.Context) ([]models.StudentProfile, error)
}

// ExportFile is a rendered roster ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the student roster as CSV or PDF.
type ExportService struct {
	profiles profileLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	now      func() time.Time
}

// NewExportService constructs the roster exporter.
func NewExportService(profiles profileLister, csvExporter *export.CSVExporter, pdfExporter *export.PDFExporter) *ExportService {
	if csvExporter == nil {
		csvExporter = export.NewCSVExporter()
	}
	if pdfExporter == nil {
		pdfExporter = export.NewPDFExporter()
	}
	return &ExportService{profiles: profiles, csv: csvExporter, pdf: pdfExporter, now: time.Now}
}

// Roster renders every profile, newest first, in the requested format.
func (s *ExportService) Roster(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	data := rosterDataset(profiles)
	filename := fmt.Sprintf("ojt-students-%s.%s", s.now().UTC().Format("20060102"), format)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		body, err = s.pdf.Render(data)
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(data)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return &ExportFile{Filename: filename, ContentType: contentType, Body: body}, nil
}

func rosterDataset(profiles []models.StudentProfile) export.Dataset {
	rows := make([]map[string]string, 0, len(profiles))
	for _, p := range profiles {
		project := ""
		if p.Project != nil {
			project = *p.Project
		}
		rows = append(rows, map[string]string{
			"Full Name":      p.FullName,
			"Email":          p.Email,
			"Department":     p.Department,
			"Project":        project,
			"Skills":         strings.Join(p.Skills, ", "),
			"School":         p.School,
			"Course":         p.Course,
			"Year Level":     p.YearLevel,
			"Contact Number": p.ContactNumber,
			"Start Date":     p.StartDate,
			"End Date":       p.EndDate,
			"Registered At":  p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Title: "OJT Student Roster", Headers: rosterHeaders, Rows: rows}
}
