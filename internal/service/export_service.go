package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vqdung71104/student-management-sub000/internal/models"
	"github.com/vqdung71104/student-management-sub000/pkg/export"
	"github.com/vqdung71104/student-management-sub000/pkg/storage"
)

type sectionFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.ClassSection, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix    string
	ResultTTL    time.Duration
	WeeksPerTerm int
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders a chosen combination into a timetable file and
// persists it behind a signed download URL.
type ExportService struct {
	sections sectionFinder
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sections sectionFinder, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.WeeksPerTerm <= 0 {
		cfg.WeeksPerTerm = models.DefaultWeeksPerTerm
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		sections: sections,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate loads the job's sections, renders the timetable and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/schedule/export/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	sections, err := s.sections.FindByIDs(ctx, job.Params.SectionIDs)
	if err != nil {
		return export.Dataset{}, "", err
	}
	if len(sections) == 0 {
		return export.Dataset{}, "", fmt.Errorf("no sections found for export job %s", job.ID)
	}
	for i := range sections {
		sections[i].Normalize(s.cfg.WeeksPerTerm)
	}

	headers := []string{"Subject", "Section", "Teacher", "Room", "Days", "Weeks", "Start", "End", "Credits"}
	rows := make([]map[string]string, 0, len(sections))
	totalCredits := 0
	for _, section := range sections {
		totalCredits += section.Credits
		rows = append(rows, map[string]string{
			"Subject": section.SubjectName,
			"Section": section.ID,
			"Teacher": section.TeacherName,
			"Room":    section.Room,
			"Days":    section.StudyDaysRaw,
			"Weeks":   section.StudyWeeksRaw,
			"Start":   models.FormatClock(section.StartMinute),
			"End":     models.FormatClock(section.EndMinute),
			"Credits": fmt.Sprintf("%d", section.Credits),
		})
	}
	rows = append(rows, map[string]string{
		"Subject": "Total",
		"Credits": fmt.Sprintf("%d", totalCredits),
	})

	title := job.Params.Title
	if title == "" {
		title = fmt.Sprintf("Timetable %s", job.StudentID)
	}
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	studentPart := sanitizeFilename(job.StudentID)
	return fmt.Sprintf("timetable_%s_%s.%s", studentPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
