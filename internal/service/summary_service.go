package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/internal/repository"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
	"github.com/bala2207022/face-attendance/pkg/export"
)

type summaryLedger interface {
	Load(cls *models.Class) (*models.Ledger, error)
	ReplaceSummary(cls *models.Class, rows []models.SummaryRow) error
}

type classFinder interface {
	FindByID(id int64) (*models.Class, error)
}

// SummaryService derives the per-student summary section from the
// session log and renders it for export.
type SummaryService struct {
	classes classFinder
	ledgers summaryLedger
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewSummaryService constructs the summary service.
func NewSummaryService(classes classFinder, ledgers summaryLedger, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{classes: classes, ledgers: ledgers, csv: csv, pdf: pdf, logger: logger}
}

// Rebuild recomputes the summary section from scratch and overwrites the
// stored one. The rebuild is idempotent: repeated calls over an
// unchanged session log produce identical rows.
func (s *SummaryService) Rebuild(_ context.Context, classID int64) ([]models.SummaryRow, error) {
	cls, ledger, err := s.load(classID)
	if err != nil {
		return nil, err
	}

	rows := buildSummary(cls, ledger)
	if err := s.ledgers.ReplaceSummary(cls, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store summary")
	}
	s.logger.Info("summary rebuilt", zap.Int64("class_id", cls.ID), zap.Int("rows", len(rows)))
	return rows, nil
}

// ExportResult carries rendered export bytes plus response metadata.
type ExportResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Export rebuilds the summary and renders it as CSV or PDF.
func (s *SummaryService) Export(ctx context.Context, classID int64, format string) (*ExportResult, error) {
	rows, err := s.Rebuild(ctx, classID)
	if err != nil {
		return nil, err
	}
	cls, err := s.classes.FindByID(classID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, "")
	}

	headers := []string{"Name", "Code", "Date", "Present", "Absent", "Total Sessions"}
	dataset := export.Dataset{Headers: headers, Rows: make([]map[string]string, len(rows))}
	for i, row := range rows {
		dataset.Rows[i] = map[string]string{
			"Name":           row.Name,
			"Code":           row.Code,
			"Date":           row.Date,
			"Present":        strconv.FormatInt(row.Present, 10),
			"Absent":         strconv.FormatInt(row.Absent, 10),
			"Total Sessions": strconv.FormatInt(row.TotalSessions, 10),
		}
	}

	switch format {
	case "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv render failed")
		}
		return &ExportResult{
			Data:        data,
			Filename:    fmt.Sprintf("class_%d_summary.csv", cls.ID),
			ContentType: "text/csv",
		}, nil
	case "pdf":
		subtitle := fmt.Sprintf("Professor %s (%s)", cls.ProfessorName, cls.ProfessorCode)
		data, err := s.pdf.Render(dataset, cls.Name+" Attendance Summary", subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf render failed")
		}
		return &ExportResult{
			Data:        data,
			Filename:    fmt.Sprintf("class_%d_summary.pdf", cls.ID),
			ContentType: "application/pdf",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *SummaryService) load(classID int64) (*models.Class, *models.Ledger, error) {
	cls, err := s.classes.FindByID(classID)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return nil, nil, appErrors.Clone(appErrors.ErrUnknownClass, "")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load class")
	}
	ledger, err := s.ledgers.Load(cls)
	if err != nil {
		if errors.Is(err, repository.ErrLedgerMissing) {
			return nil, nil, appErrors.Clone(appErrors.ErrCorruptStore, "class exists but its ledger file is missing")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load ledger")
	}
	return cls, ledger, nil
}

// buildSummary counts, per roster member, the distinct sessions in which
// they appear. Absence is the shortfall against the class session
// counter, floored at zero. The date column carries the day of the most
// recent activity under the latest session, so a session spanning
// midnight reports the later day.
func buildSummary(cls *models.Class, ledger *models.Ledger) []models.SummaryRow {
	presentBy := make(map[int64]map[int64]struct{})
	var recent time.Time
	for _, row := range ledger.Sessions {
		if row.SessionID == cls.SessionCount && row.Timestamp.After(recent) {
			recent = row.Timestamp
		}
		if row.IsOpenMarker() {
			continue
		}
		sessions, ok := presentBy[row.IdentityID]
		if !ok {
			sessions = make(map[int64]struct{})
			presentBy[row.IdentityID] = sessions
		}
		sessions[row.SessionID] = struct{}{}
	}
	recentDate := ""
	if !recent.IsZero() {
		recentDate = recent.Format("2006-01-02")
	}

	rows := make([]models.SummaryRow, 0, len(ledger.Roster))
	for _, member := range ledger.Roster {
		present := int64(len(presentBy[member.IdentityID]))
		absent := cls.SessionCount - present
		if absent < 0 {
			absent = 0
		}
		rows = append(rows, models.SummaryRow{
			Name:          member.Name,
			Code:          member.Code,
			Date:          recentDate,
			Present:       present,
			Absent:        absent,
			TotalSessions: cls.SessionCount,
		})
	}
	return rows
}
