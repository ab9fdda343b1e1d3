package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fets-ops/console-api/internal/models"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/export"
	"github.com/fets-ops/console-api/pkg/jobs"
	"github.com/fets-ops/console-api/pkg/storage"
	"github.com/fets-ops/console-api/pkg/timeutil"
)

type exportJobRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, errorText string, completedAt time.Time) error
}

type rosterReader interface {
	ListRange(ctx context.Context, from, to string) ([]models.ScheduleEntry, error)
}

// exportPayload travels through the job queue.
type exportPayload struct {
	JobID  string
	Month  int
	Year   int
	Format models.ExportFormat
}

// ExportService produces roster exports asynchronously and hands out signed
// download links for the artifacts.
type ExportService struct {
	repo    exportJobRepository
	roster  rosterReader
	staff   activeStaffLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	logger  *zap.Logger
	fileTTL time.Duration
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Repo       exportJobRepository
	Roster     rosterReader
	Staff      activeStaffLister
	Store      *storage.LocalStorage
	Signer     *storage.SignedURLSigner
	Logger     *zap.Logger
	FileTTL    time.Duration
	Workers    int
	MaxRetries int
}

// NewExportService constructs an ExportService with its worker queue. Call
// Start before requesting exports and Stop on shutdown.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fileTTL := params.FileTTL
	if fileTTL <= 0 {
		fileTTL = 24 * time.Hour
	}

	s := &ExportService{
		repo:    params.Repo,
		roster:  params.Roster,
		staff:   params.Staff,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		store:   params.Store,
		signer:  params.Signer,
		logger:  logger,
		fileTTL: fileTTL,
	}
	s.queue = jobs.NewQueue("roster-exports", s.process, jobs.QueueConfig{
		Workers:    params.Workers,
		MaxRetries: params.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Request queues a roster export for the given month and returns the job in
// its queued state.
func (s *ExportService) Request(ctx context.Context, month, year int, format models.ExportFormat, actorID string) (*models.ExportJob, error) {
	if err := validateScope(month, year); err != nil {
		return nil, err
	}
	if format != models.ExportCSV && format != models.ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	job := &models.ExportJob{
		Month:       month,
		Year:        year,
		Format:      format,
		Status:      models.ExportQueued,
		RequestedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{
		ID:      job.ID,
		Type:    "roster-export",
		Payload: exportPayload{JobID: job.ID, Month: month, Year: year, Format: format},
	}); err != nil {
		now := time.Now().UTC()
		if markErr := s.repo.MarkFailed(ctx, job.ID, "queue unavailable", now); markErr != nil {
			s.logger.Warn("failed to mark export job failed", zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export job")
	}
	return job, nil
}

// Status returns the current state of an export job.
func (s *ExportService) Status(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// DownloadLink returns a signed URL token for a completed job's artifact.
func (s *ExportService) DownloadLink(ctx context.Context, id string) (*models.ExportDownload, error) {
	job, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ExportCompleted || job.FilePath == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "export is not ready for download")
	}

	token, expiresAt, err := s.signer.Generate(job.ID, *job.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &models.ExportDownload{JobID: job.ID, URL: token, ExpiresAt: expiresAt}, nil
}

// Resolve validates a signed token and returns the artifact's stored path.
func (s *ExportService) Resolve(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	return s.store.Path(relPath), nil
}

// CleanupLoop periodically removes expired artifacts until ctx is cancelled.
func (s *ExportService) CleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.CleanupOlderThan(s.fileTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("unexpected export payload type %T", job.Payload)
	}

	if err := s.repo.MarkRunning(ctx, payload.JobID); err != nil {
		return err
	}

	dataset, err := s.buildDataset(ctx, payload.Month, payload.Year)
	if err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	var rendered []byte
	var ext string
	switch payload.Format {
	case models.ExportPDF:
		title := fmt.Sprintf("Roster %04d-%02d", payload.Year, payload.Month)
		rendered, err = s.pdf.Render(dataset, title)
		ext = "pdf"
	default:
		rendered, err = s.csv.Render(dataset)
		ext = "csv"
	}
	if err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	filename := fmt.Sprintf("roster_%04d_%02d_%s.%s", payload.Year, payload.Month, payload.JobID, ext)
	relPath, err := s.store.Save(filename, rendered)
	if err != nil {
		s.fail(ctx, payload.JobID, err)
		return err
	}

	if err := s.repo.MarkCompleted(ctx, payload.JobID, relPath, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info("roster export completed",
		zap.String("job_id", payload.JobID),
		zap.String("file", relPath))
	return nil
}

func (s *ExportService) fail(ctx context.Context, jobID string, cause error) {
	if err := s.repo.MarkFailed(ctx, jobID, cause.Error(), time.Now().UTC()); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// buildDataset flattens the month's roster into one row per staff member
// with a column per day.
func (s *ExportService) buildDataset(ctx context.Context, month, year int) (export.Dataset, error) {
	from, to := monthRange(month, year)
	entries, err := s.roster.ListRange(ctx, from, to)
	if err != nil {
		return export.Dataset{}, err
	}
	profiles, err := s.staff.ListActive(ctx)
	if err != nil {
		return export.Dataset{}, err
	}

	days := timeutil.DaysInMonth(year, time.Month(month))
	headers := make([]string, 0, days+1)
	headers = append(headers, "Staff")
	for day := 1; day <= days; day++ {
		headers = append(headers, strconv.Itoa(day))
	}

	byStaff := make(map[string]map[string]models.ShiftCode)
	for _, entry := range entries {
		cells, ok := byStaff[entry.StaffProfileID]
		if !ok {
			cells = make(map[string]models.ShiftCode)
			byStaff[entry.StaffProfileID] = cells
		}
		cells[entry.ShiftDate] = entry.ShiftCode
	}

	rows := make([]map[string]string, 0, len(profiles))
	for _, profile := range profiles {
		row := map[string]string{"Staff": profile.FullName}
		for day := 1; day <= days; day++ {
			date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			row[strconv.Itoa(day)] = string(byStaff[profile.ID][date])
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}, nil
}
