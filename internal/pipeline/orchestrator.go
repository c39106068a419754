package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/climops/precip-analysis/internal/domain"
	"github.com/climops/precip-analysis/internal/observability"
)

// Extractor pulls the precipitation-rate field out of one GRIB2 file and
// writes it as NetCDF.
type Extractor interface {
	Extract(ctx context.Context, gribPath, outPath string) error
}

// ClimateOperator runs the numeric steps on NetCDF files.
type ClimateOperator interface {
	DailyMean(ctx context.Context, samplePaths []string, outPath string) error
	MergeTime(ctx context.Context, dailyPaths []string, outPath string) error
	Remap(ctx context.Context, grid, inPath, outPath string) error
}

// ReportPublisher delivers window reports to an external sink.
type ReportPublisher interface {
	Publish(ctx context.Context, reports []domain.WindowReport) error
}

// Settings carries the window policy and filesystem layout for a run.
type Settings struct {
	SourceRoot   string
	OutputDir    string
	WorkspaceDir string

	TargetWeekday    time.Weekday
	WindowLengthDays int
	WindowCount      int
	MinSamplesPerDay int
	DestGrid         string
}

// Orchestrator fans a run out into window jobs, one per resolved end date,
// and reports every outcome. Window jobs are isolated: each works in its own
// scratch directory and writes artifacts under distinct names, so a failed
// window never disturbs another.
type Orchestrator struct {
	extractor Extractor
	operator  ClimateOperator
	publisher ReportPublisher // nil when reporting is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
	settings  Settings
	ready     atomic.Bool
	last      atomic.Pointer[[]domain.WindowReport]
}

// New creates an Orchestrator with the given tool adapters and observability.
func New(e Extractor, op ClimateOperator, pub ReportPublisher, logger *slog.Logger, metrics *observability.Metrics, settings Settings) *Orchestrator {
	return &Orchestrator{
		extractor: e,
		operator:  op,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		settings:  settings,
	}
}

// CheckReadiness returns nil once a run has started processing windows, or an
// error describing why the process is not yet ready.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("run has not started yet")
	}
	return nil
}

// LastReports returns the most recent run's window reports, or nil before
// any run has finished.
func (o *Orchestrator) LastReports() []domain.WindowReport {
	if p := o.last.Load(); p != nil {
		return *p
	}
	return nil
}

// Run processes every window resolved from the reference date and returns
// one report per window, newest first. Only failures that prevent any window
// from being attempted, or that abort a window outright, make the run itself
// fail; data gaps and tool failures are reported per window instead.
func (o *Orchestrator) Run(ctx context.Context, ref time.Time) ([]domain.WindowReport, error) {
	if err := os.MkdirAll(o.settings.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	diag, err := OpenDiagnosticsLog(o.settings.OutputDir)
	if err != nil {
		return nil, err
	}
	defer diag.Close()

	endDates := domain.ResolveEndDates(ref, o.settings.TargetWeekday, o.settings.WindowCount)
	o.logger.Info("run started",
		"reference_date", domain.DateOnly(ref).Format(domain.DateLayout),
		"target_weekday", o.settings.TargetWeekday.String(),
		"windows", len(endDates),
		"window_length_days", o.settings.WindowLengthDays,
	)

	o.metrics.RunInProgress.Set(1)
	defer o.metrics.RunInProgress.Set(0)
	o.ready.Store(true)

	reports := make([]domain.WindowReport, len(endDates))
	var wg sync.WaitGroup
	for i, end := range endDates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := domain.NewWindow(end, o.settings.WindowLengthDays)
			reports[i] = o.processWindow(ctx, w, diag)
		}()
	}
	wg.Wait()
	o.last.Store(&reports)

	aborted := o.summarize(reports, diag.Path())
	o.publishReports(ctx, reports)

	if aborted > 0 {
		return reports, fmt.Errorf("%d of %d windows aborted", aborted, len(reports))
	}
	return reports, nil
}

// processWindow provisions an isolated workspace for one window and runs the
// job in it. The workspace is removed no matter how the job ends.
func (o *Orchestrator) processWindow(ctx context.Context, w domain.Window, diag *DiagnosticsLog) domain.WindowReport {
	report := domain.NewWindowReport(w)

	workspace := filepath.Join(o.settings.WorkspaceDir,
		fmt.Sprintf("precipagg-%s-%s", w.End.Format(domain.DateLayout), uuid.NewString()))
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		o.logger.Error("workspace creation failed", "window", w.String(), "error", err)
		report.Outcome = domain.OutcomeAborted
		report.Error = err.Error()
		return report
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			o.logger.Warn("workspace cleanup failed", "workspace", workspace, "error", err)
		}
	}()

	job := &windowJob{
		orch:      o,
		window:    w,
		workspace: workspace,
		diag:      diag,
		report:    report,
	}
	out := job.run(ctx)
	out.CompletedAt = domain.Now().UTC()
	return out
}

// summarize logs each window's outcome, feeds the outcome counters, and
// returns how many windows aborted.
func (o *Orchestrator) summarize(reports []domain.WindowReport, diagPath string) int {
	var aborted, completed int
	for _, r := range reports {
		o.metrics.WindowsProcessed.WithLabelValues(string(r.Outcome)).Inc()
		switch r.Outcome {
		case domain.OutcomeAborted:
			aborted++
		case domain.OutcomeCompleted:
			completed++
		}

		o.logger.Info("window finished",
			"window", r.WindowStart+".."+r.WindowEnd,
			"outcome", string(r.Outcome),
			"days_computed", r.DaysComputed,
			"days_skipped", r.DaysSkipped,
			"samples_present", r.SamplesPresent,
			"samples_missing", r.SamplesMissing,
			"extraction_failures", r.ExtractionFailures,
		)
	}

	o.logger.Info("run finished",
		"windows", len(reports),
		"completed", completed,
		"aborted", aborted,
		"diagnostics", diagPath,
	)
	return aborted
}

func (o *Orchestrator) publishReports(ctx context.Context, reports []domain.WindowReport) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, reports); err != nil {
		o.logger.Warn("report publish failed", "error", err, "reports", len(reports))
	}
}
