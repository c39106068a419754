package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/climops/precip-analysis/internal/domain"
)

// windowJob processes one window inside its own workspace. All counters on
// the report belong to this job alone; the shared metrics and diagnostics
// log are safe for concurrent use.
type windowJob struct {
	orch      *Orchestrator
	window    domain.Window
	workspace string
	diag      *DiagnosticsLog
	report    domain.WindowReport
}

// run walks the window chronologically, aggregates each day, and turns the
// computed days into the merged and regridded artifacts.
func (j *windowJob) run(ctx context.Context) domain.WindowReport {
	result := domain.WindowResult{Window: j.window}
	for _, date := range j.window.Days() {
		if ctx.Err() != nil {
			j.report.Outcome = domain.OutcomeAborted
			j.report.Error = ctx.Err().Error()
			return j.report
		}
		result.Days = append(result.Days, j.processDay(ctx, date))
	}

	dailyPaths := result.ComputedPaths()
	j.report.DaysComputed = len(dailyPaths)
	j.report.DaysSkipped = len(result.Days) - len(dailyPaths)

	if len(dailyPaths) == 0 {
		j.orch.logger.Warn("window produced no data", "window", j.window.String())
		j.diagRecord("no day in the window produced a daily mean; nothing to merge")
		j.report.Outcome = domain.OutcomeNoData
		return j.report
	}

	mergedPath := filepath.Join(j.orch.settings.OutputDir, domain.MergedArtifactName(j.window))
	start := time.Now()
	err := j.orch.operator.MergeTime(ctx, dailyPaths, mergedPath)
	j.orch.metrics.ToolDuration.WithLabelValues("merge_time").Observe(time.Since(start).Seconds())
	if err != nil {
		j.orch.logger.Error("merge failed", "window", j.window.String(), "error", err)
		j.diagRecord("merge failed: " + err.Error())
		os.Remove(mergedPath) //nolint:errcheck // drop any partial output
		j.report.Outcome = domain.OutcomeMergeFailed
		j.report.Error = err.Error()
		return j.report
	}
	j.report.MergedPath = mergedPath

	regriddedPath := filepath.Join(j.orch.settings.OutputDir, domain.RegriddedArtifactName(j.window))
	start = time.Now()
	err = j.orch.operator.Remap(ctx, j.orch.settings.DestGrid, mergedPath, regriddedPath)
	j.orch.metrics.ToolDuration.WithLabelValues("remap").Observe(time.Since(start).Seconds())
	if err != nil {
		// The merged artifact stays on disk; remapping can be redone from it
		// without repeating the extraction work.
		j.orch.logger.Error("regrid failed", "window", j.window.String(), "error", err)
		j.diagRecord("regrid failed: " + err.Error())
		os.Remove(regriddedPath) //nolint:errcheck // drop any partial output
		j.report.Outcome = domain.OutcomeRegridFailed
		j.report.Error = err.Error()
		return j.report
	}
	j.report.RegriddedPath = regriddedPath

	j.report.Outcome = domain.OutcomeCompleted
	return j.report
}

// processDay locates the day's synoptic samples and aggregates them when
// enough are present. A day that cannot be aggregated is skipped, never
// fatal.
func (j *windowJob) processDay(ctx context.Context, date time.Time) domain.DailyAggregate {
	day := date.Format(domain.DateLayout)

	var present []string
	for _, hour := range domain.SynopticHours {
		if s := j.locateSample(ctx, date, hour); s.Present() {
			present = append(present, s.Path)
		}
	}

	if len(present) < j.orch.settings.MinSamplesPerDay {
		j.orch.logger.Warn("day skipped",
			"window", j.window.String(),
			"date", day,
			"samples_present", len(present),
			"samples_required", j.orch.settings.MinSamplesPerDay,
		)
		j.diagRecord(fmt.Sprintf("day %s skipped: %d of %d samples present, need %d",
			day, len(present), len(domain.SynopticHours), j.orch.settings.MinSamplesPerDay))
		j.orch.metrics.DaysSkipped.Inc()
		return domain.DailyAggregate{Date: date}
	}

	outPath := filepath.Join(j.workspace, domain.DailyMeanFileName(date))
	start := time.Now()
	err := j.orch.operator.DailyMean(ctx, present, outPath)
	j.orch.metrics.ToolDuration.WithLabelValues("daily_mean").Observe(time.Since(start).Seconds())
	if err != nil {
		j.orch.logger.Warn("daily mean failed, skipping day", "window", j.window.String(), "date", day, "error", err)
		j.diagRecord(fmt.Sprintf("day %s skipped: daily mean failed: %v", day, err))
		j.orch.metrics.DaysSkipped.Inc()
		return domain.DailyAggregate{Date: date}
	}

	j.orch.metrics.DaysComputed.Inc()
	return domain.DailyAggregate{Date: date, Path: outPath}
}

// locateSample checks for one synoptic hour's source file and extracts the
// precipitation field from it. An absent source is routine and only counted;
// a failed extraction additionally leaves a diagnostic. Either way the
// sample is absent and the day moves on.
func (j *windowJob) locateSample(ctx context.Context, date time.Time, hour int) domain.HourlySample {
	sample := domain.HourlySample{Hour: hour}

	srcPath := domain.SourcePath(j.orch.settings.SourceRoot, date, hour)
	if _, err := os.Stat(srcPath); err != nil {
		j.orch.logger.Debug("source file absent", "window", j.window.String(), "path", srcPath)
		j.orch.metrics.SamplesMissing.Inc()
		j.report.SamplesMissing++
		return sample
	}

	outPath := filepath.Join(j.workspace, domain.SampleFileName(date, hour))
	start := time.Now()
	err := j.orch.extractor.Extract(ctx, srcPath, outPath)
	j.orch.metrics.ToolDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if err != nil {
		j.orch.logger.Warn("sample extraction failed", "window", j.window.String(), "source", srcPath, "error", err)
		j.diagRecord(fmt.Sprintf("extraction failed for %s: %v", filepath.Base(srcPath), err))
		j.orch.metrics.ExtractionFailures.Inc()
		j.report.ExtractionFailures++
		return sample
	}

	j.orch.metrics.SamplesPresent.Inc()
	j.report.SamplesPresent++
	sample.Path = outPath
	return sample
}

// diagRecord writes one diagnostics line; write failures are logged and
// otherwise ignored.
func (j *windowJob) diagRecord(msg string) {
	if err := j.diag.Record(j.window, msg); err != nil {
		j.orch.logger.Warn("diagnostics write failed", "error", err)
	}
}
