package domain

import "time"

// HourlySample is the result of locating one (date, hour) pair: either an
// extracted NetCDF sample at Path inside the owning job's workspace, or
// absent. Samples are ephemeral; they exist only until their day has been
// aggregated.
type HourlySample struct {
	Hour int
	Path string // empty when absent
}

// Present reports whether the sample was located and extracted.
func (s HourlySample) Present() bool { return s.Path != "" }

// DailyAggregate is the result of combining one day's hourly samples: a
// computed daily-mean file at Path, or skipped when the day had too few
// present samples.
type DailyAggregate struct {
	Date time.Time
	Path string // empty when skipped
}

// Computed reports whether the day produced a daily mean.
func (a DailyAggregate) Computed() bool { return a.Path != "" }

// WindowResult collects a window's daily aggregates in ascending date order.
// Only computed days contribute to the merged series.
type WindowResult struct {
	Window Window
	Days   []DailyAggregate
}

// ComputedPaths returns the daily-mean paths of computed days, preserving
// chronological order for the time concatenation.
func (r WindowResult) ComputedPaths() []string {
	var paths []string
	for _, d := range r.Days {
		if d.Computed() {
			paths = append(paths, d.Path)
		}
	}
	return paths
}

// WindowOutcome classifies how a window job ended.
type WindowOutcome string

const (
	// OutcomeCompleted means both artifacts were produced.
	OutcomeCompleted WindowOutcome = "completed"
	// OutcomeNoData means no day in the window could be computed; a normal
	// result, no artifacts are produced.
	OutcomeNoData WindowOutcome = "no_data"
	// OutcomeMergeFailed means the time concatenation failed; no artifacts.
	OutcomeMergeFailed WindowOutcome = "merge_failed"
	// OutcomeRegridFailed means remapping failed after a successful merge;
	// the merged artifact is kept as a partial result.
	OutcomeRegridFailed WindowOutcome = "regrid_failed"
	// OutcomeAborted means the job could not run at all (workspace creation
	// failed or the run was cancelled); aborted jobs make the run itself
	// report failure.
	OutcomeAborted WindowOutcome = "aborted"
)

// WindowReport summarizes one window job for the run summary and the
// optional report topic. Dates use the YYYYMMDD form of the artifact names.
type WindowReport struct {
	WindowStart        string        `json:"window_start"`
	WindowEnd          string        `json:"window_end"`
	Outcome            WindowOutcome `json:"outcome"`
	MergedPath         string        `json:"merged_path,omitempty"`
	RegriddedPath      string        `json:"regridded_path,omitempty"`
	DaysComputed       int           `json:"days_computed"`
	DaysSkipped        int           `json:"days_skipped"`
	SamplesPresent     int           `json:"samples_present"`
	SamplesMissing     int           `json:"samples_missing"`
	ExtractionFailures int           `json:"extraction_failures"`
	Error              string        `json:"error,omitempty"`
	CompletedAt        time.Time     `json:"completed_at"`
}

// NewWindowReport starts a report for w, timestamped from the package clock;
// the owning job fills in counts and outcome, and refreshes the timestamp
// when it ends.
func NewWindowReport(w Window) WindowReport {
	return WindowReport{
		WindowStart: w.Start.Format(DateLayout),
		WindowEnd:   w.End.Format(DateLayout),
		CompletedAt: clock.Now().UTC(),
	}
}
