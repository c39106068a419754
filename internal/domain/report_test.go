package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowResultComputedPaths(t *testing.T) {
	w := NewWindow(time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC), 3)
	days := w.Days()
	result := WindowResult{
		Window: w,
		Days: []DailyAggregate{
			{Date: days[0], Path: "/ws/prate_daily_20250803.nc"},
			{Date: days[1]},
			{Date: days[2], Path: "/ws/prate_daily_20250805.nc"},
			{Date: days[3]},
		},
	}

	assert.Equal(t, []string{
		"/ws/prate_daily_20250803.nc",
		"/ws/prate_daily_20250805.nc",
	}, result.ComputedPaths())
}

func TestNewWindowReport(t *testing.T) {
	fixedTime := time.Date(2025, 8, 11, 9, 30, 0, 0, time.UTC)
	mockClock := clockwork.NewFakeClockAt(fixedTime)
	SetClock(mockClock)
	defer SetClock(nil)

	w := NewWindow(time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC), 15)
	report := NewWindowReport(w)

	assert.Equal(t, "20250722", report.WindowStart)
	assert.Equal(t, "20250806", report.WindowEnd)
	assert.Equal(t, fixedTime, report.CompletedAt)
}

func TestWindowReportJSON(t *testing.T) {
	report := WindowReport{
		WindowStart:    "20250722",
		WindowEnd:      "20250806",
		Outcome:        OutcomeCompleted,
		MergedPath:     "/out/prate_daily_avg_20250722_to_20250806.nc",
		RegriddedPath:  "/out/prate_daily_avg_20250722_to_20250806_regrid.nc",
		DaysComputed:   16,
		SamplesPresent: 64,
		CompletedAt:    time.Date(2025, 8, 11, 9, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"outcome":"completed"`)
	assert.Contains(t, string(data), `"window_end":"20250806"`)
	assert.NotContains(t, string(data), "error", "empty error must be omitted")

	var decoded WindowReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)
}

func TestSetClock(t *testing.T) {
	t.Run("injects fake clock", func(t *testing.T) {
		fixedTime := time.Date(2025, 8, 11, 9, 30, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(fixedTime))
		defer SetClock(nil)

		assert.Equal(t, fixedTime, Now())
	})

	t.Run("nil restores the real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		assert.WithinDuration(t, time.Now(), Now(), time.Minute)
	})
}
