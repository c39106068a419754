package cdo

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub installs a fake cdo as a shell script that records its arguments
// to calls.txt, one invocation per line.
func writeStub(t *testing.T, body string) (binary, callsFile string) {
	t.Helper()
	dir := t.TempDir()
	binary = filepath.Join(dir, "cdo")
	callsFile = filepath.Join(dir, "calls.txt")

	script := "#!/bin/sh\necho \"$@\" >> \"" + callsFile + "\"\n" + body
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, callsFile
}

func lastCall(t *testing.T, callsFile string) string {
	t.Helper()
	data, err := os.ReadFile(callsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	return lines[len(lines)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDailyMean(t *testing.T) {
	binary, callsFile := writeStub(t, "")
	o := NewOperator(binary, time.Minute, testLogger())

	err := o.DailyMean(context.Background(),
		[]string{"/ws/prate_20250806_00z.nc", "/ws/prate_20250806_12z.nc"},
		"/ws/prate_daily_20250806.nc")

	require.NoError(t, err)
	assert.Equal(t,
		"-O -mulc,86400 -ensmean /ws/prate_20250806_00z.nc /ws/prate_20250806_12z.nc /ws/prate_daily_20250806.nc",
		lastCall(t, callsFile))
}

func TestMergeTime(t *testing.T) {
	binary, callsFile := writeStub(t, "")
	o := NewOperator(binary, time.Minute, testLogger())

	err := o.MergeTime(context.Background(),
		[]string{"/ws/prate_daily_20250805.nc", "/ws/prate_daily_20250806.nc"},
		"/out/prate_daily_avg_20250722_to_20250806.nc")

	require.NoError(t, err)
	assert.Equal(t,
		"-O mergetime /ws/prate_daily_20250805.nc /ws/prate_daily_20250806.nc /out/prate_daily_avg_20250722_to_20250806.nc",
		lastCall(t, callsFile))
}

func TestRemap(t *testing.T) {
	binary, callsFile := writeStub(t, "")
	o := NewOperator(binary, time.Minute, testLogger())

	err := o.Remap(context.Background(), "r360x180",
		"/out/prate_daily_avg_20250722_to_20250806.nc",
		"/out/prate_daily_avg_20250722_to_20250806_regrid.nc")

	require.NoError(t, err)
	assert.Equal(t,
		"-O remapcon,r360x180 /out/prate_daily_avg_20250722_to_20250806.nc /out/prate_daily_avg_20250722_to_20250806_regrid.nc",
		lastCall(t, callsFile))
}

func TestRun_FailureSurfacesStderr(t *testing.T) {
	binary, _ := writeStub(t, `echo "cdo mergetime (Abort): Unsupported file structure" >&2
exit 1
`)
	o := NewOperator(binary, time.Minute, testLogger())

	err := o.MergeTime(context.Background(), []string{"/ws/a.nc"}, "/out/merged.nc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cdo merge")
	assert.Contains(t, err.Error(), "Unsupported file structure")
}

func TestRun_Timeout(t *testing.T) {
	binary, _ := writeStub(t, "sleep 5\n")
	o := NewOperator(binary, 50*time.Millisecond, testLogger())

	start := time.Now()
	err := o.Remap(context.Background(), "r360x180", "/in.nc", "/out.nc")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second, "timeout must kill the tool early")
}
