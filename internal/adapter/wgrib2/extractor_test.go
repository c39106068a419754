package wgrib2

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInventory = `1:0:d=2025080600:TMP:surface:anl:
2:381762:d=2025080600:UGRD:10 m above ground:anl:
5:1938239:d=2025080600:PRATE:surface:anl:
6:2110065:d=2025080600:PRATE:2 m above ground:anl:
`

// writeStub installs a fake wgrib2 as a shell script that appends its
// arguments to calls.txt and then runs body.
func writeStub(t *testing.T, body string) (binary, callsFile string) {
	t.Helper()
	dir := t.TempDir()
	binary = filepath.Join(dir, "wgrib2")
	callsFile = filepath.Join(dir, "calls.txt")

	script := "#!/bin/sh\necho \"$@\" >> \"" + callsFile + "\"\n" + body
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, callsFile
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract(t *testing.T) {
	t.Run("extracts the matching record", func(t *testing.T) {
		binary, callsFile := writeStub(t, `if [ "$1" = "-s" ]; then
cat <<'EOF'
`+testInventory+`EOF
else
: > "$5"
fi
`)
		outPath := filepath.Join(t.TempDir(), "sample.nc")
		e := NewExtractor(binary, time.Minute, testLogger())

		err := e.Extract(context.Background(), "/data/in.grib2", outPath)

		require.NoError(t, err)
		assert.FileExists(t, outPath)

		calls, readErr := os.ReadFile(callsFile)
		require.NoError(t, readErr)
		assert.Contains(t, string(calls), "-d 5 -netcdf "+outPath,
			"must extract the surface PRATE record, not the 2 m one")
	})

	t.Run("no matching record", func(t *testing.T) {
		binary, _ := writeStub(t, `echo "1:0:d=2025080600:TMP:surface:anl:"`)
		e := NewExtractor(binary, time.Minute, testLogger())

		err := e.Extract(context.Background(), "/data/in.grib2", filepath.Join(t.TempDir(), "sample.nc"))

		assert.ErrorIs(t, err, ErrNoMatchingRecord)
	})

	t.Run("tool failure surfaces stderr", func(t *testing.T) {
		binary, _ := writeStub(t, `echo "fatal: bad GRIB2 file" >&2
exit 8
`)
		e := NewExtractor(binary, time.Minute, testLogger())

		err := e.Extract(context.Background(), "/data/in.grib2", filepath.Join(t.TempDir(), "sample.nc"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad GRIB2 file")
	})

	t.Run("silent tool with no output file", func(t *testing.T) {
		binary, _ := writeStub(t, `if [ "$1" = "-s" ]; then
cat <<'EOF'
`+testInventory+`EOF
fi
`)
		e := NewExtractor(binary, time.Minute, testLogger())

		err := e.Extract(context.Background(), "/data/in.grib2", filepath.Join(t.TempDir(), "sample.nc"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no output produced")
	})
}

func TestFindRecord_SubMessage(t *testing.T) {
	binary, callsFile := writeStub(t, `if [ "$1" = "-s" ]; then
cat <<'EOF'
1:0:d=2025080600:TMP:surface:anl:
5.1:1938239:d=2025080600:PRATE:surface:anl:
EOF
else
: > "$5"
fi
`)
	outPath := filepath.Join(t.TempDir(), "sample.nc")
	e := NewExtractor(binary, time.Minute, testLogger())

	require.NoError(t, e.Extract(context.Background(), "/data/in.grib2", outPath))

	calls, err := os.ReadFile(callsFile)
	require.NoError(t, err)
	assert.Contains(t, string(calls), "-d 5.1 ", "sub-message ids must be passed through verbatim")
}
