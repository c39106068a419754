package wgrib2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrNoMatchingRecord reports that a GRIB2 inventory holds no surface
// precipitation-rate record. The variable's position varies between files,
// so the inventory is searched rather than indexed.
var ErrNoMatchingRecord = errors.New("no PRATE surface record in inventory")

// Inventory field values identifying the record to extract.
const (
	variableName = "PRATE"
	levelName    = "surface"
)

// Extractor pulls the surface precipitation-rate field out of GRIB2 files
// with the wgrib2 command-line tool, writing one NetCDF file per sample.
type Extractor struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExtractor creates an Extractor that invokes binary with the given
// per-invocation timeout; a zero timeout leaves invocations unbounded.
func NewExtractor(binary string, timeout time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{binary: binary, timeout: timeout, logger: logger}
}

// Extract locates the precipitation-rate record in gribPath and writes it to
// outPath as NetCDF. The absence of a matching record is reported as
// ErrNoMatchingRecord; any other failure means the tool itself misbehaved.
func (e *Extractor) Extract(ctx context.Context, gribPath, outPath string) error {
	record, err := e.findRecord(ctx, gribPath)
	if err != nil {
		return err
	}

	if _, err := e.run(ctx, gribPath, "-d", record, "-netcdf", outPath); err != nil {
		return fmt.Errorf("extract record %s: %w", record, err)
	}

	// wgrib2 can exit zero without producing output when the record is
	// malformed, so the file is checked rather than trusted.
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("extract record %s: no output produced: %w", record, err)
	}

	e.logger.Debug("sample extracted", "grib", gribPath, "record", record, "out", outPath)
	return nil
}

// findRecord scans the inventory for the first record whose variable and
// level match. Inventory lines look like
// "5:1938239:d=2025080600:PRATE:surface:anl:".
func (e *Extractor) findRecord(ctx context.Context, gribPath string) (string, error) {
	out, err := e.run(ctx, "-s", gribPath)
	if err != nil {
		return "", fmt.Errorf("scan inventory: %w", err)
	}

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 5 && fields[3] == variableName && fields[4] == levelName {
			return fields[0], nil
		}
	}
	return "", ErrNoMatchingRecord
}

func (e *Extractor) run(ctx context.Context, args ...string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", e.binary, err, msg)
		}
		return "", fmt.Errorf("%s: %w", e.binary, err)
	}
	return stdout.String(), nil
}
