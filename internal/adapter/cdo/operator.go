package cdo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// secondsPerDay scales a mean precipitation rate in kg/m^2/s to a daily
// accumulation in mm/day.
const secondsPerDay = 86400

// Operator runs CDO (Climate Data Operators) for the numeric pipeline steps:
// ensemble means, time concatenation, and conservative remapping. Every
// invocation passes -O so reruns overwrite stale outputs instead of failing.
type Operator struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewOperator creates an Operator that invokes binary with the given
// per-invocation timeout; a zero timeout leaves invocations unbounded.
func NewOperator(binary string, timeout time.Duration, logger *slog.Logger) *Operator {
	return &Operator{binary: binary, timeout: timeout, logger: logger}
}

// DailyMean averages the sample files into one field and scales it to a
// daily accumulation.
func (o *Operator) DailyMean(ctx context.Context, samplePaths []string, outPath string) error {
	args := []string{"-O", fmt.Sprintf("-mulc,%d", secondsPerDay), "-ensmean"}
	args = append(args, samplePaths...)
	args = append(args, outPath)
	return o.run(ctx, "daily mean", args)
}

// MergeTime concatenates daily files into a single series. Inputs must
// already be in chronological order; mergetime preserves their records as
// given.
func (o *Operator) MergeTime(ctx context.Context, dailyPaths []string, outPath string) error {
	args := append([]string{"-O", "mergetime"}, dailyPaths...)
	args = append(args, outPath)
	return o.run(ctx, "merge", args)
}

// Remap conservatively remaps inPath onto the named target grid.
func (o *Operator) Remap(ctx context.Context, grid, inPath, outPath string) error {
	return o.run(ctx, "remap", []string{"-O", "remapcon," + grid, inPath, outPath})
}

func (o *Operator) run(ctx context.Context, op string, args []string) error {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, o.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("cdo %s: %w: %s", op, err, msg)
		}
		return fmt.Errorf("cdo %s: %w", op, err)
	}

	o.logger.Debug("cdo finished", "operation", op, "out", args[len(args)-1])
	return nil
}
