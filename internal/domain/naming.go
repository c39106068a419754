package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// SynopticHours are the four standard observation hours at which raw model
// output exists. Exactly these four, each evaluated independently.
var SynopticHours = [4]int{0, 6, 12, 18}

// SourcePath builds the expected raw GRIB2 path for one (date, hour) under
// the source root: <root>/<YYYYMMDD>/gdas1.fnl0p25.<YYYYMMDDHH>.f00.grib2.
func SourcePath(root string, date time.Time, hour int) string {
	day := date.Format(DateLayout)
	name := fmt.Sprintf("gdas1.fnl0p25.%s%02d.f00.grib2", day, hour)
	return filepath.Join(root, day, name)
}

// SampleFileName names the per-hour extracted NetCDF sample inside a job
// workspace, e.g. "prate_20250806_06z.nc".
func SampleFileName(date time.Time, hour int) string {
	return fmt.Sprintf("prate_%s_%02dz.nc", date.Format(DateLayout), hour)
}

// DailyMeanFileName names the per-day aggregate inside a job workspace,
// e.g. "prate_daily_20250806.nc".
func DailyMeanFileName(date time.Time) string {
	return fmt.Sprintf("prate_daily_%s.nc", date.Format(DateLayout))
}

// MergedArtifactName names the merged daily series for a window. Encoding the
// date range makes reruns overwrite the same file and keeps concurrent
// windows on disjoint paths.
func MergedArtifactName(w Window) string {
	return fmt.Sprintf("prate_daily_avg_%s_to_%s.nc",
		w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

// RegriddedArtifactName names the remapped series for a window; this is the
// file downstream analysis reads.
func RegriddedArtifactName(w Window) string {
	return fmt.Sprintf("prate_daily_avg_%s_to_%s_regrid.nc",
		w.Start.Format(DateLayout), w.End.Format(DateLayout))
}
