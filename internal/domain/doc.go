// Package domain models the date-windowed precipitation aggregation performed
// by this pipeline.
//
// # Data Source
//
// Raw input is GDAS 0.25° final analysis output in GRIB2, one file per
// synoptic hour (00, 06, 12, 18 UTC), laid out one directory per day:
//
//	<source root>/<YYYYMMDD>/gdas1.fnl0p25.<YYYYMMDDHH>.f00.grib2
//
// Files may legitimately be absent: delayed transfers and archive gaps are
// routine, and a missing hour is skipped rather than treated as an error.
// The field of interest is the surface precipitation rate, which wgrib2
// inventories describe as ":PRATE:surface:" and encodes in NetCDF output as
// the variable PRATE_surface, in kg/m²/s.
//
// # Processing Window
//
// A window is a fixed-length trailing span of calendar days ending on a
// weekday-aligned date. The end date is the nearest same-or-earlier
// occurrence of the configured anchor weekday (Thursday in the operational
// setup, matching the weekly forecast cycle) relative to the reference date:
//
//	days back = (weekday(reference) - anchor + 7) mod 7
//
// With the default window length of 15 days (end minus start) a window spans
// 16 calendar days inclusive. All dates are UTC; hours, minutes, and smaller
// units are always zero.
//
// # Daily Aggregation
//
// A day's value is the ensemble mean of its present hourly samples, scaled by
// 86400 to convert the rate to a daily accumulation in mm/day. A day needs at
// least two present hours to be computed (configurable); with fewer it is
// skipped. Skipped days are left out of the merged series rather than filled.
//
// # Artifacts
//
// Per-window artifacts are named from the window's inclusive date range so
// that reruns overwrite rather than accumulate:
//
//	prate_daily_avg_<start>_to_<end>.nc         merged daily series
//	prate_daily_avg_<start>_to_<end>_regrid.nc  series remapped to the destination grid
//
// Downstream forecast tooling opens the _regrid file and reads PRATE_surface.
//
// # Failure Tiers
//
// Outcomes distinguish three tiers: routine degradation (missing hours,
// skipped days, an entirely empty window) is normal and never an error;
// merge or regrid failure loses one window's artifact and nothing else; only
// workspace-level failures (cannot create scratch storage) abort the run.
package domain
