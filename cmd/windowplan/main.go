// Command windowplan previews an aggregation run without extracting
// anything: it resolves the windows a reference date would produce and
// checks which raw GRIB2 files are actually on disk, so thin coverage is
// visible before spending hours on extraction.
//
// Usage:
//
//	go run ./cmd/windowplan -date 20250811 -windows 2
//
// Window policy and the source root default to the same environment
// variables the aggregator reads; flags override them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/climops/precip-analysis/internal/config"
	"github.com/climops/precip-analysis/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dateArg := flag.String("date", "", "reference date as YYYYMMDD (default today)")
	windows := flag.Int("windows", cfg.WindowCount, "number of weekly windows to preview")
	length := flag.Int("length", cfg.WindowLengthDays, "window length in days (end minus start)")
	weekdayArg := flag.String("weekday", cfg.TargetWeekday.String(), "target weekday name")
	sourceRoot := flag.String("source-root", cfg.SourceRoot, "raw GRIB2 store root")
	minSamples := flag.Int("min-samples", cfg.MinSamplesPerDay, "present samples required to compute a day")
	flag.Parse()

	ref := domain.DateOnly(domain.Now())
	if *dateArg != "" {
		if ref, err = domain.ParseReferenceDate(*dateArg); err != nil {
			return err
		}
	}
	weekday, err := domain.ParseWeekday(*weekdayArg)
	if err != nil {
		return err
	}

	fmt.Println("=== Precipitation Window Preflight ===")
	fmt.Println()
	fmt.Printf("%-16s %s (%s)\n", "Reference date:", ref.Format(domain.DateLayout), ref.Weekday())
	fmt.Printf("%-16s %s\n", "Target weekday:", weekday)
	fmt.Printf("%-16s %d x %d dates\n", "Windows:", *windows, *length+1)
	fmt.Printf("%-16s %s\n", "Source root:", *sourceRoot)

	computableWindows := 0
	for _, end := range domain.ResolveEndDates(ref, weekday, *windows) {
		w := domain.NewWindow(end, *length)
		fmt.Printf("\n--- window %s ---\n", w)

		computableDays := 0
		for _, day := range w.Days() {
			marks := make([]string, 0, len(domain.SynopticHours))
			present := 0
			for _, hour := range domain.SynopticHours {
				if _, statErr := os.Stat(domain.SourcePath(*sourceRoot, day, hour)); statErr == nil {
					marks = append(marks, fmt.Sprintf("%02dz ok", hour))
					present++
				} else {
					marks = append(marks, fmt.Sprintf("%02dz --", hour))
				}
			}

			verdict := "skip"
			if present >= *minSamples {
				verdict = "compute"
				computableDays++
			}
			fmt.Printf("  %s  %s  %d/%d  %s\n",
				day.Format(domain.DateLayout), strings.Join(marks, "  "),
				present, len(domain.SynopticHours), verdict)
		}

		if computableDays > 0 {
			computableWindows++
			fmt.Printf("  %d/%d days computable -> %s\n",
				computableDays, len(w.Days()), domain.RegriddedArtifactName(w))
		} else {
			fmt.Println("  no computable days -> window would report no_data")
		}
	}

	fmt.Println()
	fmt.Printf("Coverage: %d/%d windows computable.\n", computableWindows, *windows)
	if computableWindows < *windows {
		return fmt.Errorf("%d window(s) would produce no data", *windows-computableWindows)
	}
	return nil
}
