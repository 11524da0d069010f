// Command daylight-grid computes sunrise, sunset and day length over a
// latitude/longitude grid for one or more dates and writes one NetCDF file
// per date.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.ngs.io/almanac-api/internal/adapter/grid"
	"go.ngs.io/almanac-api/internal/adapter/timescale"
	"go.ngs.io/almanac-api/internal/domain"
	"go.ngs.io/almanac-api/internal/logging"
)

func main() {
	// Command line flags
	outDir := flag.String("out", "./data/daylight", "Output directory for NetCDF files")
	region := flag.String("region", "japan", "Region: japan, global, or custom")
	latMin := flag.Float64("lat-min", 20.0, "Minimum latitude (custom region)")
	latMax := flag.Float64("lat-max", 50.0, "Maximum latitude (custom region)")
	lonMin := flag.Float64("lon-min", 120.0, "Minimum longitude (custom region)")
	lonMax := flag.Float64("lon-max", 150.0, "Maximum longitude (custom region)")
	resolution := flag.Float64("resolution", 0.5, "Grid resolution in degrees")
	startStr := flag.String("start", time.Now().UTC().Format("2006-01-02"), "First UTC date (YYYY-MM-DD)")
	days := flag.Int("days", 1, "Number of consecutive dates")
	workers := flag.Int("workers", runtime.NumCPU(), "Parallel latitude rows")
	logLevel := flag.String("log-level", "info", "Log level")

	flag.Parse()

	logger, err := logging.New("daylight-grid", logging.Config{Level: *logLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Define grid based on region
	var spec grid.Spec
	switch *region {
	case "japan":
		spec = grid.Spec{
			LatMin:     20.0,
			LatMax:     50.0,
			LonMin:     120.0,
			LonMax:     150.0,
			Resolution: *resolution,
		}
	case "global":
		spec = grid.Spec{
			LatMin:     -89.5,
			LatMax:     89.5,
			LonMin:     -180.0,
			LonMax:     180.0,
			Resolution: 1.0, // Lower resolution for global
		}
	case "custom":
		spec = grid.Spec{
			LatMin:     *latMin,
			LatMax:     *latMax,
			LonMin:     *lonMin,
			LonMax:     *lonMax,
			Resolution: *resolution,
		}
	default:
		logger.Error("unknown region (use japan, global, or custom)", "region", *region)
		os.Exit(2)
	}

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		logger.Error("invalid start date", "error", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	logger.Info("generating daylight grids",
		"region", *region,
		"lat", fmt.Sprintf("%.1f..%.1f", spec.LatMin, spec.LatMax),
		"lon", fmt.Sprintf("%.1f..%.1f", spec.LonMin, spec.LonMax),
		"resolution", spec.Resolution,
		"days", *days)

	solver := domain.NewSolver(timescale.NewMeeus(), domain.SolverOptions{})
	ctx := context.Background()

	for i := 0; i < *days; i++ {
		date := start.AddDate(0, 0, i)
		began := time.Now()

		d, err := grid.Compute(ctx, solver, spec, date, *workers)
		if err != nil {
			logger.Error("failed to compute grid", "date", date.Format("2006-01-02"), "error", err)
			os.Exit(1)
		}

		path := filepath.Join(*outDir, fmt.Sprintf("daylight_%s.nc", date.Format("20060102")))
		if err := grid.Write(path, d); err != nil {
			logger.Error("failed to write NetCDF", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("wrote grid", "path", path,
			"cells", len(d.Lat)*len(d.Lon),
			"elapsed", time.Since(began).Round(time.Millisecond))
	}

	// Estimate file sizes
	nCells := len(spec.Lats()) * len(spec.Lons())
	totalMB := float64(nCells*8*3*(*days)) / 1024 / 1024
	logger.Info("generation complete", "dir", *outDir, "grid", fmt.Sprintf("%d × %d", len(spec.Lats()), len(spec.Lons())), "approx_mb", fmt.Sprintf("%.1f", totalMB))
}
