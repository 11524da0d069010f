// Command almanac-compare fetches a year of sunrise and sunset times from a
// running almanac API and compares them with a USNO "Rise and Set for the
// Sun" table, reporting the mean offset and RMSE around that mean in minutes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.ngs.io/almanac-api/internal/usno"
)

type apiOutcome struct {
	Time           string `json:"time"`
	Classification string `json:"classification"`
	Fallback       bool   `json:"fallback"`
}

type apiDay struct {
	Date   string                `json:"date"`
	Events map[string]apiOutcome `json:"events"`
}

type apiResponse struct {
	Days []apiDay `json:"days"`
}

// comparison accumulates paired differences for one event.
type comparison struct {
	name       string
	diffs      []float64
	agreements int // both sides report no event
	mismatches []string
}

func fetch(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("HTTP %d (failed to read body: %w)", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

// buildURL requests the whole year in the table's own fixed zone so that API
// dates line up with table rows.
func buildURL(base string, lat, lon float64, tz string, year int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid api_base: %w", err)
	}
	u.Path = "/v1/sun/events"
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("tz", tz)
	q.Set("start", fmt.Sprintf("%04d-01-01", year))
	q.Set("end", fmt.Sprintf("%04d-12-31", year))
	q.Set("events", "sunrise,sunset")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func fetchAPIDays(ctx context.Context, target string) (map[string]apiDay, error) {
	body, err := fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch API: %w", err)
	}
	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("invalid API JSON: %w", err)
	}
	days := make(map[string]apiDay, len(api.Days))
	for _, d := range api.Days {
		days[d.Date] = d
	}
	return days, nil
}

func (c *comparison) add(date string, cell usno.Cell, published time.Time, hasPublished bool, out apiOutcome) {
	solved := out.Time != "" && !out.Fallback
	switch {
	case hasPublished && solved:
		t, err := time.Parse(time.RFC3339, out.Time)
		if err != nil {
			c.mismatches = append(c.mismatches, fmt.Sprintf("%s: unparsable API time %q", date, out.Time))
			return
		}
		c.diffs = append(c.diffs, t.Sub(published).Minutes())
	case !hasPublished && !solved:
		c.agreements++
	case hasPublished:
		c.mismatches = append(c.mismatches, fmt.Sprintf("%s: USNO %02d%02d, API %s", date, cell.Hour, cell.Minute, out.Classification))
	default:
		c.mismatches = append(c.mismatches, fmt.Sprintf("%s: USNO %q, API %s", date, cell.Marker, out.Time))
	}
}

// calculateStats calculates mean and RMSE around mean.
func calculateStats(diffs []float64) (mean, rmse float64) {
	if len(diffs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, d := range diffs {
		sum += d
	}
	mean = sum / float64(len(diffs))

	var sse float64
	for _, d := range diffs {
		dd := d - mean
		sse += dd * dd
	}
	rmse = math.Sqrt(sse / float64(len(diffs)))
	return mean, rmse
}

func main() {
	var (
		usnoPath  string
		year      int
		zoneHours float64
		lat, lon  float64
		apiBase   string
	)
	flag.StringVar(&usnoPath, "usno_file", "", "Path or URL to a USNO one-year rise/set table")
	flag.IntVar(&year, "year", time.Now().Year(), "Table year")
	flag.Float64Var(&zoneHours, "zone_hours", 0, "Table time zone in hours east of Greenwich (e.g. -5 for EST)")
	flag.Float64Var(&lat, "lat", 0, "Latitude of the table location")
	flag.Float64Var(&lon, "lon", 0, "Longitude of the table location (east positive)")
	flag.StringVar(&apiBase, "api_base", "http://localhost:8080", "Base URL of the almanac API")
	flag.Parse()

	if usnoPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: almanac-compare -usno_file <path|url> -year 2024 -zone_hours -5 -lat 40.7 -lon -74.0 [-api_base http://localhost:8080]")
		os.Exit(2)
	}

	ctx := context.Background()
	offset := int(math.Round(zoneHours * 3600))
	zone := time.FixedZone(fmt.Sprintf("UTC%+.1f", zoneHours), offset)

	// Load USNO table.
	records, err := usno.LoadTableFromPath(ctx, usnoPath, year, zone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load USNO table: %v\n", err)
		os.Exit(1)
	}

	// The API needs an IANA zone; Etc/GMT names have inverted signs.
	tz := "UTC"
	if offset != 0 {
		if offset%3600 != 0 {
			fmt.Fprintln(os.Stderr, "zone_hours must be a whole number of hours")
			os.Exit(2)
		}
		tz = fmt.Sprintf("Etc/GMT%+d", -offset/3600)
	}

	target, err := buildURL(apiBase, lat, lon, tz, year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	days, err := fetchAPIDays(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	rise := &comparison{name: "sunrise"}
	set := &comparison{name: "sunset"}
	for _, rec := range records {
		date := rec.Date.Format("2006-01-02")
		day, ok := days[date]
		if !ok {
			fmt.Fprintf(os.Stderr, "API missing date: %s\n", date)
			os.Exit(1)
		}
		t, has := rec.RiseTime()
		rise.add(date, rec.Rise, t, has, day.Events["sunrise"])
		t, has = rec.SetTime()
		set.add(date, rec.Set, t, has, day.Events["sunset"])
	}

	for _, c := range []*comparison{rise, set} {
		mean, rmse := calculateStats(c.diffs)
		fmt.Printf("%s\n", c.name)
		fmt.Printf("  Paired days: %d\n", len(c.diffs))
		fmt.Printf("  Both no event: %d\n", c.agreements)
		fmt.Printf("  Mean(API-USNO) [min]: %.2f\n", mean)
		fmt.Printf("  RMSE around mean [min]: %.2f\n", rmse)
		for _, m := range c.mismatches {
			fmt.Printf("  mismatch %s\n", m)
		}
	}
}
