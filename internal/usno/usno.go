// Package usno reads the U.S. Naval Observatory "Rise and Set for the Sun"
// one-year tables used to check the solver against published data.
package usno

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Table layout: day of month in columns 1-2, then one "hhmm hhmm" block per
// month starting at column 5, eleven columns apart.
const (
	firstBlock = 4
	blockWidth = 11
	cellWidth  = 4
	setOffset  = 5
)

// Markers printed instead of a clock time.
const (
	MarkerAbove = "****" // sun continuously above the horizon
	MarkerBelow = "----" // sun continuously below the horizon
)

// Cell is one rise or set entry.
type Cell struct {
	Hour   int
	Minute int
	Valid  bool
	Marker string // MarkerAbove, MarkerBelow or empty
}

// Row is one day-of-month line covering all twelve months.
type Row struct {
	Day  int
	Rise [12]Cell
	Set  [12]Cell
}

// DailyRecord is a single calendar day of a table.
type DailyRecord struct {
	Date time.Time // local midnight in the table's zone
	Rise Cell
	Set  Cell
}

// RiseTime returns the rise instant, if the cell holds a time.
func (d DailyRecord) RiseTime() (time.Time, bool) {
	return d.at(d.Rise)
}

// SetTime returns the set instant, if the cell holds a time.
func (d DailyRecord) SetTime() (time.Time, bool) {
	return d.at(d.Set)
}

func (d DailyRecord) at(c Cell) (time.Time, bool) {
	if !c.Valid {
		return time.Time{}, false
	}
	return d.Date.Add(time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute), true
}

// ParseRow parses a single fixed-width day line.
func ParseRow(line string) (*Row, error) {
	line = strings.TrimRight(line, " \r")
	if len(line) < firstBlock+cellWidth {
		return nil, fmt.Errorf("line too short: %d", len(line))
	}
	if strings.TrimSpace(line[2:firstBlock]) != "" {
		return nil, fmt.Errorf("no gap after day column: %q", line[:firstBlock])
	}

	dayStr := strings.TrimSpace(line[0:2])
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid day '%s': %w", dayStr, err)
	}
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day out of range: %d", day)
	}

	row := Row{Day: day}
	for i := 0; i < 12; i++ {
		start := firstBlock + blockWidth*i
		if row.Rise[i], err = parseCell(line, start); err != nil {
			return nil, fmt.Errorf("month %d rise: %w", i+1, err)
		}
		if row.Set[i], err = parseCell(line, start+setOffset); err != nil {
			return nil, fmt.Errorf("month %d set: %w", i+1, err)
		}
	}
	return &row, nil
}

func parseCell(line string, start int) (Cell, error) {
	if start >= len(line) {
		return Cell{}, nil
	}
	end := min(start+cellWidth, len(line))
	chunk := strings.TrimSpace(line[start:end])

	switch chunk {
	case "":
		return Cell{}, nil
	case MarkerAbove, MarkerBelow:
		return Cell{Marker: chunk}, nil
	}
	if len(chunk) != cellWidth {
		return Cell{}, fmt.Errorf("invalid time '%s'", chunk)
	}

	v, err := strconv.Atoi(chunk)
	if err != nil {
		return Cell{}, fmt.Errorf("invalid time '%s': %w", chunk, err)
	}
	hour, minute := v/100, v%100
	if hour > 23 || minute > 59 {
		return Cell{}, fmt.Errorf("invalid time '%s'", chunk)
	}
	return Cell{Hour: hour, Minute: minute, Valid: true}, nil
}

// LoadTable reads a yearly table for year whose times are given in loc.
// Header lines are skipped; records are returned in date order.
func LoadTable(r io.Reader, year int, loc *time.Location) ([]DailyRecord, error) {
	scanner := bufio.NewScanner(r)
	records := make([]DailyRecord, 0, 366)

	for scanner.Scan() {
		row, err := ParseRow(scanner.Text())
		if err != nil {
			continue
		}
		for m := 0; m < 12; m++ {
			month := time.Month(m + 1)
			date := time.Date(year, month, row.Day, 0, 0, 0, 0, loc)
			if date.Month() != month {
				// Day does not exist in this month (e.g. 30 February).
				continue
			}
			records = append(records, DailyRecord{
				Date: date,
				Rise: row.Rise[m],
				Set:  row.Set[m],
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan USNO table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no day rows found in USNO table")
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

// LoadTableFromPath loads a table from a local path or HTTP URL.
func LoadTableFromPath(ctx context.Context, pathOrURL string, year int, loc *time.Location) ([]DailyRecord, error) {
	data, err := loadBytes(ctx, pathOrURL)
	if err != nil {
		return nil, err
	}
	return LoadTable(bytes.NewReader(data), year, loc)
}

func loadBytes(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, http.NoBody)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		return io.ReadAll(resp.Body)
	}
	//nolint:gosec // G304: path comes from the operator.
	return os.ReadFile(path)
}
