// Package csv provides CSV-based station data loading.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/almanac-api/internal/adapter/store"
	"go.ngs.io/almanac-api/internal/domain"
)

// StationsFile is the catalogue file name inside the data directory.
const StationsFile = "stations.csv"

var expectedHeaders = []string{"station_id", "latitude", "longitude", "timezone", "name"}

// StationStore provides access to the station catalogue.
type StationStore struct {
	dataDir string
}

// NewStationStore creates a new CSV-based station store.
func NewStationStore(dataDir string) *StationStore {
	return &StationStore{
		dataDir: dataDir,
	}
}

// LoadStation loads a single station by ID. IDs are case-insensitive.
func (s *StationStore) LoadStation(stationID string) (domain.Station, error) {
	stations, err := s.read()
	if err != nil {
		return domain.Station{}, err
	}

	id := strings.ToLower(strings.TrimSpace(stationID))
	for _, st := range stations {
		if st.ID == id {
			return st, nil
		}
	}
	return domain.Station{}, fmt.Errorf("%w: %s", store.ErrStationNotFound, stationID)
}

// ListStations returns all stations sorted by ID.
func (s *StationStore) ListStations() ([]domain.Station, error) {
	stations, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

func (s *StationStore) read() ([]domain.Station, error) {
	filename := filepath.Join(s.dataDir, StationsFile)

	//nolint:gosec // G304: File path constructed from dataDir (config).
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open station catalogue: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ParseStations(file)
}

// ParseStations reads a station catalogue in CSV form.
func ParseStations(r io.Reader) ([]domain.Station, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	// Read header.
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Validate header.
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid CSV header: expected %v, got %v", expectedHeaders, header)
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid CSV header: expected column %d to be %s, got %s", i, expectedHeaders[i], h)
		}
	}

	stations := make([]domain.Station, 0)
	seen := make(map[string]bool)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		st, err := parseRecord(record)
		if err != nil {
			return nil, err
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("duplicate station %s", st.ID)
		}
		seen[st.ID] = true
		stations = append(stations, st)
	}

	if len(stations) == 0 {
		return nil, fmt.Errorf("no stations found in catalogue")
	}

	return stations, nil
}

func parseRecord(record []string) (domain.Station, error) {
	id := strings.ToLower(strings.TrimSpace(record[0]))
	if id == "" {
		return domain.Station{}, fmt.Errorf("invalid CSV record: empty station_id")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return domain.Station{}, fmt.Errorf("invalid latitude for station %s: %w", id, err)
	}
	if lat <= -90 || lat >= 90 {
		return domain.Station{}, fmt.Errorf("latitude for station %s must be strictly between -90 and 90", id)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return domain.Station{}, fmt.Errorf("invalid longitude for station %s: %w", id, err)
	}
	if lon < -180 || lon > 180 {
		return domain.Station{}, fmt.Errorf("longitude for station %s must be between -180 and 180", id)
	}

	tz := strings.TrimSpace(record[3])
	if _, err := time.LoadLocation(tz); err != nil {
		return domain.Station{}, fmt.Errorf("invalid timezone for station %s: %w", id, err)
	}

	return domain.Station{
		ID:       id,
		Name:     strings.TrimSpace(record[4]),
		Location: domain.Location{Latitude: lat, Longitude: lon},
		Timezone: tz,
	}, nil
}
