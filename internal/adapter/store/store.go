package store

import (
	"errors"

	"go.ngs.io/almanac-api/internal/domain"
)

// ErrStationNotFound is returned when a station ID is not in the catalogue.
var ErrStationNotFound = errors.New("station not found")

// StationLoader is the interface for loading named observer locations
type StationLoader interface {
	// LoadStation loads a station by its ID (e.g., "tokyo")
	LoadStation(stationID string) (domain.Station, error)

	// ListStations returns every station, ordered by ID
	ListStations() ([]domain.Station, error)
}
