package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/almanac-api/internal/adapter/store"
	"go.ngs.io/almanac-api/internal/domain"
	"go.ngs.io/almanac-api/internal/usecase"
)

// Handler handles HTTP requests for sun and moon events.
type Handler struct {
	almanacUC *usecase.AlmanacUseCase
	moonUC    *usecase.MoonPhaseUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(almanacUC *usecase.AlmanacUseCase, moonUC *usecase.MoonPhaseUseCase) *Handler {
	return &Handler{
		almanacUC: almanacUC,
		moonUC:    moonUC,
	}
}

// GetSunEvents handles GET /v1/sun/events.
func (h *Handler) GetSunEvents(c *gin.Context) {
	// Parse query parameters.
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	stationID := c.Query("station_id")
	dateStr := c.Query("date")
	startStr := c.Query("start")
	endStr := c.Query("end")

	// Build request.
	req := usecase.AlmanacRequest{
		Timezone: c.Query("tz"),
		Events:   splitList(c.Query("events")),
	}

	// Parse lat/lon.
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
			return
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
			return
		}
		req.Lat = &lat
		req.Lon = &lon
	}

	// Parse station ID.
	if stationID != "" {
		req.StationID = &stationID
	}

	// Parse dates: either date, or start and end.
	if dateStr != "" {
		if startStr != "" || endStr != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date and start/end are mutually exclusive"})
			return
		}
		startStr, endStr = dateStr, dateStr
	}
	if startStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date or start parameter is required"})
		return
	}
	if endStr == "" {
		endStr = startStr
	}

	start, err := time.Parse(usecase.DateLayout, startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid start date (expected YYYY-MM-DD): %v", err)})
		return
	}
	end, err := time.Parse(usecase.DateLayout, endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid end date (expected YYYY-MM-DD): %v", err)})
		return
	}
	req.Start = start
	req.End = end

	// Execute use case.
	response, err := h.almanacUC.Execute(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetMoonPhases handles GET /v1/moon/phases.
func (h *Handler) GetMoonPhases(c *gin.Context) {
	startStr := c.Query("start")
	endStr := c.Query("end")

	if startStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start parameter is required"})
		return
	}
	if endStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end parameter is required"})
		return
	}

	start, err := parseInstant(startStr, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid start time (expected RFC3339 or YYYY-MM-DD): %v", err)})
		return
	}
	end, err := parseInstant(endStr, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid end time (expected RFC3339 or YYYY-MM-DD): %v", err)})
		return
	}

	response, err := h.moonUC.Execute(c.Request.Context(), usecase.MoonPhaseRequest{
		Start:    start,
		End:      end,
		Timezone: c.Query("tz"),
		Phases:   splitList(c.Query("phases")),
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// EventInfo describes one entry of the event catalogue.
type EventInfo struct {
	Name      string  `json:"name"`
	Direction string  `json:"direction,omitempty"`
	OffsetDeg float64 `json:"offset_deg"`
}

// GetEvents handles GET /v1/events.
func (h *Handler) GetEvents(c *gin.Context) {
	events := domain.AllEvents()

	response := make([]EventInfo, len(events))
	for i, ev := range events {
		info := EventInfo{
			Name:      ev.String(),
			OffsetDeg: ev.Offset(),
		}
		if dir := ev.Direction(); dir != 0 {
			info.Direction = dir.String()
		}
		response[i] = info
	}

	c.JSON(http.StatusOK, gin.H{
		"events": response,
		"count":  len(response),
	})
}

// StationInfo is the public form of a station.
type StationInfo struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// GetStations handles GET /v1/stations.
func (h *Handler) GetStations(c *gin.Context) {
	stations, err := h.almanacUC.ListStations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make([]StationInfo, len(stations))
	for i, st := range stations {
		response[i] = StationInfo{
			ID:       st.ID,
			Name:     st.Name,
			Lat:      st.Location.Latitude,
			Lon:      st.Location.Longitude,
			Timezone: st.Timezone,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"stations": response,
		"count":    len(response),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrStationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseInstant accepts RFC3339 or a bare date; a bare end date covers the whole day.
func parseInstant(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(usecase.DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
