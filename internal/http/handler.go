// Package http exposes the tide service over HTTP.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/tidewatch/internal/usecase"
)

// Handler handles HTTP requests for tide tables and stations.
type Handler struct {
	tides *usecase.TideService
}

// NewHandler creates a new HTTP handler.
func NewHandler(tides *usecase.TideService) *Handler {
	return &Handler{
		tides: tides,
	}
}

// GetTable handles GET /v1/tides/table.
func (h *Handler) GetTable(c *gin.Context) {
	req := usecase.TableRequest{
		Station: c.Query("station"),
	}

	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	req.Year = year

	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	req.Days = days

	// Parse time (default: now).
	if timeStr := c.Query("time"); timeStr != "" {
		t, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid time (expected RFC3339): %v", err)})
			return
		}
		req.Time = t.UTC()
	}

	tzHours, tzMins, err := usecase.ParseTZ(c.Query("tz"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.TZHours, req.TZMins = tzHours, tzMins

	// Execute use case.
	response, err := h.tides.Table(req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Verify handles GET /v1/tides/verify.
func (h *Handler) Verify(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}

	report, err := h.tides.Verify(c.Query("station"), year)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListStations handles GET /v1/stations.
func (h *Handler) ListStations(c *gin.Context) {
	stations := h.tides.Stations()
	c.JSON(http.StatusOK, gin.H{
		"stations": stations,
		"count":    len(stations),
	})
}

// GetStation handles GET /v1/stations/:name.
func (h *Handler) GetStation(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}

	detail, err := h.tides.Station(c.Param("name"), year)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// NearestStation handles GET /v1/stations/nearest.
func (h *Handler) NearestStation(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}

	summary, err := h.tides.Nearest(lat, lon)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// queryInt parses an optional integer query parameter. It writes a 400 and
// returns false when the value is malformed.
func queryInt(c *gin.Context, key string) (int, bool) {
	s := c.Query(key)
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", key, err)})
		return 0, false
	}
	return v, true
}

// writeError maps use case errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, usecase.ErrStationNotFound), errors.Is(err, usecase.ErrNoFixtures):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
