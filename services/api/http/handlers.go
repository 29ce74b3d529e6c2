package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harborlight/harborlight/internal/boxes"
)

// handleLatestAll returns the latest classified box per location.
// GET /api/v1/measurements/latest?units=imperial
func (s *Server) handleLatestAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := s.service.LatestAll(ctx, s.targetUnits(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(result), "boxes": result})
}

// handleLatestForLocation returns the latest box at one location.
// GET /api/v1/locations/:location_id/measurements/latest?units=shipping
func (s *Server) handleLatestForLocation(c *gin.Context) {
	locationID, ok := s.locationID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := s.service.LatestForLocation(ctx, locationID, s.targetUnits(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"location_id": locationID, "boxes": result})
}

// handleRange returns the measurement history of one location.
// GET /api/v1/locations/:location_id/measurements?range=7d&units=metric
func (s *Server) handleRange(c *gin.Context) {
	locationID, ok := s.locationID(c)
	if !ok {
		return
	}

	rangeTag := c.DefaultQuery("range", "24h")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result, err := s.service.Range(ctx, locationID, rangeTag, s.targetUnits(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location_id": locationID,
		"range":       rangeTag,
		"count":       len(result),
		"boxes":       result,
	})
}

func (s *Server) locationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("location_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location_id"})
		return 0, false
	}
	return id, true
}

func (s *Server) targetUnits(c *gin.Context) string {
	if units := c.Query("units"); units != "" {
		return units
	}
	return s.cfg.DefaultUnits
}

// renderError distinguishes data-shape failures from plain server errors; a
// measurement set matching no box shape must surface, never be coerced.
func (s *Server) renderError(c *gin.Context, err error) {
	var unclassifiable *boxes.UnclassifiableError
	if errors.As(err, &unclassifiable) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "unclassifiable measurement set",
			"location_id": unclassifiable.LocationID,
			"time":        unclassifiable.Time,
			"types":       unclassifiable.TypeNames,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
