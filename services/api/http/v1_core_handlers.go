package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/water-quality-viewer/internal/dashboard"
	"github.com/02loveslollipop/water-quality-viewer/internal/models"
	"github.com/02loveslollipop/water-quality-viewer/internal/potability"
)

// handleV1Series returns the four parallel sequences of the last fetch
// GET /api/v1/core/series
func (s *Server) handleV1Series(c *gin.Context) {
	snap := s.dash.Snapshot()

	meta := gin.H{
		"count":      snap.Series.Len(),
		"generation": snap.Generation,
	}
	if !snap.FetchedAt.IsZero() {
		meta["fetched_at"] = snap.FetchedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": snap.Series,
		"meta": meta,
	})
}

// handleV1LatestReading returns the most recent reading with its classification
// GET /api/v1/core/readings/latest
func (s *Server) handleV1LatestReading(c *gin.Context) {
	reading, ind, err := s.dash.Latest()
	if err != nil {
		writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, readingResponse(reading, ind))
}

// handleV1Reading returns the reading at a series index
// GET /api/v1/core/readings/:index
func (s *Server) handleV1Reading(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	reading, ind, err := s.dash.Reading(index)
	if err != nil {
		writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, readingResponse(reading, ind))
}

func readingResponse(reading models.Reading, ind potability.Indicator) gin.H {
	return gin.H{
		"data": gin.H{
			"reading":   reading,
			"indicator": ind,
		},
	}
}

func writeDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dashboard.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, dashboard.ErrNoData):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
