package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/02loveslollipop/water-quality-viewer/internal/chart"
	"github.com/02loveslollipop/water-quality-viewer/internal/thingspeak"
)

type selectRequest struct {
	Index *int `json:"index" binding:"required"`
}

// handleV1Indicators returns the displayed slots
// GET /api/v1/indicators
func (s *Server) handleV1Indicators(c *gin.Context) {
	snap := s.dash.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data": snap.Display,
		"meta": gin.H{
			"indicator":  snap.Indicator,
			"generation": snap.Generation,
		},
	})
}

// handleV1SelectIndicator displays the reading at an index
// POST /api/v1/indicators/select {"index": 3}
func (s *Server) handleV1SelectIndicator(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	ind, err := s.dash.Select(*req.Index)
	if err != nil {
		writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ind})
}

// handleV1ChartClick hit-tests a pointer position on /chart.png
// POST /api/v1/chart/click {"x": 412, "y": 230}
func (s *Server) handleV1ChartClick(c *gin.Context) {
	var ev chart.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pointer event"})
		return
	}

	ind, ok := s.dash.Click(ev)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ind})
}

// handleV1Refresh fetches the feed again; on failure the current data stays
// POST /api/v1/refresh
func (s *Server) handleV1Refresh(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout+5*time.Second)
	defer cancel()

	if err := s.dash.Refresh(ctx); err != nil {
		var fe *thingspeak.FetchError
		if errors.As(err, &fe) {
			s.logger.Warn("refresh failed", zap.String("kind", thingspeak.KindName(err)), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": thingspeak.KindName(err)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	snap := s.dash.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data": snap.Indicator,
		"meta": gin.H{
			"count":      snap.Series.Len(),
			"generation": snap.Generation,
			"fetched_at": snap.FetchedAt.Format(time.RFC3339),
		},
	})
}
