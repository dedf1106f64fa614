package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/core, /api/v1/indicators, /api/v1/chart, /api/v1/realtime
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	// Core endpoints - fetched series and individual readings
	core := v1.Group("/core")
	{
		core.GET("/series", s.handleV1Series)
		core.GET("/readings/latest", s.handleV1LatestReading)
		core.GET("/readings/:index", s.handleV1Reading)
	}

	// Indicator endpoints - the displayed reading and its potability status
	indicators := v1.Group("/indicators")
	{
		indicators.GET("", s.handleV1Indicators)
		indicators.POST("/select", s.handleV1SelectIndicator)
	}

	chart := v1.Group("/chart")
	{
		chart.POST("/click", s.handleV1ChartClick)
	}

	// Refresh re-fetches the feed; guarded when a bearer token is configured
	refresh := v1.Group("/refresh")
	if s.cfg.BearerToken != "" {
		refresh.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}
	refresh.POST("", s.handleV1Refresh)

	// Realtime endpoints - pushed state changes
	realtime := v1.Group("/realtime")
	{
		realtime.GET("/ws", s.handleV1RealtimeWS)
	}
}
