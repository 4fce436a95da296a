// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// observe logs each request and records its metrics. Headers are never
// logged since they carry credentials.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		elapsed := time.Since(start)

		req := c.Request()
		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}

		if s.metrics != nil {
			s.metrics.RequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			s.metrics.RequestDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())
		}
		s.logger.InfoContext(req.Context(), "request",
			"method", req.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds())
		return nil
	}
}
