// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/quorumqa/quorum/internal/auth"
	"github.com/quorumqa/quorum/internal/question"
	"github.com/quorumqa/quorum/pkg/errutil"
)

// Codes for failures raised by the API layer itself.
const (
	CodeInternal = "INTERNAL"
	CodeRequest  = "BAD_REQUEST"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps a service error to its HTTP status. With legacy set every
// client error is 401.
func StatusFor(err error, legacy bool) int {
	status := clientStatus(err)
	if status == http.StatusInternalServerError {
		return status
	}
	if legacy {
		return http.StatusUnauthorized
	}
	return status
}

func clientStatus(err error) int {
	if question.IsInvalidContent(err) {
		return http.StatusBadRequest
	}
	switch auth.KindOf(err) {
	case auth.KindDuplicateUsername, auth.KindDuplicateEmail:
		return http.StatusConflict
	case auth.KindUnknownUser:
		return http.StatusNotFound
	case auth.KindBadCredentials, auth.KindUnauthenticated, auth.KindNoActiveSession:
		return http.StatusUnauthorized
	case auth.KindSessionInactive:
		return http.StatusForbidden
	case auth.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   ErrorResponse
	)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		body = ErrorResponse{Code: CodeRequest, Message: fmt.Sprint(he.Message)}
	} else {
		status = StatusFor(err, s.legacy)
		if status == http.StatusInternalServerError {
			errutil.LogError(c.Request().Context(), s.logger, "request failed", err)
			body = ErrorResponse{Code: CodeInternal, Message: http.StatusText(status)}
		} else {
			body = ErrorResponse{Code: auth.ErrCode(err), Message: publicMessage(err)}
		}
	}

	if writeErr := c.JSON(status, body); writeErr != nil {
		s.logger.WarnContext(c.Request().Context(), "write error response failed", "error", writeErr)
	}
}

// publicMessage returns the client-facing text of a domain error.
func publicMessage(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Error()
	}
	return err.Error()
}
