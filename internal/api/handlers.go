// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/quorumqa/quorum/internal/auth"
)

// Response messages.
const (
	MsgRegistered      = "USER SUCCESSFULLY REGISTERED"
	MsgSignedIn        = "SIGNED IN SUCCESSFULLY"
	MsgSignedOut       = "SIGNED OUT SUCCESSFULLY"
	MsgQuestionCreated = "QUESTION CREATED"
)

type signupRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	UserName      string `json:"userName"`
	EmailAddress  string `json:"emailAddress"`
	Password      string `json:"password"`
	Country       string `json:"country"`
	AboutMe       string `json:"aboutMe"`
	DOB           string `json:"dob"`
	ContactNumber string `json:"contactNumber"`
}

// StatusResponse acknowledges a created resource.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// MessageResponse acknowledges a session change.
type MessageResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type questionRequest struct {
	Content string `json:"content"`
}

func (s *Server) signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := s.sessions.Register(c.Request().Context(), auth.RegisterInput{
		Username: req.UserName,
		Email:    req.EmailAddress,
		Password: req.Password,
		Profile: auth.Profile{
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			AboutMe:       req.AboutMe,
			DateOfBirth:   req.DOB,
			Country:       req.Country,
			ContactNumber: req.ContactNumber,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, StatusResponse{ID: user.ID.String(), Status: MsgRegistered})
}

func (s *Server) signin(c echo.Context) error {
	username, password, ok := c.Request().BasicAuth()
	if !ok {
		return oops.In(auth.DomainSignin).Code(auth.CodeInvalidInput).
			With("field", "authorization").
			Errorf("authorization header must carry basic credentials")
	}

	session, err := s.sessions.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		return err
	}
	c.Response().Header().Set(AccessTokenHeader, session.AccessToken)
	return c.JSON(http.StatusOK, MessageResponse{ID: session.UserID.String(), Message: MsgSignedIn})
}

func (s *Server) signout(c echo.Context) error {
	user, err := s.sessions.Terminate(c.Request().Context(), bearerToken(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{ID: user.ID.String(), Message: MsgSignedOut})
}

func (s *Server) createQuestion(c echo.Context) error {
	var req questionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	q, err := s.questions.Create(c.Request().Context(), bearerToken(c), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, StatusResponse{ID: q.ID.String(), Status: MsgQuestionCreated})
}

// bearerToken reads the Authorization header as a raw token, with or
// without a Bearer prefix.
func bearerToken(c echo.Context) string {
	h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	return h
}
