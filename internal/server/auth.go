package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/auth"
)

// handleRegister creates an account and returns its token.
func (s *Server) handleRegister(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := s.auth.Register(c.Request.Context(), auth.Registration{
		Fullname:         req.Fullname,
		Email:            req.Email,
		Password:         req.Password,
		RepeatedPassword: req.RepeatedPassword,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, session)
}

// handleLogin exchanges credentials for a token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, session)
}

// handleEmailCheck looks a user up by email so they can be added to a board.
func (s *Server) handleEmailCheck(c *gin.Context) {
	user, err := s.auth.LookupEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}
