package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/service"
)

// handleListBoards returns the boards the caller owns or belongs to.
func (s *Server) handleListBoards(c *gin.Context) {
	boards, err := s.svc.ListBoards(c.Request.Context(), actor(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, boards)
}

// handleCreateBoard creates a board owned by the caller.
func (s *Server) handleCreateBoard(c *gin.Context) {
	var req boardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	board, err := s.svc.CreateBoard(c.Request.Context(), actor(c), req.Title, req.Members)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, board)
}

// handleGetBoard returns the board with its members and tasks.
func (s *Server) handleGetBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	board, err := s.svc.GetBoard(c.Request.Context(), actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, board)
}

// handleUpdateBoard renames a board and/or replaces its members.
func (s *Server) handleUpdateBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req boardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	board, err := s.svc.UpdateBoard(c.Request.Context(), actor(c), id, service.BoardUpdate{
		Title:   req.Title,
		Members: req.Members,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, board)
}

// handleDeactivateBoard switches a board to inactive.
func (s *Server) handleDeactivateBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	board, err := s.svc.DeactivateBoard(c.Request.Context(), actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, board)
}

// handleDeleteBoard removes a board and all related tasks and comments.
// Clients of this endpoint expect 401, not 403, when a member who is not the
// owner tries to delete.
func (s *Server) handleDeleteBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.DeleteBoard(c.Request.Context(), actor(c), id); err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			s.respondError(c, http.StatusUnauthorized, err)
			return
		}
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
