package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/service"
)

// handleListTasks returns every task visible to the caller.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.svc.ListTasks(c.Request.Context(), actor(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleAssignedToMe lists tasks assigned to the caller.
func (s *Server) handleAssignedToMe(c *gin.Context) {
	tasks, err := s.svc.AssignedToMe(c.Request.Context(), actor(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleReviewing lists tasks the caller reviews.
func (s *Server) handleReviewing(c *gin.Context) {
	tasks, err := s.svc.Reviewing(c.Request.Context(), actor(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleCreateTask inserts a new task on a board.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.svc.CreateTask(c.Request.Context(), actor(c), service.TaskInput{
		BoardID:     req.Board,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		ReviewerID:  req.ReviewerID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleGetTask returns a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.svc.GetTask(c.Request.Context(), actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleUpdateTask updates task fields such as status, assignee or due date.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	patch := models.TaskPatch{
		Title:            req.Title,
		Description:      req.Description.Value,
		ClearDescription: req.Description.cleared(),
		Status:           req.Status,
		Priority:         req.Priority,
		AssigneeID:       req.AssigneeID.Value,
		ClearAssignee:    req.AssigneeID.cleared(),
		ReviewerID:       req.ReviewerID.Value,
		ClearReviewer:    req.ReviewerID.cleared(),
		DueDate:          req.DueDate.Value,
		ClearDueDate:     req.DueDate.cleared(),
	}

	task, err := s.svc.UpdateTask(c.Request.Context(), actor(c), id, patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task together with its comments.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteTask(c.Request.Context(), actor(c), id); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleListComments returns the comments of a task.
func (s *Server) handleListComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := s.svc.ListComments(c.Request.Context(), actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, comments)
}

// handleCreateComment adds a comment written by the caller.
func (s *Server) handleCreateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	comment, err := s.svc.CreateComment(c.Request.Context(), actor(c), id, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, comment)
}

// handleDeleteComment removes one of the caller's comments.
func (s *Server) handleDeleteComment(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	if err := s.svc.DeleteComment(c.Request.Context(), actor(c), taskID, commentID); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
