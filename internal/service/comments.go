package service

import (
	"context"
	"strings"

	"taskboard/internal/authz"
	"taskboard/internal/models"
)

// ListComments returns the comments of a task the actor can see.
func (s *Service) ListComments(ctx context.Context, actor *models.User, taskID int64) ([]models.Comment, error) {
	task, _, err := s.taskFor(ctx, actor, taskID, authz.CanAccessComments)
	if err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, task.ID)
}

// CreateComment adds a comment authored by the actor, stamped with the current time.
func (s *Service) CreateComment(ctx context.Context, actor *models.User, taskID int64, content string) (models.Comment, error) {
	task, _, err := s.taskFor(ctx, actor, taskID, authz.CanAccessComments)
	if err != nil {
		return models.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, Invalid(map[string]any{"content": "required"}, "content is required")
	}
	return s.store.CreateComment(ctx, task.ID, actor.ID, content, s.now())
}

// DeleteComment removes a comment. The comment must belong to taskID and
// only its author may delete it.
func (s *Service) DeleteComment(ctx context.Context, actor *models.User, taskID, commentID int64) error {
	task, _, err := s.taskFor(ctx, actor, taskID, authz.CanAccessComments)
	if err != nil {
		return err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if isNotFound(err) {
			return NotFound("comment not found")
		}
		return err
	}
	if comment.TaskID != task.ID {
		return NotFound("comment not found")
	}
	if !authz.CanDeleteComment(actor, comment) {
		return Denied("only the author may delete this comment")
	}
	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		if isNotFound(err) {
			return NotFound("comment not found")
		}
		return err
	}
	return nil
}
