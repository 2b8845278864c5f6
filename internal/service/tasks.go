package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taskboard/internal/authz"
	"taskboard/internal/models"
)

// TaskInput describes a new task. Empty Status and Priority take the defaults.
type TaskInput struct {
	BoardID     int64
	Title       string
	Description *string
	Status      string
	Priority    string
	AssigneeID  *int64
	ReviewerID  *int64
	DueDate     *string
}

// ListTasks returns every task the actor can see through the board, an
// assignment or authorship.
func (s *Service) ListTasks(ctx context.Context, actor *models.User) ([]models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListVisibleTasks(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.taskViews(ctx, tasks)
}

// AssignedToMe lists tasks assigned to the actor. Board membership is not
// re-checked; the assignment alone is enough.
func (s *Service) AssignedToMe(ctx context.Context, actor *models.User) ([]models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasksByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.taskViews(ctx, tasks)
}

// Reviewing lists tasks the actor reviews, without a board visibility check.
func (s *Service) Reviewing(ctx context.Context, actor *models.User) ([]models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasksByReviewer(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.taskViews(ctx, tasks)
}

// CreateTask adds a task to a board the actor belongs to. The actor is always
// recorded as creator.
func (s *Service) CreateTask(ctx context.Context, actor *models.User, in TaskInput) (models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return models.TaskView{}, err
	}

	board, err := s.store.GetBoard(ctx, in.BoardID)
	if err != nil {
		if isNotFound(err) {
			return models.TaskView{}, Invalid(map[string]any{"board": in.BoardID}, "board %d does not exist", in.BoardID)
		}
		return models.TaskView{}, err
	}
	if !authz.CanCreateTask(actor, board) {
		return models.TaskView{}, Denied("only board members may create tasks on this board")
	}

	task := models.Task{
		BoardID:     board.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		ReviewerID:  in.ReviewerID,
		CreatedBy:   actor.ID,
		DueDate:     in.DueDate,
	}
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	if task.Title == "" {
		return models.TaskView{}, Invalid(map[string]any{"title": "required"}, "title is required")
	}
	if err := validateTaskFields(&task.Status, &task.Priority, task.DueDate); err != nil {
		return models.TaskView{}, err
	}
	if err := s.validateTaskRefs(ctx, task.AssigneeID, task.ReviewerID); err != nil {
		return models.TaskView{}, err
	}

	created, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return models.TaskView{}, err
	}
	s.logger.Info("task created", slog.Int64("task_id", created.ID), slog.Int64("board_id", board.ID))
	return s.taskView(ctx, created)
}

// GetTask returns a task the actor can see.
func (s *Service) GetTask(ctx context.Context, actor *models.User, id int64) (models.TaskView, error) {
	task, _, err := s.taskFor(ctx, actor, id, authz.CanViewTask)
	if err != nil {
		return models.TaskView{}, err
	}
	return s.taskView(ctx, task)
}

// UpdateTask applies a partial update. Status changes are unrestricted: any
// valid status may follow any other.
func (s *Service) UpdateTask(ctx context.Context, actor *models.User, id int64, patch models.TaskPatch) (models.TaskView, error) {
	task, _, err := s.taskFor(ctx, actor, id, authz.CanViewTask)
	if err != nil {
		return models.TaskView{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.TaskView{}, Invalid(map[string]any{"title": "must not be empty"}, "title must not be empty")
		}
		patch.Title = &title
	}
	if err := validateTaskFields(patch.Status, patch.Priority, patch.DueDate); err != nil {
		return models.TaskView{}, err
	}
	assignee, reviewer := patch.AssigneeID, patch.ReviewerID
	if patch.ClearAssignee {
		assignee = nil
	}
	if patch.ClearReviewer {
		reviewer = nil
	}
	if err := s.validateTaskRefs(ctx, assignee, reviewer); err != nil {
		return models.TaskView{}, err
	}

	updated, err := s.store.UpdateTask(ctx, task.ID, patch)
	if err != nil {
		if isNotFound(err) {
			return models.TaskView{}, NotFound("task not found")
		}
		return models.TaskView{}, err
	}
	return s.taskView(ctx, updated)
}

// DeleteTask removes a task and its comments. Only the board owner or the
// assignee may delete.
func (s *Service) DeleteTask(ctx context.Context, actor *models.User, id int64) error {
	task, board, err := s.taskFor(ctx, actor, id, authz.CanViewTask)
	if err != nil {
		return err
	}
	if !authz.CanDeleteTask(actor, board, task) {
		return Denied("only the board owner or the assignee may delete this task")
	}
	if err := s.store.DeleteTask(ctx, task.ID); err != nil {
		if isNotFound(err) {
			return NotFound("task not found")
		}
		return err
	}
	s.logger.Info("task deleted", slog.Int64("task_id", task.ID), slog.Int64("actor_id", actor.ID))
	return nil
}

// taskFor loads a task with its board and checks allow against them. Tasks the
// actor may not access are reported as not found.
func (s *Service) taskFor(ctx context.Context, actor *models.User, id int64, allow func(*models.User, models.Board, models.Task) bool) (models.Task, models.Board, error) {
	if err := requireActor(actor); err != nil {
		return models.Task{}, models.Board{}, err
	}
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Task{}, models.Board{}, NotFound("task not found")
		}
		return models.Task{}, models.Board{}, err
	}
	board, err := s.store.GetBoard(ctx, task.BoardID)
	if err != nil {
		if isNotFound(err) {
			return models.Task{}, models.Board{}, NotFound("task not found")
		}
		return models.Task{}, models.Board{}, err
	}
	if !allow(actor, board, task) {
		return models.Task{}, models.Board{}, NotFound("task not found")
	}
	return task, board, nil
}

func validateTaskFields(status, priority, dueDate *string) error {
	if status != nil {
		if _, ok := models.ValidTaskStatuses[*status]; !ok {
			return Invalid(map[string]any{"status": *status}, "%q is not a valid status", *status)
		}
	}
	if priority != nil {
		if _, ok := models.ValidTaskPriorities[*priority]; !ok {
			return Invalid(map[string]any{"priority": *priority}, "%q is not a valid priority", *priority)
		}
	}
	if dueDate != nil {
		if _, err := time.Parse(models.DueDateLayout, *dueDate); err != nil {
			return Invalid(map[string]any{"due_date": *dueDate}, "due_date must use the YYYY-MM-DD format")
		}
	}
	return nil
}

// validateTaskRefs fails when a given assignee or reviewer id has no user.
func (s *Service) validateTaskRefs(ctx context.Context, assignee, reviewer *int64) error {
	var ids []int64
	if assignee != nil {
		ids = append(ids, *assignee)
	}
	if reviewer != nil {
		ids = append(ids, *reviewer)
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := s.usersByID(ctx, ids)
	if err != nil {
		return err
	}
	details := map[string]any{}
	if assignee != nil {
		if _, ok := found[*assignee]; !ok {
			details["assignee_id"] = *assignee
		}
	}
	if reviewer != nil {
		if _, ok := found[*reviewer]; !ok {
			details["reviewer_id"] = *reviewer
		}
	}
	if len(details) > 0 {
		return Invalid(details, "unknown user referenced")
	}
	return nil
}

func (s *Service) taskView(ctx context.Context, task models.Task) (models.TaskView, error) {
	views, err := s.taskViews(ctx, []models.Task{task})
	if err != nil {
		return models.TaskView{}, err
	}
	return views[0], nil
}

// taskViews builds projections, resolving assignees and reviewers in one lookup.
func (s *Service) taskViews(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	var ids []int64
	for _, t := range tasks {
		if t.AssigneeID != nil {
			ids = append(ids, *t.AssigneeID)
		}
		if t.ReviewerID != nil {
			ids = append(ids, *t.ReviewerID)
		}
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	ref := func(id *int64) *models.UserRef {
		if id == nil {
			return nil
		}
		u, ok := users[*id]
		if !ok {
			return nil
		}
		r := u.Ref()
		return &r
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, models.TaskView{
			ID:            t.ID,
			Board:         t.BoardID,
			Title:         t.Title,
			Description:   t.Description,
			Status:        t.Status,
			Priority:      t.Priority,
			Assignee:      ref(t.AssigneeID),
			Reviewer:      ref(t.ReviewerID),
			DueDate:       t.DueDate,
			CommentsCount: t.CommentsCount,
		})
	}
	return views, nil
}
