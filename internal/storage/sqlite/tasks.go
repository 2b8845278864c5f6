package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/models"
)

const taskColumns = `t.id, t.board_id, t.title, t.description, t.status, t.priority,
        t.assignee_id, t.reviewer_id, t.created_by, t.due_date,
        (SELECT COUNT(*) FROM comments c WHERE c.task_id = t.id),
        t.created_at, t.updated_at`

func scanTask(row scanner) (models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		assignee    sql.NullInt64
		reviewer    sql.NullInt64
		dueDate     sql.NullString
	)
	err := row.Scan(&t.ID, &t.BoardID, &t.Title, &description, &t.Status, &t.Priority,
		&assignee, &reviewer, &t.CreatedBy, &dueDate, &t.CommentsCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	t.Description = stringPtr(description)
	t.AssigneeID = intPtr(assignee)
	t.ReviewerID = intPtr(reviewer)
	t.DueDate = stringPtr(dueDate)
	return t, nil
}

func (s *Store) queryTasks(ctx context.Context, where string, args ...any) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE `+where+` ORDER BY t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListBoardTasks returns all tasks on a board.
func (s *Store) ListBoardTasks(ctx context.Context, boardID int64) ([]models.Task, error) {
	return s.queryTasks(ctx, `t.board_id = ?`, boardID)
}

// ListVisibleTasks returns every task the user can see through board ownership,
// board membership, assignment or authorship. Each task appears once.
func (s *Store) ListVisibleTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.queryTasks(ctx, `t.assignee_id = ? OR t.created_by = ?
        OR EXISTS (SELECT 1 FROM boards b WHERE b.id = t.board_id AND b.owner_id = ?)
        OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = t.board_id AND m.user_id = ?)`,
		userID, userID, userID, userID)
}

// ListTasksByAssignee returns tasks assigned to the user on any board.
func (s *Store) ListTasksByAssignee(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.queryTasks(ctx, `t.assignee_id = ?`, userID)
}

// ListTasksByReviewer returns tasks the user reviews on any board.
func (s *Store) ListTasksByReviewer(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.queryTasks(ctx, `t.reviewer_id = ?`, userID)
}

// CreateTask inserts a new task on a board.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(board_id, title, description, status, priority, assignee_id, reviewer_id, created_by, due_date)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.BoardID, strings.TrimSpace(t.Title), nullString(t.Description), t.Status, t.Priority,
		nullInt(t.AssigneeID), nullInt(t.ReviewerID), t.CreatedBy, nullString(t.DueDate))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, notFound("task", id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies the fields present in patch and leaves the rest untouched.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title != nil {
		set("title", strings.TrimSpace(*patch.Title))
	}
	switch {
	case patch.ClearDescription:
		set("description", nil)
	case patch.Description != nil:
		set("description", *patch.Description)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	switch {
	case patch.ClearAssignee:
		set("assignee_id", nil)
	case patch.AssigneeID != nil:
		set("assignee_id", *patch.AssigneeID)
	}
	switch {
	case patch.ClearReviewer:
		set("reviewer_id", nil)
	case patch.ReviewerID != nil:
		set("reviewer_id", *patch.ReviewerID)
	}
	switch {
	case patch.ClearDueDate:
		set("due_date", nil)
	case patch.DueDate != nil:
		set("due_date", *patch.DueDate)
	}

	if len(sets) == 0 {
		return s.GetTask(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, notFound("task", id)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task and its comments in one transaction.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("delete task comments: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return notFound("task", id)
		}
		return nil
	})
}
