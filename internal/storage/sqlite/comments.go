package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/models"
)

const commentColumns = `c.id, c.task_id, c.author_id, u.fullname, u.email, c.content, c.created_at`

func scanComment(row scanner) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.AuthorName, &c.AuthorEmail, &c.Content, &c.CreatedAt)
	return c, err
}

// ListComments returns the comments of a task, oldest first.
func (s *Store) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+commentColumns+`
        FROM comments c JOIN users u ON u.id = c.author_id
        WHERE c.task_id = ? ORDER BY c.created_at, c.id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CreateComment stores a comment written at createdAt.
func (s *Store) CreateComment(ctx context.Context, taskID, authorID int64, content string, createdAt time.Time) (models.Comment, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO comments(task_id, author_id, content, created_at) VALUES(?, ?, ?, ?)`,
		taskID, authorID, content, createdAt.UTC())
	if err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Comment{}, fmt.Errorf("comment id: %w", err)
	}
	return s.GetComment(ctx, id)
}

// GetComment fetches a comment by id.
func (s *Store) GetComment(ctx context.Context, id int64) (models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `SELECT `+commentColumns+`
        FROM comments c JOIN users u ON u.id = c.author_id WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Comment{}, notFound("comment", id)
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a comment by id.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound("comment", id)
	}
	return nil
}
