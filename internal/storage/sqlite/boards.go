package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/models"
)

const boardColumns = `b.id, b.title, b.owner_id, b.is_active, b.created_at`

func scanBoard(row scanner) (models.Board, error) {
	var b models.Board
	err := row.Scan(&b.ID, &b.Title, &b.OwnerID, &b.Active, &b.CreatedAt)
	return b, err
}

// ListBoardsForUser returns boards the user owns or is a member of, in creation order.
func (s *Store) ListBoardsForUser(ctx context.Context, userID int64) ([]models.Board, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards b
        WHERE b.owner_id = ?
           OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = b.id AND m.user_id = ?)
        ORDER BY b.id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	var boards []models.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range boards {
		members, err := memberIDs(ctx, s.db, boards[i].ID)
		if err != nil {
			return nil, err
		}
		boards[i].MemberIDs = members
	}
	return boards, nil
}

// GetBoard fetches a board together with its member ids.
func (s *Store) GetBoard(ctx context.Context, id int64) (models.Board, error) {
	return getBoard(ctx, s.db, id)
}

func getBoard(ctx context.Context, q querier, id int64) (models.Board, error) {
	b, err := scanBoard(q.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards b WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, notFound("board", id)
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("get board: %w", err)
	}
	members, err := memberIDs(ctx, q, id)
	if err != nil {
		return models.Board{}, err
	}
	b.MemberIDs = members
	return b, nil
}

func memberIDs(ctx context.Context, q querier, boardID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT user_id FROM board_members WHERE board_id = ? ORDER BY user_id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// replaceMembers swaps the whole membership set of a board.
func replaceMembers(ctx context.Context, tx *sql.Tx, boardID int64, userIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM board_members WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO board_members(board_id, user_id) VALUES(?, ?)`, boardID, uid); err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}
	return nil
}

// CreateBoard persists a board and its initial members atomically.
func (s *Store) CreateBoard(ctx context.Context, title string, ownerID int64, members []int64) (models.Board, error) {
	var board models.Board
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO boards(title, owner_id) VALUES(?, ?)`, strings.TrimSpace(title), ownerID)
		if err != nil {
			return fmt.Errorf("insert board: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("board id: %w", err)
		}
		if err := replaceMembers(ctx, tx, id, members); err != nil {
			return err
		}
		board, err = getBoard(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Board{}, err
	}
	return board, nil
}

// UpdateBoard changes the title when title is non-nil and replaces the
// membership set when members is non-nil. Both happen in one transaction.
func (s *Store) UpdateBoard(ctx context.Context, id int64, title *string, members []int64) (models.Board, error) {
	var board models.Board
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getBoard(ctx, tx, id); err != nil {
			return err
		}
		if title != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE boards SET title = ? WHERE id = ?`, strings.TrimSpace(*title), id); err != nil {
				return fmt.Errorf("update board: %w", err)
			}
		}
		if members != nil {
			if err := replaceMembers(ctx, tx, id, members); err != nil {
				return err
			}
		}
		var err error
		board, err = getBoard(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Board{}, err
	}
	return board, nil
}

// DeactivateBoard clears the active flag. Repeated calls are no-ops.
func (s *Store) DeactivateBoard(ctx context.Context, id int64) (models.Board, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE boards SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return models.Board{}, fmt.Errorf("deactivate board: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Board{}, err
	}
	if affected == 0 {
		return models.Board{}, notFound("board", id)
	}
	return s.GetBoard(ctx, id)
}

// DeleteBoard removes a board with its comments, tasks and memberships in a
// single transaction, leaf rows first.
func (s *Store) DeleteBoard(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`DELETE FROM comments WHERE task_id IN (SELECT id FROM tasks WHERE board_id = ?)`,
			`DELETE FROM tasks WHERE board_id = ?`,
			`DELETE FROM board_members WHERE board_id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete board children: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete board: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return notFound("board", id)
		}
		return nil
	})
}

// BoardStats computes the counters for the board summary projection.
func (s *Store) BoardStats(ctx context.Context, board models.Board) (models.BoardStats, error) {
	stats := models.BoardStats{MemberCount: len(board.MemberIDs)}
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN priority = ? THEN 1 ELSE 0 END), 0)
        FROM tasks WHERE board_id = ?`, models.StatusToDo, models.PriorityHigh, board.ID).
		Scan(&stats.TicketCount, &stats.ToDoCount, &stats.HighPriorityCount)
	if err != nil {
		return models.BoardStats{}, fmt.Errorf("board stats: %w", err)
	}
	return stats, nil
}
