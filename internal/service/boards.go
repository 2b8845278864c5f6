package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"taskboard/internal/authz"
	"taskboard/internal/models"
)

// BoardUpdate is a partial board update. A nil Members leaves membership
// untouched; a non-nil one, even empty, replaces it entirely.
type BoardUpdate struct {
	Title   *string
	Members []int64
}

// ListBoards returns summaries of the boards the actor owns or belongs to.
func (s *Service) ListBoards(ctx context.Context, actor *models.User) ([]models.BoardSummary, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	boards, err := s.store.ListBoardsForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]models.BoardSummary, 0, len(boards))
	for _, b := range boards {
		summary, err := s.boardSummary(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

// CreateBoard creates a board owned by the actor. Member ids that do not
// resolve to users are dropped without error.
func (s *Service) CreateBoard(ctx context.Context, actor *models.User, title string, members []int64) (models.BoardSummary, error) {
	if err := requireActor(actor); err != nil {
		return models.BoardSummary{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.BoardSummary{}, Invalid(map[string]any{"title": "required"}, "title is required")
	}

	found, err := s.usersByID(ctx, members)
	if err != nil {
		return models.BoardSummary{}, err
	}
	existing := make([]int64, 0, len(found))
	for _, id := range uniqueIDs(members) {
		if _, ok := found[id]; ok {
			existing = append(existing, id)
		}
	}

	board, err := s.store.CreateBoard(ctx, title, actor.ID, existing)
	if err != nil {
		return models.BoardSummary{}, err
	}
	s.logger.Info("board created", slog.Int64("board_id", board.ID), slog.Int64("owner_id", actor.ID))
	return s.boardSummary(ctx, board)
}

// GetBoard returns the board detail. Boards the actor cannot view are
// reported as not found.
func (s *Service) GetBoard(ctx context.Context, actor *models.User, id int64) (models.BoardDetail, error) {
	board, err := s.visibleBoard(ctx, actor, id)
	if err != nil {
		return models.BoardDetail{}, err
	}
	return s.boardDetail(ctx, board)
}

// UpdateBoard changes the title and/or replaces the membership set. Any
// unresolved member id rejects the whole update.
func (s *Service) UpdateBoard(ctx context.Context, actor *models.User, id int64, in BoardUpdate) (models.BoardUpdateView, error) {
	board, err := s.visibleBoard(ctx, actor, id)
	if err != nil {
		return models.BoardUpdateView{}, err
	}
	if !authz.CanUpdateBoard(actor, board) {
		return models.BoardUpdateView{}, Denied("you may not update this board")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return models.BoardUpdateView{}, Invalid(map[string]any{"title": "must not be empty"}, "title must not be empty")
		}
		in.Title = &title
	}

	var members []int64
	if in.Members != nil {
		members = uniqueIDs(in.Members)
		missing, err := s.missingUsers(ctx, members)
		if err != nil {
			return models.BoardUpdateView{}, err
		}
		if len(missing) > 0 {
			return models.BoardUpdateView{}, Invalid(map[string]any{"members": missing}, "invalid user ids: %v", missing)
		}
	}

	updated, err := s.store.UpdateBoard(ctx, board.ID, in.Title, members)
	if err != nil {
		if isNotFound(err) {
			return models.BoardUpdateView{}, NotFound("board not found")
		}
		return models.BoardUpdateView{}, err
	}

	users, err := s.usersByID(ctx, append([]int64{updated.OwnerID}, updated.MemberIDs...))
	if err != nil {
		return models.BoardUpdateView{}, err
	}
	return models.BoardUpdateView{
		ID:          updated.ID,
		Title:       updated.Title,
		OwnerData:   users[updated.OwnerID].Ref(),
		MembersData: userRefs(updated.MemberIDs, users),
	}, nil
}

// DeactivateBoard marks the board inactive. Only the owner may do so and
// there is no way back.
func (s *Service) DeactivateBoard(ctx context.Context, actor *models.User, id int64) (models.BoardDetail, error) {
	if err := requireActor(actor); err != nil {
		return models.BoardDetail{}, err
	}
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.BoardDetail{}, NotFound("board not found")
		}
		return models.BoardDetail{}, err
	}
	if !authz.CanDeactivateBoard(actor, board) {
		return models.BoardDetail{}, Denied("only the board owner may deactivate this board")
	}

	board, err = s.store.DeactivateBoard(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.BoardDetail{}, NotFound("board not found")
		}
		return models.BoardDetail{}, err
	}
	return s.boardDetail(ctx, board)
}

// DeleteBoard removes the board with all of its tasks and their comments.
// A member who is not the owner gets a permission error.
func (s *Service) DeleteBoard(ctx context.Context, actor *models.User, id int64) error {
	board, err := s.visibleBoard(ctx, actor, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteBoard(actor, board) {
		return Denied("only the board owner may delete this board")
	}
	if err := s.store.DeleteBoard(ctx, board.ID); err != nil {
		if isNotFound(err) {
			return NotFound("board not found")
		}
		return err
	}
	s.logger.Info("board deleted", slog.Int64("board_id", board.ID), slog.Int64("owner_id", actor.ID))
	return nil
}

// visibleBoard loads a board the actor may view, hiding the rest as not found.
func (s *Service) visibleBoard(ctx context.Context, actor *models.User, id int64) (models.Board, error) {
	if err := requireActor(actor); err != nil {
		return models.Board{}, err
	}
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Board{}, NotFound("board not found")
		}
		return models.Board{}, err
	}
	if !authz.CanViewBoard(actor, board) {
		return models.Board{}, NotFound("board not found")
	}
	return board, nil
}

func (s *Service) boardSummary(ctx context.Context, board models.Board) (models.BoardSummary, error) {
	stats, err := s.store.BoardStats(ctx, board)
	if err != nil {
		return models.BoardSummary{}, fmt.Errorf("board %d: %w", board.ID, err)
	}
	return models.BoardSummary{
		ID:                 board.ID,
		Title:              board.Title,
		MemberCount:        stats.MemberCount,
		TicketCount:        stats.TicketCount,
		TasksToDoCount:     stats.ToDoCount,
		TasksHighPrioCount: stats.HighPriorityCount,
		OwnerID:            board.OwnerID,
	}, nil
}

func (s *Service) boardDetail(ctx context.Context, board models.Board) (models.BoardDetail, error) {
	members, err := s.usersByID(ctx, board.MemberIDs)
	if err != nil {
		return models.BoardDetail{}, err
	}
	tasks, err := s.store.ListBoardTasks(ctx, board.ID)
	if err != nil {
		return models.BoardDetail{}, err
	}
	views, err := s.taskViews(ctx, tasks)
	if err != nil {
		return models.BoardDetail{}, err
	}
	return models.BoardDetail{
		ID:      board.ID,
		Title:   board.Title,
		OwnerID: board.OwnerID,
		Active:  board.Active,
		Members: userRefs(board.MemberIDs, members),
		Tasks:   views,
	}, nil
}
