// Package service implements the board, task and comment operations.
//
// Every operation takes the acting user explicitly as its first argument after
// the context. Access is decided by the predicates in package authz against the
// current resource state, before anything is written.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"taskboard/internal/authz"
	"taskboard/internal/models"
	"taskboard/internal/storage"
)

// Store is the persistence the services need. Multi-row writes (board
// creation and update, board and task deletion) must be atomic.
type Store interface {
	ResolveUsers(ctx context.Context, ids []int64) ([]models.User, error)

	ListBoardsForUser(ctx context.Context, userID int64) ([]models.Board, error)
	GetBoard(ctx context.Context, id int64) (models.Board, error)
	CreateBoard(ctx context.Context, title string, ownerID int64, members []int64) (models.Board, error)
	UpdateBoard(ctx context.Context, id int64, title *string, members []int64) (models.Board, error)
	DeactivateBoard(ctx context.Context, id int64) (models.Board, error)
	DeleteBoard(ctx context.Context, id int64) error
	BoardStats(ctx context.Context, board models.Board) (models.BoardStats, error)

	ListBoardTasks(ctx context.Context, boardID int64) ([]models.Task, error)
	ListVisibleTasks(ctx context.Context, userID int64) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID int64) ([]models.Task, error)
	ListTasksByReviewer(ctx context.Context, userID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	ListComments(ctx context.Context, taskID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, taskID, authorID int64, content string, createdAt time.Time) (models.Comment, error)
	GetComment(ctx context.Context, id int64) (models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Service exposes the board, task and comment operations.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Service on top of store.
func New(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

func requireActor(actor *models.User) error {
	if !authz.Authenticated(actor) {
		return Unauthenticated()
	}
	return nil
}

// usersByID resolves ids and indexes the existing ones.
func (s *Service) usersByID(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	users, err := s.store.ResolveUsers(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[int64]models.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// missingUsers returns the ids in want that do not resolve to a user.
func (s *Service) missingUsers(ctx context.Context, want []int64) ([]int64, error) {
	found, err := s.usersByID(ctx, want)
	if err != nil {
		return nil, err
	}
	missing := []int64{}
	for _, id := range uniqueIDs(want) {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// uniqueIDs drops duplicates while keeping order. The result is never nil.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

func userRefs(ids []int64, users map[int64]models.User) []models.UserRef {
	refs := make([]models.UserRef, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			refs = append(refs, u.Ref())
		}
	}
	return refs
}
