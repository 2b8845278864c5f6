package authz_test

import (
	"testing"

	"taskboard/internal/authz"
	"taskboard/internal/models"
)

func ptr(v int64) *int64 { return &v }

var (
	owner    = &models.User{ID: 1}
	member   = &models.User{ID: 2}
	assignee = &models.User{ID: 3}
	creator  = &models.User{ID: 4}
	reviewer = &models.User{ID: 5}
	stranger = &models.User{ID: 6}

	board = models.Board{ID: 10, OwnerID: owner.ID, MemberIDs: []int64{member.ID}}
	task  = models.Task{
		ID:         20,
		BoardID:    board.ID,
		AssigneeID: ptr(assignee.ID),
		ReviewerID: ptr(reviewer.ID),
		CreatedBy:  creator.ID,
	}
)

func TestCanViewBoard(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"owner not in members", owner, true},
		{"member", member, true},
		{"neither", stranger, false},
		{"assignee of a task is not a board viewer", assignee, false},
		{"unauthenticated", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanViewBoard(tt.actor, board); got != tt.want {
				t.Errorf("CanViewBoard() = %v, want %v", got, tt.want)
			}
			if got := authz.CanUpdateBoard(tt.actor, board); got != tt.want {
				t.Errorf("CanUpdateBoard() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOwnerOnlyBoardActions(t *testing.T) {
	for _, actor := range []*models.User{member, stranger, nil} {
		if authz.CanDeleteBoard(actor, board) {
			t.Errorf("CanDeleteBoard(%v) = true, want false", actor)
		}
		if authz.CanDeactivateBoard(actor, board) {
			t.Errorf("CanDeactivateBoard(%v) = true, want false", actor)
		}
	}
	if !authz.CanDeleteBoard(owner, board) || !authz.CanDeactivateBoard(owner, board) {
		t.Error("expected owner to delete and deactivate the board")
	}
}

func TestCanViewTask(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"board owner", owner, true},
		{"board member", member, true},
		{"assignee", assignee, true},
		{"creator", creator, true},
		{"reviewer only", reviewer, false},
		{"stranger", stranger, false},
		{"unauthenticated", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanViewTask(tt.actor, board, task); got != tt.want {
				t.Errorf("CanViewTask() = %v, want %v", got, tt.want)
			}
			if got := authz.CanAccessComments(tt.actor, board, task); got != tt.want {
				t.Errorf("CanAccessComments() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDeleteTask(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"board owner", owner, true},
		{"assignee", assignee, true},
		{"board member", member, false},
		{"creator", creator, false},
		{"reviewer", reviewer, false},
		{"unauthenticated", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanDeleteTask(tt.actor, board, task); got != tt.want {
				t.Errorf("CanDeleteTask() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDeleteTask_Unassigned(t *testing.T) {
	unassigned := task
	unassigned.AssigneeID = nil
	if authz.CanDeleteTask(assignee, board, unassigned) {
		t.Error("expected former assignee to lose delete rights once unassigned")
	}
}

func TestCanDeleteComment(t *testing.T) {
	comment := models.Comment{ID: 30, TaskID: task.ID, AuthorID: member.ID}
	if !authz.CanDeleteComment(member, comment) {
		t.Error("expected author to delete own comment")
	}
	if authz.CanDeleteComment(owner, comment) {
		t.Error("expected board owner to be denied deleting someone else's comment")
	}
	if authz.CanDeleteComment(nil, comment) {
		t.Error("expected unauthenticated actor to be denied")
	}
}

func TestCanCreateTask(t *testing.T) {
	if !authz.CanCreateTask(member, board) {
		t.Error("expected member to create tasks")
	}
	if authz.CanCreateTask(stranger, board) {
		t.Error("expected stranger to be denied")
	}
}
