package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"taskboard/internal/models"
	"taskboard/internal/service"
	"taskboard/internal/storage/sqlite"
)

type fixture struct {
	store *sqlite.Store
	svc   *service.Service
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &fixture{store: store, svc: service.New(store, nil), ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.store.CreateUser(f.ctx, "Name "+email, email, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &u
}

func (f *fixture) board(t *testing.T, owner *models.User, members ...int64) models.BoardSummary {
	t.Helper()
	b, err := f.svc.CreateBoard(f.ctx, owner, "Board", members)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	return b
}

func (f *fixture) task(t *testing.T, actor *models.User, boardID int64, assignee, reviewer *int64) models.TaskView {
	t.Helper()
	task, err := f.svc.CreateTask(f.ctx, actor, service.TaskInput{
		BoardID:    boardID,
		Title:      "Task",
		AssigneeID: assignee,
		ReviewerID: reviewer,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func TestUnauthenticatedActorIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListBoards(f.ctx, nil)
	expectKind(t, err, service.ErrUnauthenticated)
	_, err = f.svc.CreateBoard(f.ctx, nil, "x", nil)
	expectKind(t, err, service.ErrUnauthenticated)
	_, err = f.svc.AssignedToMe(f.ctx, nil)
	expectKind(t, err, service.ErrUnauthenticated)
}

func TestCreateBoard_DropsUnknownMembers(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")

	summary, err := f.svc.CreateBoard(f.ctx, owner, "  Sprint 1 ", []int64{member.ID, 99999, member.ID})
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	want := models.BoardSummary{ID: summary.ID, Title: "Sprint 1", MemberCount: 1, OwnerID: owner.ID}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}

	_, err = f.svc.CreateBoard(f.ctx, owner, "   ", nil)
	expectKind(t, err, service.ErrValidation)
}

func TestBoardVisibility(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	stranger := f.user(t, "stranger@example.com")
	b := f.board(t, owner, member.ID)

	for _, actor := range []*models.User{owner, member} {
		detail, err := f.svc.GetBoard(f.ctx, actor, b.ID)
		if err != nil {
			t.Fatalf("GetBoard(%s): %v", actor.Email, err)
		}
		if detail.OwnerID != owner.ID || len(detail.Members) != 1 || detail.Members[0].ID != member.ID {
			t.Fatalf("unexpected detail: %+v", detail)
		}
	}

	_, err := f.svc.GetBoard(f.ctx, stranger, b.ID)
	expectKind(t, err, service.ErrNotFound)
	_, err = f.svc.GetBoard(f.ctx, owner, 99999)
	expectKind(t, err, service.ErrNotFound)

	list, err := f.svc.ListBoards(f.ctx, stranger)
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no boards for stranger, got %d", len(list))
	}
}

func TestListBoards_OwnerAndMemberDeduplicated(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")

	f.board(t, owner, owner.ID) // owner also listed as member
	f.board(t, other, owner.ID)
	f.board(t, other)

	list, err := f.svc.ListBoards(f.ctx, owner)
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(list))
	}
}

func TestUpdateBoard_InvalidMemberLeavesMembershipUntouched(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	b := f.board(t, owner, member.ID)

	title := "Renamed"
	_, err := f.svc.UpdateBoard(f.ctx, owner, b.ID, service.BoardUpdate{Title: &title, Members: []int64{member.ID, 99999}})
	expectKind(t, err, service.ErrValidation)
	if got := service.DetailsOf(err)["members"]; !reflect.DeepEqual(got, []int64{99999}) {
		t.Fatalf("expected unresolved ids [99999], got %v", got)
	}

	detail, err := f.svc.GetBoard(f.ctx, owner, b.ID)
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}
	if detail.Title != "Board" || len(detail.Members) != 1 || detail.Members[0].ID != member.ID {
		t.Fatalf("board changed by rejected update: %+v", detail)
	}
}

func TestUpdateBoard_MemberReplacesSet(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	newcomer := f.user(t, "new@example.com")
	stranger := f.user(t, "stranger@example.com")
	b := f.board(t, owner, member.ID)

	view, err := f.svc.UpdateBoard(f.ctx, member, b.ID, service.BoardUpdate{Members: []int64{newcomer.ID}})
	if err != nil {
		t.Fatalf("UpdateBoard by member: %v", err)
	}
	if view.Title != "Board" {
		t.Fatalf("title changed by members-only update: %q", view.Title)
	}
	if view.OwnerData != owner.Ref() {
		t.Fatalf("owner_data = %+v", view.OwnerData)
	}
	if len(view.MembersData) != 1 || view.MembersData[0] != newcomer.Ref() {
		t.Fatalf("members_data = %+v", view.MembersData)
	}

	// member removed themselves and can no longer see the board
	_, err = f.svc.GetBoard(f.ctx, member, b.ID)
	expectKind(t, err, service.ErrNotFound)

	_, err = f.svc.UpdateBoard(f.ctx, stranger, b.ID, service.BoardUpdate{})
	expectKind(t, err, service.ErrNotFound)
}

func TestDeactivateBoard(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	b := f.board(t, owner, member.ID)

	for i := 0; i < 2; i++ {
		detail, err := f.svc.DeactivateBoard(f.ctx, owner, b.ID)
		if err != nil {
			t.Fatalf("DeactivateBoard #%d: %v", i+1, err)
		}
		if detail.Active {
			t.Fatalf("expected inactive board after call #%d", i+1)
		}
	}

	_, err := f.svc.DeactivateBoard(f.ctx, member, b.ID)
	expectKind(t, err, service.ErrPermissionDenied)
	_, err = f.svc.DeactivateBoard(f.ctx, owner, 99999)
	expectKind(t, err, service.ErrNotFound)
}

func TestDeleteBoard_CascadesAndRequiresOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	stranger := f.user(t, "stranger@example.com")
	b := f.board(t, owner, member.ID)

	var taskIDs []int64
	for i := 0; i < 3; i++ {
		task := f.task(t, owner, b.ID, &member.ID, nil)
		taskIDs = append(taskIDs, task.ID)
		for j := 0; j < 2; j++ {
			if _, err := f.svc.CreateComment(f.ctx, member, task.ID, "note"); err != nil {
				t.Fatalf("CreateComment: %v", err)
			}
		}
	}

	expectKind(t, f.svc.DeleteBoard(f.ctx, member, b.ID), service.ErrPermissionDenied)
	expectKind(t, f.svc.DeleteBoard(f.ctx, stranger, b.ID), service.ErrNotFound)

	if err := f.svc.DeleteBoard(f.ctx, owner, b.ID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}
	for _, id := range taskIDs {
		if _, err := f.store.GetTask(f.ctx, id); err == nil {
			t.Fatalf("task %d survived board deletion", id)
		}
	}
	assigned, err := f.svc.AssignedToMe(f.ctx, member)
	if err != nil {
		t.Fatalf("AssignedToMe: %v", err)
	}
	if len(assigned) != 0 {
		t.Fatalf("expected no assigned tasks, got %d", len(assigned))
	}
}

func TestCreateTask_DefaultsAndCreator(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	b := f.board(t, owner, member.ID)

	task := f.task(t, member, b.ID, &owner.ID, &member.ID)
	if task.Status != models.StatusToDo || task.Priority != models.PriorityMedium {
		t.Fatalf("defaults not applied: %+v", task)
	}
	if task.Assignee == nil || task.Assignee.ID != owner.ID {
		t.Fatalf("assignee = %+v", task.Assignee)
	}
	if task.Reviewer == nil || task.Reviewer.ID != member.ID {
		t.Fatalf("reviewer = %+v", task.Reviewer)
	}
	if task.CommentsCount != 0 || task.Board != b.ID {
		t.Fatalf("unexpected projection: %+v", task)
	}

	stored, err := f.store.GetTask(f.ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if stored.CreatedBy != member.ID {
		t.Fatalf("created_by = %d, want %d", stored.CreatedBy, member.ID)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	stranger := f.user(t, "stranger@example.com")
	b := f.board(t, owner)
	missing := int64(99999)
	bad := "tomorrow"

	cases := []struct {
		name  string
		actor *models.User
		in    service.TaskInput
		kind  error
	}{
		{"unknown board", owner, service.TaskInput{BoardID: 99999, Title: "x"}, service.ErrValidation},
		{"not a member", stranger, service.TaskInput{BoardID: b.ID, Title: "x"}, service.ErrPermissionDenied},
		{"empty title", owner, service.TaskInput{BoardID: b.ID, Title: " "}, service.ErrValidation},
		{"bad status", owner, service.TaskInput{BoardID: b.ID, Title: "x", Status: "blocked"}, service.ErrValidation},
		{"bad priority", owner, service.TaskInput{BoardID: b.ID, Title: "x", Priority: "urgent"}, service.ErrValidation},
		{"unknown assignee", owner, service.TaskInput{BoardID: b.ID, Title: "x", AssigneeID: &missing}, service.ErrValidation},
		{"unknown reviewer", owner, service.TaskInput{BoardID: b.ID, Title: "x", ReviewerID: &missing}, service.ErrValidation},
		{"bad due date", owner, service.TaskInput{BoardID: b.ID, Title: "x", DueDate: &bad}, service.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateTask(f.ctx, tc.actor, tc.in)
			expectKind(t, err, tc.kind)
		})
	}

	tasks, err := f.svc.ListTasks(f.ctx, owner)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("rejected creations left %d tasks", len(tasks))
	}
}

func TestTaskVisibility(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	assignee := f.user(t, "assignee@example.com")
	reviewer := f.user(t, "reviewer@example.com")
	stranger := f.user(t, "stranger@example.com")
	b := f.board(t, owner, member.ID)
	task := f.task(t, member, b.ID, &assignee.ID, &reviewer.ID)

	for _, actor := range []*models.User{owner, member, assignee} {
		if _, err := f.svc.GetTask(f.ctx, actor, task.ID); err != nil {
			t.Errorf("GetTask(%s): %v", actor.Email, err)
		}
	}
	for _, actor := range []*models.User{reviewer, stranger} {
		_, err := f.svc.GetTask(f.ctx, actor, task.ID)
		expectKind(t, err, service.ErrNotFound)
	}

	reviewing, err := f.svc.Reviewing(f.ctx, reviewer)
	if err != nil {
		t.Fatalf("Reviewing: %v", err)
	}
	if len(reviewing) != 1 || reviewing[0].ID != task.ID {
		t.Fatalf("expected reviewer to see the task through reviewing, got %+v", reviewing)
	}
}

func TestUpdateTask_AnyStatusTransition(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	assignee := f.user(t, "assignee@example.com")
	b := f.board(t, owner)
	task := f.task(t, owner, b.ID, &assignee.ID, nil)

	for _, status := range []string{models.StatusDone, models.StatusToDo, models.StatusReview, models.StatusInProgress} {
		st := status
		view, err := f.svc.UpdateTask(f.ctx, assignee, task.ID, models.TaskPatch{Status: &st})
		if err != nil {
			t.Fatalf("UpdateTask(%s): %v", status, err)
		}
		if view.Status != status {
			t.Fatalf("status = %s, want %s", view.Status, status)
		}
	}

	view, err := f.svc.UpdateTask(f.ctx, owner, task.ID, models.TaskPatch{ClearAssignee: true})
	if err != nil {
		t.Fatalf("UpdateTask clear assignee: %v", err)
	}
	if view.Assignee != nil {
		t.Fatalf("expected assignee cleared, got %+v", view.Assignee)
	}

	bad := "stalled"
	_, err = f.svc.UpdateTask(f.ctx, owner, task.ID, models.TaskPatch{Status: &bad})
	expectKind(t, err, service.ErrValidation)

	missing := int64(99999)
	_, err = f.svc.UpdateTask(f.ctx, owner, task.ID, models.TaskPatch{ReviewerID: &missing})
	expectKind(t, err, service.ErrValidation)
}

func TestDeleteTask_Rights(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	assignee := f.user(t, "assignee@example.com")
	b := f.board(t, owner, member.ID)

	created := f.task(t, member, b.ID, &assignee.ID, nil)
	expectKind(t, f.svc.DeleteTask(f.ctx, member, created.ID), service.ErrPermissionDenied)

	if err := f.svc.DeleteTask(f.ctx, assignee, created.ID); err != nil {
		t.Fatalf("DeleteTask by assignee: %v", err)
	}
	expectKind(t, f.svc.DeleteTask(f.ctx, owner, created.ID), service.ErrNotFound)

	other := f.task(t, member, b.ID, nil, nil)
	if err := f.svc.DeleteTask(f.ctx, owner, other.ID); err != nil {
		t.Fatalf("DeleteTask by board owner: %v", err)
	}
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	stranger := f.user(t, "stranger@example.com")
	b := f.board(t, owner, member.ID)
	task := f.task(t, owner, b.ID, nil, nil)
	otherTask := f.task(t, owner, b.ID, nil, nil)

	comment, err := f.svc.CreateComment(f.ctx, member, task.ID, "Looks good")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.AuthorEmail != member.Email || comment.Content != "Looks good" || comment.CreatedAt.IsZero() {
		t.Fatalf("unexpected comment: %+v", comment)
	}

	_, err = f.svc.CreateComment(f.ctx, member, task.ID, "  ")
	expectKind(t, err, service.ErrValidation)
	_, err = f.svc.CreateComment(f.ctx, stranger, task.ID, "hi")
	expectKind(t, err, service.ErrNotFound)
	_, err = f.svc.ListComments(f.ctx, stranger, task.ID)
	expectKind(t, err, service.ErrNotFound)

	list, err := f.svc.ListComments(f.ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(list) != 1 || list[0].ID != comment.ID {
		t.Fatalf("unexpected comments: %+v", list)
	}

	view, err := f.svc.GetTask(f.ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if view.CommentsCount != 1 {
		t.Fatalf("comments_count = %d, want 1", view.CommentsCount)
	}

	expectKind(t, f.svc.DeleteComment(f.ctx, owner, task.ID, comment.ID), service.ErrPermissionDenied)
	expectKind(t, f.svc.DeleteComment(f.ctx, member, otherTask.ID, comment.ID), service.ErrNotFound)
	expectKind(t, f.svc.DeleteComment(f.ctx, member, task.ID, 99999), service.ErrNotFound)

	if err := f.svc.DeleteComment(f.ctx, member, task.ID, comment.ID); err != nil {
		t.Fatalf("DeleteComment by author: %v", err)
	}
	list, err = f.svc.ListComments(f.ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected comment gone, got %d", len(list))
	}
}

func TestAssignedToMe_IgnoresBoardMembership(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	b := f.board(t, owner, member.ID)
	task := f.task(t, owner, b.ID, &member.ID, nil)

	if _, err := f.svc.UpdateBoard(f.ctx, owner, b.ID, service.BoardUpdate{Members: []int64{}}); err != nil {
		t.Fatalf("UpdateBoard: %v", err)
	}

	assigned, err := f.svc.AssignedToMe(f.ctx, member)
	if err != nil {
		t.Fatalf("AssignedToMe: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != task.ID {
		t.Fatalf("expected task still listed for former member, got %+v", assigned)
	}
}
