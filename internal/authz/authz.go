// Package authz holds the access rules for boards, tasks and comments.
//
// Every rule is a pure predicate over the acting user and the current state of
// the resource. Callers fetch the state and decide how to report a denial. A nil
// actor is unauthenticated and is denied by every predicate.
package authz

import "taskboard/internal/models"

// Authenticated reports whether an identity was resolved for the request.
func Authenticated(actor *models.User) bool {
	return actor != nil && actor.ID != 0
}

func isOwner(actor *models.User, board models.Board) bool {
	return Authenticated(actor) && board.OwnerID == actor.ID
}

func isOwnerOrMember(actor *models.User, board models.Board) bool {
	if !Authenticated(actor) {
		return false
	}
	return board.OwnerID == actor.ID || board.HasMember(actor.ID)
}

func isRef(actor *models.User, id *int64) bool {
	return Authenticated(actor) && id != nil && *id == actor.ID
}

// CanViewBoard allows the owner and explicit members.
func CanViewBoard(actor *models.User, board models.Board) bool {
	return isOwnerOrMember(actor, board)
}

// CanUpdateBoard allows title and membership changes. Members share this right
// with the owner; deletion and deactivation stay owner-only.
func CanUpdateBoard(actor *models.User, board models.Board) bool {
	return isOwnerOrMember(actor, board)
}

// CanDeleteBoard allows the owner only.
func CanDeleteBoard(actor *models.User, board models.Board) bool {
	return isOwner(actor, board)
}

// CanDeactivateBoard allows the owner only.
func CanDeactivateBoard(actor *models.User, board models.Board) bool {
	return isOwner(actor, board)
}

// CanCreateTask allows anyone who can see the board.
func CanCreateTask(actor *models.User, board models.Board) bool {
	return isOwnerOrMember(actor, board)
}

// CanViewTask covers reading and updating a task: board owner, board member,
// assignee or creator. Being the reviewer alone is not enough.
func CanViewTask(actor *models.User, board models.Board, task models.Task) bool {
	if isOwnerOrMember(actor, board) {
		return true
	}
	return isRef(actor, task.AssigneeID) || (Authenticated(actor) && task.CreatedBy == actor.ID)
}

// CanDeleteTask allows the board owner or the assignee. The creator alone may not.
func CanDeleteTask(actor *models.User, board models.Board, task models.Task) bool {
	return isOwner(actor, board) || isRef(actor, task.AssigneeID)
}

// CanAccessComments gates listing and writing comments on a task.
func CanAccessComments(actor *models.User, board models.Board, task models.Task) bool {
	return CanViewTask(actor, board, task)
}

// CanDeleteComment allows the author only.
func CanDeleteComment(actor *models.User, comment models.Comment) bool {
	return Authenticated(actor) && comment.AuthorID == actor.ID
}
