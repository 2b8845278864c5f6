package models

import "time"

// User is an account known to the identity provider.
type User struct {
	ID           int64     `json:"id"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Board groups tasks and the users allowed to work on them.
// The owner is authorized implicitly and does not need to be listed in MemberIDs.
type Board struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	OwnerID   int64     `json:"owner_id"`
	Active    bool      `json:"is_active"`
	MemberIDs []int64   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether userID is in the explicit membership set.
func (b Board) HasMember(userID int64) bool {
	for _, id := range b.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// BoardStats holds the aggregate counters shown in board summaries.
type BoardStats struct {
	MemberCount       int
	TicketCount       int
	ToDoCount         int
	HighPriorityCount int
}

// Task represents a single card on a board.
type Task struct {
	ID            int64     `json:"id"`
	BoardID       int64     `json:"board"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	AssigneeID    *int64    `json:"-"`
	ReviewerID    *int64    `json:"-"`
	CreatedBy     int64     `json:"-"`
	DueDate       *string   `json:"due_date"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// TaskPatch carries a partial task update. Nil pointers leave the field untouched;
// the Clear flags null out optional references explicitly.
type TaskPatch struct {
	Title            *string
	Description      *string
	Status           *string
	Priority         *string
	AssigneeID       *int64
	ClearAssignee    bool
	ReviewerID       *int64
	ClearReviewer    bool
	DueDate          *string
	ClearDueDate     bool
	ClearDescription bool
}

// Comment is a note left by a user on a task.
type Comment struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"-"`
	AuthorID    int64     `json:"-"`
	AuthorName  string    `json:"author"`
	AuthorEmail string    `json:"author_email"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task status values. Any value may follow any other.
const (
	StatusToDo       = "to-do"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidTaskStatuses enumerates the statuses supported by the board columns.
var ValidTaskStatuses = map[string]struct{}{
	StatusToDo:       {},
	StatusInProgress: {},
	StatusReview:     {},
	StatusDone:       {},
}

// ValidTaskPriorities enumerates the accepted priority levels.
var ValidTaskPriorities = map[string]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

// DueDateLayout is the wire and storage format of Task.DueDate.
const DueDateLayout = "2006-01-02"
