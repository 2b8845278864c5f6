package models

// UserRef is the public shape of a user nested in other payloads.
type UserRef struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// Ref projects a user to its public fields.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email, Fullname: u.Fullname}
}

// BoardSummary is the list-shaped board projection.
type BoardSummary struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	MemberCount        int    `json:"member_count"`
	TicketCount        int    `json:"ticket_count"`
	TasksToDoCount     int    `json:"tasks_to_do_count"`
	TasksHighPrioCount int    `json:"tasks_high_prio_count"`
	OwnerID            int64  `json:"owner_id"`
}

// BoardDetail is returned by board retrieval and deactivation.
type BoardDetail struct {
	ID      int64      `json:"id"`
	Title   string     `json:"title"`
	OwnerID int64      `json:"owner_id"`
	Active  bool       `json:"is_active"`
	Members []UserRef  `json:"members"`
	Tasks   []TaskView `json:"tasks"`
}

// BoardUpdateView is returned after a board update.
type BoardUpdateView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	OwnerData   UserRef   `json:"owner_data"`
	MembersData []UserRef `json:"members_data"`
}

// TaskView is the full task projection with nested users.
type TaskView struct {
	ID            int64    `json:"id"`
	Board         int64    `json:"board"`
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	Assignee      *UserRef `json:"assignee"`
	Reviewer      *UserRef `json:"reviewer"`
	DueDate       *string  `json:"due_date"`
	CommentsCount int      `json:"comments_count"`
}
