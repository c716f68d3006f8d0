// Package domain contains core business entities and interfaces.
package domain

import (
	"strings"
	"time"
)

// Task is a read-only snapshot of a pool task as reported by TaskFlux.
// The remote API is loose about field names, so aliased fields are kept
// raw here and resolved through the accessor methods.
// Fields are ordered to minimize memory padding.
type Task struct {
	AssignedAt time.Time  `json:"assignedAt,omitempty"`         // When the task was assigned (zero if unassigned)
	Deadline   time.Time  `json:"assignmentDeadline,omitempty"`
	ID         string     `json:"id"`
	AltID      string     `json:"_id,omitempty"`                // Some endpoints use Mongo-style IDs
	Type       string     `json:"type"`
	Name       string     `json:"name,omitempty"`
	Title      string     `json:"title,omitempty"`
	Status     TaskStatus `json:"status,omitempty"`
	AssignedTo string     `json:"assignedTo,omitempty"`
	Subreddit  string     `json:"subreddit,omitempty"`
	Price      string     `json:"price,omitempty"`
	SubmitURL  string     `json:"submitUrl,omitempty"`
	Content    string     `json:"content,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	Text       string     `json:"text,omitempty"`
	Body       string     `json:"body,omitempty"`
}

// TaskStatus is the remote service's free-text task status.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusAvailable TaskStatus = "available"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusPublished TaskStatus = "published"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusExpired   TaskStatus = "expired"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Key returns the task identifier, preferring "id" over "_id".
func (t *Task) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.AltID
}

// Text to check with the safety filter: first non-empty of the aliased
// content fields.
func (t *Task) ContentText() string {
	for _, s := range []string{t.Content, t.Comment, t.Text, t.Body} {
		if s != "" {
			return s
		}
	}
	return ""
}

// IsAssigned reports whether the pool listing marks this task as taken.
func (t *Task) IsAssigned() bool {
	return strings.EqualFold(string(t.Status), string(TaskStatusAssigned)) || t.AssignedTo != ""
}

// IsAssignedTo reports whether the task is assigned to the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return userID != "" && t.AssignedTo == userID
}

// DisplaySubreddit returns the subreddit with the r/ prefix normalized.
func (t *Task) DisplaySubreddit() string {
	if t.Subreddit == "" {
		return ""
	}
	if strings.HasPrefix(t.Subreddit, "r/") {
		return t.Subreddit
	}
	return "r/" + t.Subreddit
}
