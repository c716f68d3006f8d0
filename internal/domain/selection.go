package domain

import "strings"

// Rejection pairs a pool task with the reason it was not claimable.
type Rejection struct {
	Task   Task
	Reason string
}

// DefaultAllowedTypes are the task-type markers the bot will claim.
// Matched as case-insensitive substrings of type, name, or title.
func DefaultAllowedTypes() []string {
	return []string{"redditcommenttask", "redditreplytask"}
}

// SelectClaimable splits a pool into claimable and rejected tasks.
// A task is claimable iff its type, name, or title contains one of the
// allowed markers and its content passes the safety filter. The claimable
// slice preserves pool order; the orchestrator always claims the first
// entry, so stability decides ties.
func SelectClaimable(tasks []Task, allowedTypes []string, filter *SafetyFilter) ([]Task, []Rejection) {
	var claimable []Task
	var rejected []Rejection

	for _, task := range tasks {
		if !matchesAllowedType(&task, allowedTypes) {
			rejected = append(rejected, Rejection{
				Task:   task,
				Reason: "wrong type - only " + strings.Join(allowedTypes, ", ") + " allowed",
			})
			continue
		}
		if ok, reason := filter.Evaluate(task.ContentText()); !ok {
			rejected = append(rejected, Rejection{
				Task:   task,
				Reason: "unsafe content - " + reason,
			})
			continue
		}
		claimable = append(claimable, task)
	}

	return claimable, rejected
}

func matchesAllowedType(task *Task, allowedTypes []string) bool {
	typ := strings.ToLower(task.Type)
	name := strings.ToLower(task.Name)
	title := strings.ToLower(task.Title)
	for _, allowed := range allowedTypes {
		a := strings.ToLower(allowed)
		if strings.Contains(typ, a) || strings.Contains(name, a) || strings.Contains(title, a) {
			return true
		}
	}
	return false
}
