package taskflux

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// taskPayload is the wire shape of a task. The server emits different
// field names depending on endpoint and task age, so aliases are decoded
// side by side and resolved in toDomain.
type taskPayload struct {
	ID        string `json:"id"`
	AltID     string `json:"_id"`
	TaskID    string `json:"taskId"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Content   string `json:"content"`
	Comment   string `json:"comment"`
	Text      string `json:"text"`
	Body      string `json:"body"`
	Subreddit string `json:"subreddit"`
	SubmitURL string `json:"submitUrl"`

	AssignedTo assignedTo  `json:"assignedTo"`
	Price      looseString `json:"price"`

	AssignedAt flexTime `json:"assignedAt"`
	ClaimedAt  flexTime `json:"claimedAt"`
	CreatedAt  flexTime `json:"createdAt"`
	Deadline   flexTime `json:"deadline"`
	ExpiresAt  flexTime `json:"expiresAt"`
}

func (p taskPayload) toDomain() domain.Task {
	return domain.Task{
		ID:         firstNonEmpty(p.ID, p.AltID, p.TaskID),
		AltID:      p.AltID,
		Type:       p.Type,
		Name:       p.Name,
		Title:      p.Title,
		Status:     domain.TaskStatus(strings.ToLower(p.Status)),
		Content:    p.Content,
		Comment:    p.Comment,
		Text:       p.Text,
		Body:       p.Body,
		Subreddit:  p.Subreddit,
		SubmitURL:  p.SubmitURL,
		AssignedTo: string(p.AssignedTo),
		Price:      string(p.Price),
		AssignedAt: firstNonZero(p.AssignedAt.Time, p.ClaimedAt.Time, p.CreatedAt.Time),
		Deadline:   firstNonZero(p.Deadline.Time, p.ExpiresAt.Time),
	}
}

// decodeTaskList accepts either a bare JSON array of tasks or an object
// wrapping one under "tasks".
func decodeTaskList(raw []byte) ([]taskPayload, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []taskPayload
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapped struct {
		Tasks []taskPayload `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Tasks, nil
}

// serverTimeLayouts are tried in order when parsing timestamps. The API
// mostly emits RFC 3339 with milliseconds but older records drop the
// fraction or the zone.
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseServerTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range serverTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// flexTime unmarshals a timestamp in any of the server's formats.
// Null, empty, and unparsable values all decode to the zero time.
type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	if t, err := parseServerTime(s); err == nil {
		f.Time = t
	}
	return nil
}

// assignedTo unmarshals the assignee, which is either a plain user ID
// string or an embedded user object.
type assignedTo string

func (a *assignedTo) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = assignedTo(s)
		return nil
	}
	var obj struct {
		ID    string `json:"id"`
		AltID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*a = assignedTo(firstNonEmpty(obj.AltID, obj.ID))
	}
	return nil
}

// looseString unmarshals a value that may arrive as a string or a number.
type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = looseString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*l = looseString(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

func firstNonZero(values ...time.Time) time.Time {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return time.Time{}
}
