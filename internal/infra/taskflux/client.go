// Package taskflux implements the HTTP collaborator for the TaskFlux API.
// The remote service is loose about both field names and formats, so the
// wire types here carry every alias the server has been seen to use and
// the conversions degrade instead of failing.
package taskflux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// Client talks to TaskFlux with a cookie-based session.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	email      string
	password   string
	userID     string
}

// New creates a Client for the given API settings. Authentication happens
// lazily-never: callers must Login before the task endpoints are useful.
func New(api domain.APIConfig, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		logger:   logger,
		baseURL:  strings.TrimRight(api.BaseURL, "/"),
		email:    api.Email,
		password: api.Password,
	}, nil
}

// UserID returns the identity established by Login, if any.
func (c *Client) UserID() string {
	return c.userID
}

// Login authenticates and stores the session cookie. The login response
// sometimes already carries the task assigned to this identity; it is
// surfaced so startup can resume deadline tracking without an extra call.
func (c *Client) Login(ctx context.Context) (*domain.LoginResult, error) {
	if c.email == "" || c.password == "" {
		return nil, domain.ErrMissingCredentials
	}

	body := map[string]string{"email": c.email, "password": c.password}
	resp, err := c.postJSON(ctx, "/api/users/login", body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrLoginFailed, resp.StatusCode)
	}

	var payload struct {
		User *struct {
			ID           string       `json:"id"`
			AltID        string       `json:"_id"`
			AssignedTask *taskPayload `json:"assignedTask"`
			CurrentTask  *taskPayload `json:"currentTask"`
		} `json:"user"`
		ID string `json:"_id"`
	}
	// The login body is best-effort: cookie auth already succeeded.
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Debug("login response not parseable", "error", err)
		return &domain.LoginResult{}, nil
	}

	result := &domain.LoginResult{}
	switch {
	case payload.User != nil:
		c.userID = firstNonEmpty(payload.User.AltID, payload.User.ID)
		assigned := payload.User.AssignedTask
		if assigned == nil {
			assigned = payload.User.CurrentTask
		}
		if assigned != nil {
			task := assigned.toDomain()
			result.AssignedTask = &task
		}
	case payload.ID != "":
		c.userID = payload.ID
	}
	result.UserID = c.userID
	return result, nil
}

// FetchPool retrieves the publicly claimable tasks, filtering out entries
// already assigned to someone.
func (c *Client) FetchPool(ctx context.Context) ([]domain.Task, error) {
	resp, err := c.get(ctx, "/api/tasks/task-pool")
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("fetch task pool", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read task pool: %w", err)
	}

	payloads, err := decodeTaskList(raw)
	if err != nil {
		return nil, fmt.Errorf("parse task pool: %w", err)
	}

	var tasks []domain.Task
	for _, p := range payloads {
		task := p.toDomain()
		if task.IsAssigned() {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Claim attempts to take ownership of a pool task. A non-200 response is a
// normal outcome (someone else was faster), reported via the result.
func (c *Client) Claim(ctx context.Context, taskID string) (*domain.ClaimResult, error) {
	if taskID == "" {
		return nil, domain.ErrNoTaskID
	}

	resp, err := c.postJSON(ctx, "/api/tasks/claim", map[string]string{"taskId": taskID})
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		c.logger.Info("claim refused", "task", taskID, "status", resp.StatusCode)
		return &domain.ClaimResult{}, nil
	}

	result := &domain.ClaimResult{Claimed: true}
	var p taskPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err == nil {
		task := p.toDomain()
		result.Task = &task
	}
	return result, nil
}

// Submit posts the completed work for an assigned task.
func (c *Client) Submit(ctx context.Context, taskID string, payload domain.SubmissionPayload) error {
	if taskID == "" {
		return domain.ErrNoTaskID
	}

	resp, err := c.postJSON(ctx, "/api/tasks/"+taskID+"/submit", payload)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return statusErr("submit task "+taskID, resp.StatusCode)
	}
	return nil
}

// canAssignPayload is the response of can-assign-task-to-self. The claim
// gate lives under a "default" object.
type canAssignPayload struct {
	Default struct {
		CanAssign    *bool  `json:"canAssign"`
		AllowedAfter string `json:"allowedAfter"`
		Reason       string `json:"reason"`
	} `json:"default"`
}

// AssignmentStatus reports whether this identity holds a server-side
// assignment. The can-assign endpoint is the reliable signal; the summary
// endpoint supplies the task snapshot when one is available.
func (c *Client) AssignmentStatus(ctx context.Context) (*domain.AssignmentStatus, error) {
	payload, err := c.fetchCanAssign(ctx)
	if err != nil {
		return nil, err
	}

	reason := strings.ToLower(payload.Default.Reason)
	assigned := payload.Default.CanAssign != nil && !*payload.Default.CanAssign &&
		(strings.Contains(reason, "assigned task") || strings.Contains(reason, "complete it before"))

	status := &domain.AssignmentStatus{
		Assigned: assigned,
		Reason:   payload.Default.Reason,
	}
	if assigned {
		status.Task = c.assignedTaskSnapshot(ctx)
	}
	return status, nil
}

// assignedTaskSnapshot fetches the assigned task's details from the
// summary endpoint. Best-effort: a nil return only means less detail.
func (c *Client) assignedTaskSnapshot(ctx context.Context) *domain.Task {
	resp, err := c.get(ctx, "/api/tasks/task-summary")
	if err != nil {
		return nil
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var payload struct {
		Tasks []taskPayload `json:"tasks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload.Tasks) == 0 {
		return nil
	}
	task := payload.Tasks[0].toDomain()
	return &task
}

// CooldownStatus reports the server's claim restriction. An allowedAfter
// the server sent but we cannot parse yields Blocked with a zero
// AllowedAfter; the caller must then assume a conservative cooldown.
func (c *Client) CooldownStatus(ctx context.Context) (*domain.CooldownStatus, error) {
	payload, err := c.fetchCanAssign(ctx)
	if err != nil {
		return nil, err
	}

	canAssign := payload.Default.CanAssign == nil || *payload.Default.CanAssign
	if canAssign || payload.Default.AllowedAfter == "" {
		return &domain.CooldownStatus{Reason: payload.Default.Reason}, nil
	}

	status := &domain.CooldownStatus{
		Blocked: true,
		Reason:  payload.Default.Reason,
	}
	end, err := parseServerTime(payload.Default.AllowedAfter)
	if err != nil {
		c.logger.Warn("unparsable allowedAfter", "value", payload.Default.AllowedAfter, "error", err)
		return status, nil
	}
	status.AllowedAfter = end
	return status, nil
}

// Summary retrieves earnings totals.
func (c *Client) Summary(ctx context.Context) (*domain.Summary, error) {
	resp, err := c.get(ctx, "/api/tasks/task-summary")
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("fetch task summary", resp.StatusCode)
	}

	var payload struct {
		TotalAmount     float64 `json:"totalAmount"`
		TotalPayouts    float64 `json:"totalPayouts"`
		RemainingPayout float64 `json:"remainingPayout"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse task summary: %w", err)
	}
	return &domain.Summary{
		TotalAmount:     payload.TotalAmount,
		TotalPayouts:    payload.TotalPayouts,
		RemainingPayout: payload.RemainingPayout,
	}, nil
}

func (c *Client) fetchCanAssign(ctx context.Context) (*canAssignPayload, error) {
	resp, err := c.get(ctx, "/api/tasks/can-assign-task-to-self")
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("check claim status", resp.StatusCode)
	}

	var payload canAssignPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse claim status: %w", err)
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// statusErr maps non-200 responses onto the error taxonomy: an expired
// session surfaces as ErrNotAuthenticated so callers can re-login.
func statusErr(op string, code int) error {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return fmt.Errorf("%s: %w", op, domain.ErrNotAuthenticated)
	}
	return fmt.Errorf("%s: HTTP %d", op, code)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Ensure Client implements PoolClient.
var _ domain.PoolClient = (*Client)(nil)
