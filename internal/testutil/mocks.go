// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the mock clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// MockPoolClient is a test double for domain.PoolClient. Each operation
// returns the configured value/error pair and records that it was called.
// Fields are ordered to minimize memory padding.
type MockPoolClient struct {
	LoginResult      *domain.LoginResult
	ClaimResult      *domain.ClaimResult
	AssignmentResult *domain.AssignmentStatus
	CooldownResult   *domain.CooldownStatus
	SummaryResult    *domain.Summary

	LoginErr      error
	FetchPoolErr  error
	ClaimErr      error
	SubmitErr     error
	AssignmentErr error
	CooldownErr   error
	SummaryErr    error

	PoolTasks []domain.Task

	ClaimedIDs    []string
	SubmittedIDs  []string
	Submissions   []domain.SubmissionPayload
	LoginCalls    int
	FetchCalls    int
	CooldownCalls int
}

// NewMockPoolClient creates a MockPoolClient with benign defaults: logged
// in, empty pool, no assignment, no cooldown.
func NewMockPoolClient() *MockPoolClient {
	return &MockPoolClient{
		LoginResult:      &domain.LoginResult{UserID: "user-1"},
		ClaimResult:      &domain.ClaimResult{},
		AssignmentResult: &domain.AssignmentStatus{},
		CooldownResult:   &domain.CooldownStatus{},
		SummaryResult:    &domain.Summary{},
	}
}

// Login returns the configured login result.
func (m *MockPoolClient) Login(_ context.Context) (*domain.LoginResult, error) {
	m.LoginCalls++
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	return m.LoginResult, nil
}

// FetchPool returns the configured pool tasks.
func (m *MockPoolClient) FetchPool(_ context.Context) ([]domain.Task, error) {
	m.FetchCalls++
	if m.FetchPoolErr != nil {
		return nil, m.FetchPoolErr
	}
	return m.PoolTasks, nil
}

// Claim records the attempted task ID and returns the configured result.
func (m *MockPoolClient) Claim(_ context.Context, taskID string) (*domain.ClaimResult, error) {
	m.ClaimedIDs = append(m.ClaimedIDs, taskID)
	if m.ClaimErr != nil {
		return nil, m.ClaimErr
	}
	return m.ClaimResult, nil
}

// Submit records the submission and returns the configured error.
func (m *MockPoolClient) Submit(_ context.Context, taskID string, payload domain.SubmissionPayload) error {
	m.SubmittedIDs = append(m.SubmittedIDs, taskID)
	m.Submissions = append(m.Submissions, payload)
	return m.SubmitErr
}

// AssignmentStatus returns the configured assignment state.
func (m *MockPoolClient) AssignmentStatus(_ context.Context) (*domain.AssignmentStatus, error) {
	if m.AssignmentErr != nil {
		return nil, m.AssignmentErr
	}
	return m.AssignmentResult, nil
}

// CooldownStatus returns the configured cooldown state.
func (m *MockPoolClient) CooldownStatus(_ context.Context) (*domain.CooldownStatus, error) {
	m.CooldownCalls++
	if m.CooldownErr != nil {
		return nil, m.CooldownErr
	}
	return m.CooldownResult, nil
}

// Summary returns the configured earnings summary.
func (m *MockPoolClient) Summary(_ context.Context) (*domain.Summary, error) {
	if m.SummaryErr != nil {
		return nil, m.SummaryErr
	}
	return m.SummaryResult, nil
}

// MockNotifier is a test double for domain.Notifier that records every
// notification it receives.
type MockNotifier struct {
	Sent      []domain.Notification
	NotifyErr error
}

// Notify records the notification.
func (m *MockNotifier) Notify(_ context.Context, n domain.Notification) error {
	m.Sent = append(m.Sent, n)
	return m.NotifyErr
}

// Titles returns the titles of all recorded notifications, in order.
func (m *MockNotifier) Titles() []string {
	titles := make([]string, 0, len(m.Sent))
	for _, n := range m.Sent {
		titles = append(titles, n.Title)
	}
	return titles
}

// MockCooldownStore is an in-memory test double for domain.CooldownStore.
type MockCooldownStore struct {
	End     time.Time
	LoadErr error
	SaveErr error
	Saves   int
}

// Load returns the stored end time.
func (m *MockCooldownStore) Load() (time.Time, error) {
	if m.LoadErr != nil {
		return time.Time{}, m.LoadErr
	}
	return m.End, nil
}

// Save overwrites the stored end time.
func (m *MockCooldownStore) Save(end time.Time) error {
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.End = end
	return nil
}

var (
	_ domain.Clock         = (*MockClock)(nil)
	_ domain.PoolClient    = (*MockPoolClient)(nil)
	_ domain.Notifier      = (*MockNotifier)(nil)
	_ domain.CooldownStore = (*MockCooldownStore)(nil)
)
