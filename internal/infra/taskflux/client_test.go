package taskflux

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(domain.APIConfig{
		BaseURL:  srv.URL,
		Email:    "bot@example.com",
		Password: "secret",
	}, testLogger())
	require.NoError(t, err)
	return client
}

func TestClient_Login_StoresCookieAndUserID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		_, _ = w.Write([]byte(`{"user": {"_id": "u-42", "assignedTask": null}}`))
	})
	mux.HandleFunc("/api/tasks/task-pool", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		require.NoError(t, err, "pool request carries the session cookie")
		assert.Equal(t, "abc123", cookie.Value)
		_, _ = w.Write([]byte(`[]`))
	})
	client := newTestClient(t, mux)

	result, err := client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-42", result.UserID)
	assert.Nil(t, result.AssignedTask)

	_, err = client.FetchPool(context.Background())
	require.NoError(t, err)
}

func TestClient_Login_SurfacesAssignedTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user": {"_id": "u-1", "assignedTask": {
			"_id": "t-9", "type": "redditCommentTask",
			"assignedAt": "2026-08-25T10:00:00.000Z",
			"deadline": "2026-08-25T16:00:00.000Z"
		}}}`))
	})
	client := newTestClient(t, mux)

	result, err := client.Login(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.AssignedTask)
	assert.Equal(t, "t-9", result.AssignedTask.Key())
	assert.Equal(t, time.Date(2026, 8, 25, 16, 0, 0, 0, time.UTC), result.AssignedTask.Deadline)
}

func TestClient_Login_RejectsBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newTestClient(t, mux)

	_, err := client.Login(context.Background())
	assert.ErrorIs(t, err, domain.ErrLoginFailed)
}

func TestClient_Login_RequiresCredentials(t *testing.T) {
	client, err := New(domain.APIConfig{BaseURL: "https://example.com"}, testLogger())
	require.NoError(t, err)

	_, err = client.Login(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestClient_FetchPool_BareArrayAndAliases(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/task-pool", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "t-1", "type": "redditCommentTask", "comment": "hello", "price": 2},
			{"_id": "t-2", "type": "redditReplyTask", "text": "world", "price": "1.50"}
		]`))
	})
	client := newTestClient(t, mux)

	tasks, err := client.FetchPool(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t-1", tasks[0].Key())
	assert.Equal(t, "hello", tasks[0].ContentText())
	assert.Equal(t, "2", tasks[0].Price)
	assert.Equal(t, "t-2", tasks[1].Key())
	assert.Equal(t, "1.50", tasks[1].Price)
}

func TestClient_FetchPool_WrappedObjectSkipsAssigned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/task-pool", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tasks": [
			{"id": "t-1", "type": "redditCommentTask", "status": "assigned"},
			{"id": "t-2", "type": "redditCommentTask", "assignedTo": {"_id": "someone"}},
			{"id": "t-3", "type": "redditCommentTask", "status": "pending"}
		]}`))
	})
	client := newTestClient(t, mux)

	tasks, err := client.FetchPool(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-3", tasks[0].Key())
}

func TestClient_Claim_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/claim", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"taskId": "t-7"}`, string(body))
		_, _ = w.Write([]byte(`{"id": "t-7", "type": "redditCommentTask",
			"deadline": "2026-08-25T18:30:00Z"}`))
	})
	client := newTestClient(t, mux)

	result, err := client.Claim(context.Background(), "t-7")
	require.NoError(t, err)
	assert.True(t, result.Claimed)
	require.NotNil(t, result.Task)
	assert.False(t, result.Task.Deadline.IsZero())
}

func TestClient_Claim_RefusalIsNotAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/claim", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	client := newTestClient(t, mux)

	result, err := client.Claim(context.Background(), "t-7")
	require.NoError(t, err)
	assert.False(t, result.Claimed)
}

func TestClient_Claim_RequiresTaskID(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	_, err := client.Claim(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNoTaskID)
}

func TestClient_Submit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-7/submit", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"content": "done", "proofUrl": "https://reddit.com/x"}`, string(body))
	})
	client := newTestClient(t, mux)

	err := client.Submit(context.Background(), "t-7", domain.SubmissionPayload{
		Content:  "done",
		ProofURL: "https://reddit.com/x",
	})
	assert.NoError(t, err)
}

func TestClient_Submit_NonOKFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-7/submit", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	client := newTestClient(t, mux)

	err := client.Submit(context.Background(), "t-7", domain.SubmissionPayload{Content: "x"})
	assert.Error(t, err)
}

func TestClient_AssignmentStatus_DetectsAssignment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/can-assign-task-to-self", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"default": {"canAssign": false,
			"reason": "You have an assigned task. Please complete it before claiming another."}}`))
	})
	mux.HandleFunc("/api/tasks/task-summary", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tasks": [{"_id": "t-3", "type": "redditCommentTask",
			"claimedAt": "2026-08-25T09:00:00Z"}]}`))
	})
	client := newTestClient(t, mux)

	status, err := client.AssignmentStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Assigned)
	require.NotNil(t, status.Task)
	assert.Equal(t, "t-3", status.Task.Key())
	assert.Equal(t, time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC), status.Task.AssignedAt)
}

func TestClient_AssignmentStatus_CooldownReasonIsNotAssignment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/can-assign-task-to-self", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"default": {"canAssign": false,
			"allowedAfter": "2026-08-26T09:00:00Z",
			"reason": "You can claim your next task after the cooldown period."}}`))
	})
	client := newTestClient(t, mux)

	status, err := client.AssignmentStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Assigned)
}

func TestClient_CooldownStatus_ParsesAllowedAfter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/can-assign-task-to-self", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"default": {"canAssign": false,
			"allowedAfter": "2026-08-26T09:00:00.000Z",
			"reason": "cooldown"}}`))
	})
	client := newTestClient(t, mux)

	status, err := client.CooldownStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Blocked)
	assert.Equal(t, time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), status.AllowedAfter)
}

func TestClient_CooldownStatus_UnparsableEndStaysBlocked(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/can-assign-task-to-self", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"default": {"canAssign": false,
			"allowedAfter": "tomorrow-ish", "reason": "cooldown"}}`))
	})
	client := newTestClient(t, mux)

	status, err := client.CooldownStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Blocked)
	assert.True(t, status.AllowedAfter.IsZero(), "unparsable end degrades to zero time")
}

func TestClient_CooldownStatus_ClearWhenCanAssign(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/can-assign-task-to-self", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"default": {"canAssign": true}}`))
	})
	client := newTestClient(t, mux)

	status, err := client.CooldownStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Blocked)
	assert.True(t, status.AllowedAfter.IsZero())
}

func TestClient_Summary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/task-summary", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalAmount": 12.5, "totalPayouts": 10, "remainingPayout": 2.5}`))
	})
	client := newTestClient(t, mux)

	summary, err := client.Summary(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 12.5, summary.TotalAmount, 0.001)
	assert.InDelta(t, 10.0, summary.TotalPayouts, 0.001)
	assert.InDelta(t, 2.5, summary.RemainingPayout, 0.001)
}

func TestClient_SessionExpiryMapsToNotAuthenticated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/task-pool", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newTestClient(t, mux)

	_, err := client.FetchPool(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestParseServerTime_Formats(t *testing.T) {
	for _, value := range []string{
		"2026-08-25T10:00:00.254Z",
		"2026-08-25T10:00:00Z",
		"2026-08-25T10:00:00",
		"2026-08-25 10:00:00",
	} {
		parsed, err := parseServerTime(value)
		require.NoError(t, err, value)
		assert.Equal(t, 10, parsed.Hour(), value)
	}

	_, err := parseServerTime("not a time")
	assert.Error(t, err)
}
