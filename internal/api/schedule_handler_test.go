package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/bridge"
	"github.com/lifeops/scheduler/internal/command"
	"github.com/lifeops/scheduler/internal/infra/persistence/memrepo"
	"github.com/lifeops/scheduler/internal/predicate"
	"github.com/lifeops/scheduler/internal/reviewjob"
	"github.com/lifeops/scheduler/pkg/config"
	"github.com/lifeops/scheduler/pkg/logger"
)

type stubProvider struct{}

func (stubProvider) RegisterSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	return nil
}
func (stubProvider) UpdateSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	return nil
}
func (stubProvider) PauseSchedule(ctx context.Context, scheduleID uint64) error { return nil }
func (stubProvider) ResumeSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	return nil
}
func (stubProvider) DeleteSchedule(ctx context.Context, scheduleID uint64) error { return nil }
func (stubProvider) TriggerCallback(ctx context.Context, req adapter.TriggerRequest) error {
	return nil
}
func (stubProvider) CheckHealth(ctx context.Context) adapter.HealthStatus {
	return adapter.HealthStatus{State: adapter.HealthReady}
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(ctx context.Context, executionID uint64) error { return nil }

type nilResolver struct{}

func (nilResolver) Resolve(ctx context.Context, subject string, act actor.Context) (any, error) {
	return nil, nil
}

type allowAll struct{}

func (allowAll) Authorize(ctx context.Context, act actor.Context, subject string) predicate.Decision {
	return predicate.DecisionAllow
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	schedules := memrepo.NewScheduleRepo()
	executions := memrepo.NewExecutionRepo()
	intents := memrepo.NewIntentRepo()
	audits := memrepo.NewAuditRepo()
	outputs := memrepo.NewReviewRepo()
	log := logger.NewNop()

	commands := command.NewService(intents, schedules, audits, stubProvider{}, log)
	evaluator := predicate.NewService(schedules, audits, nilResolver{}, allowAll{}, log)
	callbackBridge := bridge.New(schedules, executions, noopDispatcher{}, config.DispatcherConfig{DefaultMaxAttempts: 3}, log)
	job := reviewjob.New(schedules, executions, outputs, config.ReviewConfig{
		GracePeriod: 24 * time.Hour, FailureThreshold: 3,
		StaleFailureAge: 72 * time.Hour, IgnoredPauseAge: 720 * time.Hour,
	}, log)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware(log))
	v1 := router.Group("/api/v1")
	NewScheduleHandler(commands, evaluator, schedules, audits).Bind(v1)
	NewIntentHandler(commands, intents).Bind(v1)
	NewExecutionHandler(executions, audits).Bind(v1)
	NewCallbackHandler(callbackBridge).Bind(v1)
	NewReviewHandler(job, outputs).Bind(v1)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSchedule(t *testing.T, router *gin.Engine) ScheduleResp {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/schedules", map[string]any{
		"summary": "water the plants",
		"type":    "interval",
		"definition": map[string]any{
			"interval_count": 1,
			"interval_unit":  "day",
		},
		"actor": map[string]any{"actor_id": "user-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ScheduleResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateAndGetSchedule(t *testing.T) {
	router := newTestRouter(t)
	created := createSchedule(t, router)
	assert.Equal(t, "active", created.State)
	assert.Equal(t, "user", created.CreatorType)
	assert.NotNil(t, created.NextRunAt)

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/schedules/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got ScheduleResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateScheduleRejectsBadPayload(t *testing.T) {
	router := newTestRouter(t)

	// Missing summary fails binding.
	w := doJSON(t, router, http.MethodPost, "/api/v1/schedules", map[string]any{
		"type":       "interval",
		"definition": map[string]any{"interval_count": 1, "interval_unit": "day"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Shape violations from the domain map to 400 with a coded body.
	w = doJSON(t, router, http.MethodPost, "/api/v1/schedules", map[string]any{
		"summary":    "x",
		"type":       "one_time",
		"definition": map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid_run_at", body.Code)
}

func TestGetScheduleNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/schedules/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "schedule_not_found", body.Code)
}

func TestPauseWithoutBody(t *testing.T) {
	router := newTestRouter(t)
	created := createSchedule(t, router)

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/schedules/%d/pause", created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A second pause without allow_noop conflicts.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/schedules/%d/pause", created.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/schedules/%d/pause", created.ID),
		map[string]any{"allow_noop": true})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateImmutableIntent(t *testing.T) {
	router := newTestRouter(t)
	created := createSchedule(t, router)

	w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/schedules/%d", created.ID),
		map[string]any{"task_intent_id": created.TaskIntentID + 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRunNowEndpoint(t *testing.T) {
	router := newTestRouter(t)
	created := createSchedule(t, router)

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/schedules/%d/run-now", created.ID),
		map[string]any{"trace_id": "manual-1"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp struct {
		AuditLogID uint64 `json:"audit_log_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.AuditLogID)

	w = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/schedules/%d/audit-logs?event=run_now", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs PageResp[ScheduleAuditLogResp]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Equal(t, int64(1), logs.Total)
	assert.Equal(t, "manual-1", logs.Items[0].TraceID)
}

func TestCallbackEndpointDeduplicates(t *testing.T) {
	router := newTestRouter(t)
	created := createSchedule(t, router)

	payload := map[string]any{
		"schedule_id":   created.ID,
		"scheduled_for": time.Now().UTC().Format(time.RFC3339),
		"trace_id":      "trace-1",
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/callbacks", payload)
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/callbacks", payload)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "duplicate", resp.Status)
}

func TestExecutionsListAfterCallback(t *testing.T) {
	router := newTestRouter(t)
	created := createSchedule(t, router)

	doJSON(t, router, http.MethodPost, "/api/v1/callbacks", map[string]any{
		"schedule_id":   created.ID,
		"scheduled_for": time.Now().UTC().Format(time.RFC3339),
		"trace_id":      "trace-1",
	})

	w := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/executions?schedule_id=%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp PageResp[ExecutionResp]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "queued", resp.Items[0].Status)
	assert.Equal(t, "trace-1", resp.Items[0].TraceID)
}

func TestIntentSupersedeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	first := createSchedule(t, router)
	second := createSchedule(t, router)

	w := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/intents/%d/supersede", first.TaskIntentID),
		map[string]any{"superseded_by_intent_id": second.TaskIntentID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/intents/%d", first.TaskIntentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got IntentResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.SupersededByIntentID)
	assert.Equal(t, second.TaskIntentID, *got.SupersededByIntentID)

	// Only superseded intents come back with the filter set.
	w = doJSON(t, router, http.MethodGet, "/api/v1/intents?superseded=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list PageResp[IntentResp]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
}

func TestReviewEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/reviews", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created ReviewOutputResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/reviews/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/reviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list PageResp[ReviewOutputResp]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
}
