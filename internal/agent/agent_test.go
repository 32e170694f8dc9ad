package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/dispatch"
	"github.com/lifeops/scheduler/pkg/config"
	"github.com/lifeops/scheduler/pkg/logger"
)

func invocationContext() dispatch.InvocationContext {
	return dispatch.InvocationContext{
		Execution: &execution.Execution{ID: 7, ScheduleID: 3, AttemptCount: 1, TraceID: "t-1"},
		Schedule:  &schedule.Schedule{ID: 3},
		Intent:    &intent.TaskIntent{Summary: "water the plants", Details: "use the back tap"},
	}
}

func TestHTTPInvokerSuccess(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "result_code": "done"})
	}))
	defer srv.Close()

	invoker := NewHTTPInvoker(config.AgentConfig{InvokeURL: srv.URL}, logger.NewNop())
	result, err := invoker.Invoke(context.Background(), invocationContext())
	require.NoError(t, err)
	assert.Equal(t, dispatch.InvocationSuccess, result.Status)
	assert.Equal(t, "done", result.ResultCode)

	assert.Equal(t, "7", received["execution_id"])
	assert.Equal(t, "water the plants", received["task_summary"])
	assert.Equal(t, "t-1", received["trace_id"])
}

func TestHTTPInvokerReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "failure", "error_message": "tap not found",
		})
	}))
	defer srv.Close()

	invoker := NewHTTPInvoker(config.AgentConfig{InvokeURL: srv.URL}, logger.NewNop())
	result, err := invoker.Invoke(context.Background(), invocationContext())
	require.NoError(t, err)
	assert.Equal(t, dispatch.InvocationFailure, result.Status)
	assert.Equal(t, "agent_failure", result.ResultCode)
	assert.Equal(t, "tap not found", result.ErrorMessage)
}

func TestHTTPInvokerNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	invoker := NewHTTPInvoker(config.AgentConfig{InvokeURL: srv.URL}, logger.NewNop())
	result, err := invoker.Invoke(context.Background(), invocationContext())
	require.NoError(t, err)
	assert.Equal(t, dispatch.InvocationFailure, result.Status)
	assert.Equal(t, "http_502", result.ResultCode)
}

func TestHTTPInvokerUnconfigured(t *testing.T) {
	invoker := NewHTTPInvoker(config.AgentConfig{}, logger.NewNop())
	result, err := invoker.Invoke(context.Background(), invocationContext())
	require.NoError(t, err)
	assert.Equal(t, dispatch.InvocationSuccess, result.Status)
	assert.Equal(t, "logged", result.ResultCode)
}

func TestStateResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "garden.soil_moisture", r.URL.Query().Get("subject"))
		assert.Equal(t, "user-1", r.URL.Query().Get("actor_id"))
		json.NewEncoder(w).Encode(map[string]any{"value": 42})
	}))
	defer srv.Close()

	resolver := NewStateResolver(config.AgentConfig{StateURL: srv.URL}, logger.NewNop())
	value, err := resolver.Resolve(context.Background(), "garden.soil_moisture",
		actor.Context{ActorID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, float64(42), value)
}

func TestStateResolverNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resolver := NewStateResolver(config.AgentConfig{StateURL: srv.URL}, logger.NewNop())
	value, err := resolver.Resolve(context.Background(), "missing", actor.Context{})
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestStateResolverUnconfigured(t *testing.T) {
	resolver := NewStateResolver(config.AgentConfig{}, logger.NewNop())
	value, err := resolver.Resolve(context.Background(), "anything", actor.Context{})
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSignalNotifier(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	notifier := NewSignalNotifier(config.AgentConfig{SignalURL: srv.URL}, logger.NewNop())
	err := notifier.NotifyFailure(context.Background(), dispatch.FailureNotice{
		SignalRef: "schedule-failure:3", ScheduleID: 3, FailureCount: 3, LastError: "boom",
	})
	require.NoError(t, err)
	assert.Equal(t, "schedule-failure:3", received["signal_ref"])
	assert.Equal(t, "boom", received["last_error"])
}

func TestSignalNotifierRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	notifier := NewSignalNotifier(config.AgentConfig{SignalURL: srv.URL}, logger.NewNop())
	err := notifier.NotifyFailure(context.Background(), dispatch.FailureNotice{SignalRef: "r"})
	assert.Error(t, err)
}

func TestSignalNotifierUnconfigured(t *testing.T) {
	notifier := NewSignalNotifier(config.AgentConfig{}, logger.NewNop())
	assert.NoError(t, notifier.NotifyFailure(context.Background(), dispatch.FailureNotice{SignalRef: "r"}))
}
