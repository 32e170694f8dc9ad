// Package agent holds the HTTP collaborators that connect the scheduling
// core to the agent runtime: work invocation, predicate state lookup and
// failure signal delivery. Every collaborator degrades to a logging stand-in
// when its URL is unconfigured.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/dispatch"
	"github.com/lifeops/scheduler/pkg/config"
)

var Provider = wire.NewSet(NewHTTPInvoker, NewSignalNotifier, NewStateResolver)

type HTTPInvoker struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPInvoker(cfg config.AgentConfig, logger *zap.Logger) *HTTPInvoker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPInvoker{
		url:        cfg.InvokeURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type invokeResponse struct {
	Status            string `json:"status"`
	ResultCode        string `json:"result_code"`
	AttentionRequired bool   `json:"attention_required"`
	Message           string `json:"message"`
	ErrorMessage      string `json:"error_message"`
}

// Invoke posts the execution to the agent runtime and maps its reply onto an
// invocation result. A transport error is returned as-is; the dispatcher
// records it with the agent_error code.
func (i *HTTPInvoker) Invoke(ctx context.Context, ic dispatch.InvocationContext) (dispatch.InvocationResult, error) {
	if i.url == "" {
		i.logger.Info("no agent invoke url configured, treating invocation as succeeded",
			zap.Uint64("execution_id", ic.Execution.ID),
			zap.Uint64("schedule_id", ic.Schedule.ID))
		return dispatch.InvocationResult{Status: dispatch.InvocationSuccess, ResultCode: "logged"}, nil
	}

	payload := map[string]any{
		"execution_id":  cast.ToString(ic.Execution.ID),
		"schedule_id":   cast.ToString(ic.Schedule.ID),
		"task_summary":  ic.Intent.Summary,
		"task_details":  ic.Intent.Details,
		"scheduled_for": ic.Execution.ScheduledFor,
		"attempt":       ic.Execution.AttemptCount,
		"trace_id":      ic.Execution.TraceID,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return dispatch.InvocationResult{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return dispatch.InvocationResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return dispatch.InvocationResult{}, fmt.Errorf("failed to call agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return dispatch.InvocationResult{
			Status:       dispatch.InvocationFailure,
			ResultCode:   fmt.Sprintf("http_%d", resp.StatusCode),
			ErrorMessage: fmt.Sprintf("agent returned status %d", resp.StatusCode),
		}, nil
	}

	var reply invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return dispatch.InvocationResult{}, fmt.Errorf("failed to decode agent reply: %w", err)
	}

	result := dispatch.InvocationResult{
		ResultCode:        reply.ResultCode,
		AttentionRequired: reply.AttentionRequired,
		Message:           reply.Message,
		ErrorMessage:      reply.ErrorMessage,
	}
	if reply.Status == "success" {
		result.Status = dispatch.InvocationSuccess
	} else {
		result.Status = dispatch.InvocationFailure
		if result.ResultCode == "" {
			result.ResultCode = "agent_failure"
		}
	}
	return result, nil
}
