package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/dispatch"
	"github.com/lifeops/scheduler/pkg/config"
)

// SignalNotifier forwards failure notices to the attention-routing endpoint.
// Without a signal URL it logs the notice instead, so failure visibility
// survives a missing integration.
type SignalNotifier struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewSignalNotifier(cfg config.AgentConfig, logger *zap.Logger) *SignalNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SignalNotifier{
		url:        cfg.SignalURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (n *SignalNotifier) NotifyFailure(ctx context.Context, notice dispatch.FailureNotice) error {
	if n.url == "" {
		n.logger.Warn("schedule failure signal",
			zap.String("signal_ref", notice.SignalRef),
			zap.Uint64("schedule_id", notice.ScheduleID),
			zap.Uint64("execution_id", notice.ExecutionID),
			zap.Int("failure_count", notice.FailureCount),
			zap.String("last_error", notice.LastError))
		return nil
	}

	payload := map[string]any{
		"signal_ref":      notice.SignalRef,
		"schedule_id":     notice.ScheduleID,
		"execution_id":    notice.ExecutionID,
		"failure_count":   notice.FailureCount,
		"threshold":       notice.Threshold,
		"throttle_window": notice.ThrottleWindow.String(),
		"last_error_code": notice.LastErrorCode,
		"last_error":      notice.LastError,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver signal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("signal endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
