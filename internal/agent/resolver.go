package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/predicate"
	"github.com/lifeops/scheduler/pkg/config"
)

// StateResolver looks predicate subjects up on the agent's state endpoint.
// With no state URL configured every subject resolves to nil, which the
// evaluation service records as unknown.
type StateResolver struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewStateResolver(cfg config.AgentConfig, logger *zap.Logger) *StateResolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &StateResolver{
		url:        cfg.StateURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (r *StateResolver) Resolve(ctx context.Context, subject string, act actor.Context) (any, error) {
	if r.url == "" {
		r.logger.Debug("no agent state url configured, subject unresolved",
			zap.String("subject", subject))
		return nil, nil
	}

	u := fmt.Sprintf("%s?subject=%s&actor_id=%s", r.url,
		url.QueryEscape(subject), url.QueryEscape(act.ActorID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("state endpoint returned status %d", resp.StatusCode)
	}

	var reply struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode state reply: %w", err)
	}
	return reply.Value, nil
}

// AllowAllPolicy authorizes every subject lookup. Deployments with scoped
// agent permissions substitute their own Policy.
type AllowAllPolicy struct{}

func (AllowAllPolicy) Authorize(ctx context.Context, act actor.Context, subject string) predicate.Decision {
	return predicate.DecisionAllow
}
