package predicate

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/domain/fault"
)

var Provider = wire.NewSet(NewService)

type Service struct {
	schedules schedule.Repo
	audits    audit.Repo
	resolver  Resolver
	policy    Policy
	logger    *zap.Logger
}

func NewService(
	schedules schedule.Repo,
	audits audit.Repo,
	resolver Resolver,
	policy Policy,
	logger *zap.Logger,
) *Service {
	return &Service{
		schedules: schedules,
		audits:    audits,
		resolver:  resolver,
		policy:    policy,
		logger:    logger,
	}
}

// Evaluate resolves the schedule's predicate subject and compares it
// against the configured value. Resolver failures are downgraded to an
// error status, never propagated; every attempt leaves an audit row.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	if req.EvaluationID == "" {
		return nil, fault.Validation("evaluation_id", "evaluation requires an id")
	}

	sched, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fault.NotFound("schedule", req.ScheduleID)
	}
	if sched.Type != schedule.TypeConditional {
		return nil, fault.Conflict("not_conditional",
			"predicate evaluation applies only to conditional schedules")
	}

	attempt := 1
	if prev, err := s.audits.GetLatestPredicateLog(ctx, req.EvaluationID); err != nil {
		return nil, err
	} else if prev != nil {
		attempt = prev.Attempt + 1
	}

	def := sched.Definition
	decision := DecisionAllow
	if s.policy != nil {
		decision = s.policy.Authorize(ctx, req.Actor, def.PredicateSubject)
	}

	var observed *string
	status := StatusUnknown

	if decision == DecisionAllow {
		value, resolveErr := s.resolver.Resolve(ctx, def.PredicateSubject, req.Actor)
		if resolveErr != nil {
			s.logger.Warn("predicate subject resolution failed",
				zap.Uint64("schedule_id", sched.ID),
				zap.String("subject", def.PredicateSubject),
				zap.Error(resolveErr))
			status = StatusError
		} else {
			status, observed = evaluate(def.PredicateOperator, value, def.PredicateValue)
		}
	}

	if err := s.audits.AppendPredicateLog(ctx, &audit.PredicateEvaluationAuditLog{
		EvaluationID:  req.EvaluationID,
		ScheduleID:    sched.ID,
		EvaluatedAt:   req.EvaluatedAt,
		Subject:       def.PredicateSubject,
		Operator:      string(def.PredicateOperator),
		ExpectedValue: def.PredicateValue,
		ObservedValue: observed,
		Result:        string(status),
		Authorization: string(decision),
		Attempt:       attempt,
		ProviderMeta:  req.ProviderMeta,
		ActorType:     req.Actor.ActorType,
		ActorID:       req.Actor.ActorID,
	}); err != nil {
		return nil, err
	}

	return &Evaluation{
		EvaluationID:  req.EvaluationID,
		ScheduleID:    sched.ID,
		Status:        status,
		ObservedValue: observed,
		Authorization: decision,
		Attempt:       attempt,
	}, nil
}
