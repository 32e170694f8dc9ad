package reviewrepo

import (
	"time"

	domain "github.com/lifeops/scheduler/internal/biz/review"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

func (p *ReviewOutputPo) FromDomain(in *domain.Output) *ReviewOutputPo {
	return &ReviewOutputPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
		},
		WindowStart:      in.WindowStart,
		WindowEnd:        in.WindowEnd,
		GracePeriod:      int64(in.GracePeriod),
		FailureThreshold: in.FailureThreshold,
		StaleFailureAge:  int64(in.StaleFailureAge),
		IgnoredPauseAge:  int64(in.IgnoredPauseAge),
		OrphanedCount:    in.OrphanedCount,
		FailingCount:     in.FailingCount,
		IgnoredCount:     in.IgnoredCount,
	}
}

func (p *ReviewOutputPo) ToDomain() *domain.Output {
	return &domain.Output{
		ID:               p.ID,
		CreatedAt:        p.CreatedAt,
		WindowStart:      p.WindowStart,
		WindowEnd:        p.WindowEnd,
		GracePeriod:      time.Duration(p.GracePeriod),
		FailureThreshold: p.FailureThreshold,
		StaleFailureAge:  time.Duration(p.StaleFailureAge),
		IgnoredPauseAge:  time.Duration(p.IgnoredPauseAge),
		OrphanedCount:    p.OrphanedCount,
		FailingCount:     p.FailingCount,
		IgnoredCount:     p.IgnoredCount,
	}
}

func (p *ReviewItemPo) FromDomain(in *domain.Item) *ReviewItemPo {
	return &ReviewItemPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
		},
		OutputID:    in.OutputID,
		ScheduleID:  in.ScheduleID,
		ExecutionID: in.ExecutionID,
		Issue:       in.Issue,
		Severity:    in.Severity,
		Description: in.Description,
		LastError:   in.LastError,
	}
}

func (p *ReviewItemPo) ToDomain() *domain.Item {
	return &domain.Item{
		ID:          p.ID,
		CreatedAt:   p.CreatedAt,
		OutputID:    p.OutputID,
		ScheduleID:  p.ScheduleID,
		ExecutionID: p.ExecutionID,
		Issue:       p.Issue,
		Severity:    p.Severity,
		Description: p.Description,
		LastError:   p.LastError,
	}
}
