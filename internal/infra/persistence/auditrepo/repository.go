package auditrepo

import (
	"context"
	"errors"

	"github.com/google/wire"
	"github.com/samber/lo"
	"gorm.io/gorm"

	domain "github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *MysqlRepositoryImpl) AppendScheduleLog(ctx context.Context, log *domain.ScheduleAuditLog) error {
	po := new(ScheduleAuditLogPo).FromDomain(log)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	log.ID = po.ID
	log.CreatedAt = po.CreatedAt
	return nil
}

func (r *MysqlRepositoryImpl) AppendExecutionLog(ctx context.Context, log *domain.ExecutionAuditLog) error {
	po := new(ExecutionAuditLogPo).FromDomain(log)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	log.ID = po.ID
	log.CreatedAt = po.CreatedAt
	return nil
}

func (r *MysqlRepositoryImpl) AppendPredicateLog(ctx context.Context, log *domain.PredicateEvaluationAuditLog) error {
	po := new(PredicateEvaluationAuditLogPo).FromDomain(log)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	log.ID = po.ID
	log.CreatedAt = po.CreatedAt
	return nil
}

func (r *MysqlRepositoryImpl) ListScheduleLogs(ctx context.Context, filter *domain.ScheduleLogFilter, offset, limit int) ([]*domain.ScheduleAuditLog, int64, error) {
	query := r.Db(ctx).Model(&ScheduleAuditLogPo{})
	if filter.ScheduleID.IsPresent() {
		query = query.Where("schedule_id = ?", filter.ScheduleID.MustGet())
	}
	if filter.Event.IsPresent() {
		query = query.Where("event = ?", filter.Event.MustGet())
	}
	if filter.TraceID.IsPresent() {
		query = query.Where("trace_id = ?", filter.TraceID.MustGet())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []ScheduleAuditLogPo
	if err := query.Order("id asc").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po ScheduleAuditLogPo, _ int) *domain.ScheduleAuditLog {
		return po.ToDomain()
	}), total, nil
}

func (r *MysqlRepositoryImpl) ListExecutionLogs(ctx context.Context, executionID uint64, offset, limit int) ([]*domain.ExecutionAuditLog, int64, error) {
	query := r.Db(ctx).Model(&ExecutionAuditLogPo{}).Where("execution_id = ?", executionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []ExecutionAuditLogPo
	if err := query.Order("id asc").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po ExecutionAuditLogPo, _ int) *domain.ExecutionAuditLog {
		return po.ToDomain()
	}), total, nil
}

func (r *MysqlRepositoryImpl) GetLatestPredicateLog(ctx context.Context, evaluationID string) (*domain.PredicateEvaluationAuditLog, error) {
	var po PredicateEvaluationAuditLogPo
	err := r.Db(ctx).Where("evaluation_id = ?", evaluationID).Order("id desc").First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}
