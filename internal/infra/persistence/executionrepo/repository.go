package executionrepo

import (
	"context"
	"errors"

	"github.com/google/wire"
	"github.com/samber/lo"
	"gorm.io/gorm"

	domain "github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

// Create inserts the execution. The dedupe check rides on the unique
// (schedule_id, trace_id) index, so a concurrent insert of the same trace
// collapses into ErrDuplicateTrace instead of a second row. Requires the
// connection to be opened with TranslateError.
func (r *MysqlRepositoryImpl) Create(ctx context.Context, e *domain.Execution) error {
	po := new(ExecutionPo).FromDomain(e)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateTrace
		}
		return err
	}
	e.ID = po.ID
	e.CreatedAt = po.CreatedAt
	e.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.Execution, error) {
	var po ExecutionPo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) GetByScheduleAndTrace(ctx context.Context, scheduleID uint64, traceID string) (*domain.Execution, error) {
	var po ExecutionPo
	err := r.Db(ctx).Where("schedule_id = ? AND trace_id = ?", scheduleID, traceID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) GetLatestForSchedule(ctx context.Context, scheduleID uint64) (*domain.Execution, error) {
	var po ExecutionPo
	err := r.Db(ctx).Where("schedule_id = ?", scheduleID).Order("id desc").First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) Save(ctx context.Context, e *domain.Execution) error {
	po := new(ExecutionPo).FromDomain(e)
	if err := r.Db(ctx).Save(po).Error; err != nil {
		return err
	}
	e.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) Update(ctx context.Context, id uint64, patch *domain.Patch) error {
	values := patchToMap(patch)
	if len(values) == 0 {
		return nil
	}
	return r.Db(ctx).Model(&ExecutionPo{}).Where("id = ?", id).Updates(values).Error
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter *domain.Filter, offset, limit int) ([]*domain.Execution, int64, error) {
	query := r.Db(ctx).Model(&ExecutionPo{})
	if filter.ScheduleID.IsPresent() {
		query = query.Where("schedule_id = ?", filter.ScheduleID.MustGet())
	}
	if filter.TaskIntentID.IsPresent() {
		query = query.Where("task_intent_id = ?", filter.TaskIntentID.MustGet())
	}
	if filter.Status.IsPresent() {
		query = query.Where("status = ?", filter.Status.MustGet())
	}
	if filter.ScheduledFrom.IsPresent() {
		query = query.Where("scheduled_for >= ?", filter.ScheduledFrom.MustGet())
	}
	if filter.ScheduledTo.IsPresent() {
		query = query.Where("scheduled_for < ?", filter.ScheduledTo.MustGet())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []ExecutionPo
	if err := query.Order("scheduled_for desc, id desc").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po ExecutionPo, _ int) *domain.Execution {
		return po.ToDomain()
	}), total, nil
}
