package schedulerepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/wire"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *MysqlRepositoryImpl) Create(ctx context.Context, s *domain.Schedule) error {
	po := new(SchedulePo).FromDomain(s)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	s.ID = po.ID
	s.CreatedAt = po.CreatedAt
	s.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.Schedule, error) {
	var po SchedulePo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

// GetByIDForUpdate takes a row lock; concurrent mutators of the same
// schedule serialize here.
func (r *MysqlRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Schedule, error) {
	var po SchedulePo
	err := r.Db(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) Update(ctx context.Context, id uint64, patch *domain.Patch) error {
	values := patchToMap(patch)
	if len(values) == 0 {
		return nil
	}
	return r.Db(ctx).Model(&SchedulePo{}).Where("id = ?", id).Updates(values).Error
}

func (r *MysqlRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.Db(ctx).Delete(&SchedulePo{}, id).Error
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter *domain.Filter, offset, limit int) ([]*domain.Schedule, int64, error) {
	query := r.Db(ctx).Model(&SchedulePo{})
	if filter.TaskIntentID.IsPresent() {
		query = query.Where("task_intent_id = ?", filter.TaskIntentID.MustGet())
	}
	if filter.Type.IsPresent() {
		query = query.Where("type = ?", filter.Type.MustGet())
	}
	if filter.State.IsPresent() {
		query = query.Where("state = ?", filter.State.MustGet())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []SchedulePo
	if err := query.Order("id asc").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po SchedulePo, _ int) *domain.Schedule {
		return po.ToDomain()
	}), total, nil
}

func (r *MysqlRepositoryImpl) FindActiveWithNextRunBefore(ctx context.Context, cutoff time.Time) ([]*domain.Schedule, error) {
	return r.find(ctx, r.Db(ctx).
		Where("state = ?", domain.StateActive).
		Where("next_run_at IS NOT NULL AND next_run_at < ?", cutoff))
}

func (r *MysqlRepositoryImpl) FindFailing(ctx context.Context, threshold int, staleCutoff time.Time) ([]*domain.Schedule, error) {
	return r.find(ctx, r.Db(ctx).
		Where("state IN ?", []domain.State{domain.StateActive, domain.StatePaused}).
		Where("failure_count >= ? OR (last_run_status = ? AND last_run_at < ?)",
			threshold, domain.RunStatusFailed, staleCutoff))
}

func (r *MysqlRepositoryImpl) FindPausedSince(ctx context.Context, cutoff time.Time) ([]*domain.Schedule, error) {
	return r.find(ctx, r.Db(ctx).
		Where("state = ?", domain.StatePaused).
		Where("updated_at <= ?", cutoff))
}

func (r *MysqlRepositoryImpl) find(_ context.Context, query *gorm.DB) ([]*domain.Schedule, error) {
	var pos []SchedulePo
	if err := query.Order("id asc").Find(&pos).Error; err != nil {
		return nil, err
	}
	return lo.Map(pos, func(po SchedulePo, _ int) *domain.Schedule {
		return po.ToDomain()
	}), nil
}
