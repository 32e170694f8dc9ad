package intentrepo

import (
	"context"
	"errors"

	"github.com/google/wire"
	"github.com/samber/lo"
	"gorm.io/gorm"

	domain "github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *MysqlRepositoryImpl) Create(ctx context.Context, in *domain.TaskIntent) error {
	po := new(TaskIntentPo).FromDomain(in)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	in.ID = po.ID
	in.CreatedAt = po.CreatedAt
	in.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.TaskIntent, error) {
	var po TaskIntentPo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
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
	return r.Db(ctx).Model(&TaskIntentPo{}).Where("id = ?", id).Updates(values).Error
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter *domain.Filter, offset, limit int) ([]*domain.TaskIntent, int64, error) {
	query := r.Db(ctx).Model(&TaskIntentPo{})
	if filter.CreatorID.IsPresent() {
		query = query.Where("creator_id = ?", filter.CreatorID.MustGet())
	}
	if filter.OriginRef.IsPresent() {
		query = query.Where("origin_ref = ?", filter.OriginRef.MustGet())
	}
	if filter.Superseded.IsPresent() {
		if filter.Superseded.MustGet() {
			query = query.Where("superseded_by_intent_id IS NOT NULL")
		} else {
			query = query.Where("superseded_by_intent_id IS NULL")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []TaskIntentPo
	if err := query.Order("id asc").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po TaskIntentPo, _ int) *domain.TaskIntent {
		return po.ToDomain()
	}), total, nil
}
