package reviewrepo

import (
	"context"
	"errors"

	"github.com/google/wire"
	"github.com/samber/lo"
	"gorm.io/gorm"

	domain "github.com/lifeops/scheduler/internal/biz/review"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

// CreateOutput writes the snapshot and its items in one transaction, so a
// partially written review never becomes visible.
func (r *MysqlRepositoryImpl) CreateOutput(ctx context.Context, output *domain.Output) error {
	return r.Execute(ctx, func(ctx context.Context) error {
		po := new(ReviewOutputPo).FromDomain(output)
		if err := r.Db(ctx).Create(po).Error; err != nil {
			return err
		}
		output.ID = po.ID
		output.CreatedAt = po.CreatedAt

		for _, item := range output.Items {
			item.OutputID = po.ID
			itemPo := new(ReviewItemPo).FromDomain(item)
			if err := r.Db(ctx).Create(itemPo).Error; err != nil {
				return err
			}
			item.ID = itemPo.ID
			item.CreatedAt = itemPo.CreatedAt
		}
		return nil
	})
}

func (r *MysqlRepositoryImpl) GetOutput(ctx context.Context, id uint64) (*domain.Output, error) {
	var po ReviewOutputPo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var itemPos []ReviewItemPo
	if err := r.Db(ctx).Model(&ReviewItemPo{}).Where("output_id = ?", id).Order("id asc").Find(&itemPos).Error; err != nil {
		return nil, err
	}

	output := po.ToDomain()
	output.Items = lo.Map(itemPos, func(po ReviewItemPo, _ int) *domain.Item {
		return po.ToDomain()
	})
	return output, nil
}

func (r *MysqlRepositoryImpl) ListOutputs(ctx context.Context, offset, limit int) ([]*domain.Output, int64, error) {
	query := r.Db(ctx).Model(&ReviewOutputPo{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []ReviewOutputPo
	if err := query.Order("id desc").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po ReviewOutputPo, _ int) *domain.Output {
		return po.ToDomain()
	}), total, nil
}
