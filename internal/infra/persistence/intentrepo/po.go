package intentrepo

import (
	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

type TaskIntentPo struct {
	commonrepo.Mode
	Summary        string     `gorm:"column:summary;size:500;not null"`
	Details        string     `gorm:"column:details;type:text"`
	CreatorType    actor.Type `gorm:"column:creator_type;size:20;not null"`
	CreatorID      string     `gorm:"column:creator_id;size:100;not null;index"`
	CreatorChannel string     `gorm:"column:creator_channel;size:100"`
	OriginRef      string     `gorm:"column:origin_ref;size:255;index"`

	SupersededByIntentID *uint64 `gorm:"column:superseded_by_intent_id;index"`
}

func (p *TaskIntentPo) TableName() string {
	return "lifeops_task_intent"
}
