package intentrepo

import (
	domain "github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

func (p *TaskIntentPo) FromDomain(in *domain.TaskIntent) *TaskIntentPo {
	return &TaskIntentPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		Summary:              in.Summary,
		Details:              in.Details,
		CreatorType:          in.CreatorType,
		CreatorID:            in.CreatorID,
		CreatorChannel:       in.CreatorChannel,
		OriginRef:            in.OriginRef,
		SupersededByIntentID: in.SupersededByIntentID,
	}
}

func (p *TaskIntentPo) ToDomain() *domain.TaskIntent {
	return &domain.TaskIntent{
		ID:                   p.ID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		Summary:              p.Summary,
		Details:              p.Details,
		CreatorType:          p.CreatorType,
		CreatorID:            p.CreatorID,
		CreatorChannel:       p.CreatorChannel,
		OriginRef:            p.OriginRef,
		SupersededByIntentID: p.SupersededByIntentID,
	}
}

func patchToMap(input *domain.Patch) map[string]any {
	var values = make(map[string]any)

	if input.SupersededByIntentID != nil {
		values["superseded_by_intent_id"] = *input.SupersededByIntentID
	}

	return values
}
