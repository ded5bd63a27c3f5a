package mapper

import (
	"encoding/json"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/model"

	"gorm.io/datatypes"
)

type ActivityMapper struct{}

func NewActivityMapper() *ActivityMapper {
	return &ActivityMapper{}
}

func (m *ActivityMapper) ToEntity(a *model.Activity) *entity.Activity {
	if a == nil {
		return nil
	}

	var payload map[string]interface{}
	if len(a.Payload) > 0 {
		_ = json.Unmarshal(a.Payload, &payload)
	}

	return &entity.Activity{
		Id:        a.Id,
		ProjectId: a.ProjectId,
		UserId:    a.UserId,
		Kind:      a.Kind,
		Message:   a.Message,
		Payload:   payload,
		CreatedAt: a.CreatedAt,
	}
}

func (m *ActivityMapper) ToModel(a *entity.Activity) *model.Activity {
	if a == nil {
		return nil
	}

	var payload datatypes.JSON
	if len(a.Payload) > 0 {
		if raw, err := json.Marshal(a.Payload); err == nil {
			payload = datatypes.JSON(raw)
		}
	}

	return &model.Activity{
		Id:        a.Id,
		ProjectId: a.ProjectId,
		UserId:    a.UserId,
		Kind:      a.Kind,
		Message:   a.Message,
		Payload:   payload,
		CreatedAt: a.CreatedAt,
	}
}

func (m *ActivityMapper) ToEntities(activities []*model.Activity) []*entity.Activity {
	entities := make([]*entity.Activity, len(activities))
	for i, a := range activities {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
