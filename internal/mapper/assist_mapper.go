package mapper

import (
	"encoding/json"
	"time"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssistMapper struct{}

func NewAssistMapper() *AssistMapper {
	return &AssistMapper{}
}

func (m *AssistMapper) SessionToEntity(s *model.AssistSession) *entity.AssistSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.AssistSession{
		Id:        s.Id,
		ProjectId: s.ProjectId,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *AssistMapper) SessionToModel(s *entity.AssistSession) *model.AssistSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.AssistSession{
		Id:        s.Id,
		ProjectId: s.ProjectId,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *AssistMapper) MessageToEntity(msg *model.AssistMessage) *entity.AssistMessage {
	if msg == nil {
		return nil
	}

	var sources []entity.SourceUse
	if len(msg.Sources) > 0 {
		// Corrupt provenance JSON degrades to an answer without sources.
		_ = json.Unmarshal(msg.Sources, &sources)
	}

	return &entity.AssistMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      entity.AssistRole(msg.Role),
		Content:   msg.Content,
		Sources:   sources,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *AssistMapper) MessageToModel(msg *entity.AssistMessage) *model.AssistMessage {
	if msg == nil {
		return nil
	}

	var sources datatypes.JSON
	if len(msg.Sources) > 0 {
		if raw, err := json.Marshal(msg.Sources); err == nil {
			sources = datatypes.JSON(raw)
		}
	}

	return &model.AssistMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Sources:   sources,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *AssistMapper) MessagesToEntities(msgs []*model.AssistMessage) []*entity.AssistMessage {
	entities := make([]*entity.AssistMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

func (m *AssistMapper) SessionsToEntities(sessions []*model.AssistSession) []*entity.AssistSession {
	entities := make([]*entity.AssistSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.SessionToEntity(s)
	}
	return entities
}
