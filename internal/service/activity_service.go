package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/pkg/logger"
	"ai-storywriting-be/internal/repository/specification"
	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/pkg/events"
	pktNats "ai-storywriting-be/pkg/nats"

	"github.com/google/uuid"
)

// ActivityDelivery pushes feed entries to connected clients in real time.
// Implemented by the WebSocket hub.
type ActivityDelivery interface {
	Send(userID uuid.UUID, activity dto.ActivityResponse)
}

type IActivityService interface {
	Start()
	GetProjectActivity(ctx context.Context, userId, projectId uuid.UUID, limit, offset int) ([]*dto.ActivityResponse, int64, error)
}

// activityService turns domain events into a per-project activity feed.
// It runs as a durable NATS consumer so feed rows survive restarts.
type activityService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   ActivityDelivery
	logger     logger.ILogger
}

func NewActivityService(uowFactory unitofwork.RepositoryFactory, sub *pktNats.Subscriber, delivery ActivityDelivery, log logger.ILogger) IActivityService {
	return &activityService{
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// activityTemplates maps event types to feed lines. Placeholders are payload
// keys. Event types without an entry never reach the feed.
var activityTemplates = map[string]string{
	"PROJECT_CREATED":      `created project "{title}"`,
	"PROJECT_DELETED":      `deleted project "{title}"`,
	"CHAPTER_CREATED":      `added chapter "{title}"`,
	"CHAPTER_DELETED":      `deleted chapter "{title}"`,
	"SCENE_CREATED":        `added scene "{title}"`,
	"SCENE_DELETED":        `deleted scene "{title}"`,
	"SCENES_SPLIT_APPLIED": `split a chapter into {count} scenes`,
	"NOTE_CREATED":         `added note "{title}"`,
	"NOTE_DELETED":         `deleted note "{title}"`,
	"CHARACTER_CREATED":    `added character "{name}"`,
	"CHARACTER_DELETED":    `deleted character "{name}"`,
}

func (s *activityService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("ActivityService", "No event subscriber configured, activity feed disabled", nil)
		return
	}

	err := s.subscriber.Subscribe("events.>", "activity-feed-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("ActivityService", "Failed to start activity subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("ActivityService", "Activity feed worker listening on events.>", nil)
}

func (s *activityService) handleEvent(ctx context.Context, event events.Event) error {
	// The subject carries the stream prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	template, ok := activityTemplates[typeCode]
	if !ok {
		// Account level events (logins, billing) stay out of project feeds.
		return nil
	}

	payload := event.Payload()

	projectId, okProject := payloadUUID(payload, "project_id")
	userId, okUser := payloadUUID(payload, "user_id")
	if !okProject || !okUser {
		s.logger.Warn("ActivityService", fmt.Sprintf("Event %s missing project_id or user_id, skipping", typeCode), nil)
		return nil
	}

	activity := entity.Activity{
		Id:        uuid.New(),
		ProjectId: projectId,
		UserId:    userId,
		Kind:      typeCode,
		Message:   renderActivityMessage(template, payload),
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ActivityRepository().Create(ctx, &activity); err != nil {
		s.logger.Error("ActivityService", "Failed to save activity", map[string]interface{}{
			"error": err,
			"kind":  typeCode,
		})
		// Returning the error makes NATS redeliver.
		return err
	}

	if s.delivery != nil {
		s.delivery.Send(userId, activityDTO(&activity))
	}

	return nil
}

func (s *activityService) GetProjectActivity(ctx context.Context, userId, projectId uuid.UUID, limit, offset int) ([]*dto.ActivityResponse, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, 0, err
	}
	if project == nil {
		return nil, 0, errors.New("project not found or access denied")
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	total, err := uow.ActivityRepository().Count(ctx, specification.ByProjectID{ProjectID: projectId})
	if err != nil {
		return nil, 0, err
	}

	rows, err := uow.ActivityRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, 0, err
	}

	res := make([]*dto.ActivityResponse, 0, len(rows))
	for _, a := range rows {
		d := activityDTO(a)
		res = append(res, &d)
	}
	return res, total, nil
}

func payloadUUID(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func renderActivityMessage(template string, payload map[string]interface{}) string {
	msg := template
	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		msg = strings.ReplaceAll(msg, placeholder, fmt.Sprintf("%v", v))
	}
	return msg
}

func activityDTO(a *entity.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		Id:        a.Id,
		ProjectId: a.ProjectId,
		Kind:      a.Kind,
		Message:   a.Message,
		Payload:   a.Payload,
		CreatedAt: a.CreatedAt,
	}
}
