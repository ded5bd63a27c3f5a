package mapper

import (
	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}
	return &entity.Plan{
		Id:               p.Id,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		Tagline:          p.Tagline,
		Price:            p.Price,
		TaxRate:          p.TaxRate,
		BillingPeriod:    entity.BillingPeriod(p.BillingPeriod),
		MaxProjects:      p.MaxProjects,
		AssistDailyLimit: p.AssistDailyLimit,
		IsMostPopular:    p.IsMostPopular,
		IsActive:         p.IsActive,
		SortOrder:        p.SortOrder,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}
	return &model.Plan{
		Id:               p.Id,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		Tagline:          p.Tagline,
		Price:            p.Price,
		TaxRate:          p.TaxRate,
		BillingPeriod:    string(p.BillingPeriod),
		MaxProjects:      p.MaxProjects,
		AssistDailyLimit: p.AssistDailyLimit,
		IsMostPopular:    p.IsMostPopular,
		IsActive:         p.IsActive,
		SortOrder:        p.SortOrder,
	}
}

func (m *SubscriptionMapper) PlansToEntities(plans []*model.Plan) []*entity.Plan {
	entities := make([]*entity.Plan, len(plans))
	for i, p := range plans {
		entities[i] = m.PlanToEntity(p)
	}
	return entities
}

func (m *SubscriptionMapper) SubscriptionToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanId:                s.PlanId,
		Status:                entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart:    s.CurrentPeriodStart,
		CurrentPeriodEnd:      s.CurrentPeriodEnd,
		PaymentStatus:         entity.PaymentStatus(s.PaymentStatus),
		MidtransTransactionId: s.MidtransTransactionId,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanId:                s.PlanId,
		Status:                string(s.Status),
		CurrentPeriodStart:    s.CurrentPeriodStart,
		CurrentPeriodEnd:      s.CurrentPeriodEnd,
		PaymentStatus:         string(s.PaymentStatus),
		MidtransTransactionId: s.MidtransTransactionId,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}
