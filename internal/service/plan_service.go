// Service for plan management and usage limit checking
package service

import (
	"context"
	"time"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"
	"ai-storywriting-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type PlanService interface {
	// Public
	GetAllActivePlans(ctx context.Context) ([]*dto.PlanWithFeaturesResponse, error)

	// User
	GetUserUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error)
	CheckCanCreateProject(ctx context.Context, userId uuid.UUID) error
	CheckAssistUsage(ctx context.Context, userId uuid.UUID) error
	RecordAssistUsage(ctx context.Context, userId uuid.UUID, operation string, relatedId *uuid.UUID) error
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory) PlanService {
	return &planService{
		uowFactory: uowFactory,
	}
}

// GetAllActivePlans returns all active plans for the pricing modal
func (s *planService) GetAllActivePlans(ctx context.Context) ([]*dto.PlanWithFeaturesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.SubscriptionRepository().FindAllPlans(ctx, specification.ActivePlans{})
	if err != nil {
		return nil, err
	}

	var result []*dto.PlanWithFeaturesResponse
	for _, plan := range plans {
		result = append(result, &dto.PlanWithFeaturesResponse{
			Id:            plan.Id,
			Name:          plan.Name,
			Slug:          plan.Slug,
			Tagline:       plan.Tagline,
			Price:         plan.Price,
			BillingPeriod: string(plan.BillingPeriod),
			IsMostPopular: plan.IsMostPopular,
			Limits: dto.PlanLimitsDTO{
				MaxProjects: plan.MaxProjects,
				AssistDaily: plan.AssistDailyLimit,
			},
		})
	}

	return result, nil
}

// GetUserUsageStatus returns current usage vs limits for a user
func (s *planService) GetUserUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}

	plan, err := s.getUserPlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	projectCount, err := uow.ProjectRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	if err := s.checkAndResetDailyUsage(ctx, uow, user); err != nil {
		return nil, err
	}

	creditBalance, err := uow.CreditRepository().Balance(ctx, userId)
	if err != nil {
		return nil, err
	}

	// Daily usage resets at next midnight
	now := time.Now()
	resetTime := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	assistLimit := s.getEffectiveLimit(plan.AssistDailyLimit, user.AssistDailyLimitOverride)

	response := &dto.UsageStatusResponse{
		Plan: dto.PlanInfo{
			Id:   plan.Id,
			Name: plan.Name,
			Slug: plan.Slug,
		},
		Storage: dto.StorageLimits{
			Projects: dto.UsageLimit{
				Used:   int(projectCount),
				Limit:  plan.MaxProjects,
				CanUse: plan.MaxProjects < 0 || int(projectCount) < plan.MaxProjects,
			},
		},
		Daily: dto.DailyLimits{
			Assist: dto.UsageLimit{
				Used:     user.AssistDailyUsage,
				Limit:    assistLimit,
				CanUse:   s.canUseLimit(user.AssistDailyUsage, assistLimit),
				ResetsAt: &resetTime,
			},
		},
		CreditBalance:    creditBalance,
		UpgradeAvailable: plan.Slug == "free",
	}

	return response, nil
}

// checkAndResetDailyUsage zeroes the assist counter when the stored last
// reset falls on a different calendar day than today.
func (s *planService) checkAndResetDailyUsage(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) error {
	now := time.Now()
	lastReset := user.AssistDailyUsageLastReset

	if now.Year() != lastReset.Year() || now.Month() != lastReset.Month() || now.Day() != lastReset.Day() {
		user.AssistDailyUsage = 0
		user.AssistDailyUsageLastReset = now

		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

// CheckCanCreateProject checks if user can create a new project
func (s *planService) CheckCanCreateProject(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := s.getUserPlan(ctx, uow, userId)
	if err != nil {
		return err
	}

	// -1 means unlimited
	if plan.MaxProjects < 0 {
		return nil
	}

	count, err := uow.ProjectRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return err
	}

	if int(count) >= plan.MaxProjects {
		return &dto.LimitExceededError{
			Limit: plan.MaxProjects,
			Used:  int(count),
		}
	}

	return nil
}

// CheckAssistUsage verifies the user still has assist calls left today.
func (s *planService) CheckAssistUsage(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}

	plan, err := s.getUserPlan(ctx, uow, userId)
	if err != nil {
		return err
	}

	if err := s.checkAndResetDailyUsage(ctx, uow, user); err != nil {
		return err
	}

	limit := s.getEffectiveLimit(plan.AssistDailyLimit, user.AssistDailyLimitOverride)
	if s.canUseLimit(user.AssistDailyUsage, limit) {
		return nil
	}

	now := time.Now()
	resetTime := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return &dto.LimitExceededError{
		Limit:      limit,
		Used:       user.AssistDailyUsage,
		ResetAfter: resetTime,
	}
}

// RecordAssistUsage bumps the daily counter and writes a ledger entry for
// one completed assist call. Both writes share a transaction.
func (s *planService) RecordAssistUsage(ctx context.Context, userId uuid.UUID, operation string, relatedId *uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if err := s.checkAndResetDailyUsage(ctx, uow, user); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	user.AssistDailyUsage++
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return err
	}

	tx := &entity.CreditTransaction{
		Id:              uuid.New(),
		UserId:          userId,
		TransactionType: entity.CreditTransactionUsage,
		Amount:          -1,
		Operation:       &operation,
		RelatedId:       relatedId,
		CreatedAt:       time.Now(),
	}
	if err := uow.CreditRepository().Create(ctx, tx); err != nil {
		return err
	}

	return uow.Commit()
}

// getUserPlan gets the user's current plan or returns default free plan
func (s *planService) getUserPlan(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Plan, error) {
	subs, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	var activeSub *entity.Subscription
	for _, sub := range subs {
		// Priority 1: Active
		if sub.Status == entity.SubscriptionStatusActive && sub.CurrentPeriodEnd.After(time.Now()) {
			activeSub = sub
			break
		}
		// Priority 2: Canceled but still within billing period (access retained)
		if sub.Status == entity.SubscriptionStatusCanceled && sub.CurrentPeriodEnd.After(time.Now()) {
			activeSub = sub
			break
		}
		// Priority 3: Just paid (fallback)
		if sub.PaymentStatus == entity.PaymentStatusPaid && sub.CurrentPeriodEnd.After(time.Now()) {
			activeSub = sub
			break
		}
	}

	if activeSub != nil {
		plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: activeSub.PlanId})
		if err != nil {
			return nil, err
		}
		if plan != nil {
			return plan, nil
		}
	}

	// Return default free plan limits
	return &entity.Plan{
		Name:             "Free Plan",
		Slug:             "free",
		MaxProjects:      3,
		AssistDailyLimit: 10,
	}, nil
}

// Helper to get effective limit (override takes precedence)
func (s *planService) getEffectiveLimit(planLimit int, override *int) int {
	if override != nil {
		return *override
	}
	return planLimit
}

// Helper to check if usage is within limit
func (s *planService) canUseLimit(used int, limit int) bool {
	if limit < 0 {
		return true // Unlimited
	}
	return used < limit
}
