// FILE: internal/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	PenName          string    `json:"pen_name,omitempty"`
	Role             string    `json:"role"`
	Status           string    `json:"status"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	AssistDailyUsage int       `json:"assist_daily_usage"`
	CreatedAt        time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,min=3"`
	PenName  string `json:"pen_name" validate:"omitempty,max=120"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type UserBillingResponse struct {
	Id           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
}

type UserBillingUpdateRequest struct {
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"omitempty,max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	AddressLine1 string `json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `json:"address_line2" validate:"omitempty,max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"omitempty,max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,max=100"`
}

type SubscriptionStatusResponse struct {
	SubscriptionId   uuid.UUID `json:"subscription_id"`
	PlanName         string    `json:"plan_name"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
	AssistDailyLimit int       `json:"assist_daily_limit"`
	MaxProjects      int       `json:"max_projects"`
	IsActive         bool      `json:"is_active"`
}
