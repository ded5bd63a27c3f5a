package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"
	"ai-storywriting-be/internal/repository/unitofwork"

	"ai-storywriting-be/pkg/events"
	pktNats "ai-storywriting-be/pkg/nats"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
	UploadAvatar(ctx context.Context, userId uuid.UUID, file *multipart.FileHeader) (string, error)

	GetBillingInfo(ctx context.Context, userId uuid.UUID) (*dto.UserBillingResponse, error)
	UpdateBillingInfo(ctx context.Context, userId uuid.UUID, req dto.UserBillingUpdateRequest) error
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	avatarURL := ""
	if user.AvatarURL != nil {
		avatarURL = *user.AvatarURL
	}

	return &dto.UserProfileResponse{
		Id:               user.Id,
		Email:            user.Email,
		FullName:         user.FullName,
		PenName:          user.PenName,
		Role:             string(user.Role),
		Status:           string(user.Status),
		AvatarURL:        avatarURL,
		AssistDailyUsage: user.AssistDailyUsage,
		CreatedAt:        user.CreatedAt,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	repo := uow.UserRepository()
	user, err := repo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	if req.Email != "" && req.Email != user.Email {
		taken, err := repo.FindOne(ctx, specification.ByEmail{Email: req.Email})
		if err != nil {
			return err
		}
		if taken != nil {
			return errors.New("email already in use")
		}
		user.Email = req.Email
	}

	user.FullName = req.FullName
	user.PenName = req.PenName
	user.UpdatedAt = time.Now()
	return repo.Update(ctx, user)
}

func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "USER_DELETED",
			Data: map[string]interface{}{
				"user_id":     userId,
				"occurred_at": time.Now(),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish USER_DELETED event: %v\n", err)
		}
	}

	// Soft delete. Projects and their files stay recoverable until a
	// cleanup job reaps them.
	return uow.UserRepository().Delete(ctx, userId)
}

func (s *userService) UploadAvatar(ctx context.Context, userId uuid.UUID, file *multipart.FileHeader) (string, error) {
	if file.Size > 2*1024*1024 {
		return "", fmt.Errorf("file too large (max 2MB)")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	uploadDir := "./uploads/avatars"
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s_%d%s", userId.String(), time.Now().Unix(), ext)
	dstPath := filepath.Join(uploadDir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", err
	}

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	publicURL := fmt.Sprintf("%s/uploads/avatars/%s", baseURL, filename)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err = uow.UserRepository().UpdateAvatar(ctx, userId, publicURL)
	if err != nil {
		return "", err
	}

	return publicURL, nil
}

// GetBillingInfo returns the user's default billing address for the
// settings page. Nil without error means none saved yet.
func (s *userService) GetBillingInfo(ctx context.Context, userId uuid.UUID) (*dto.UserBillingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	billing, err := uow.SubscriptionRepository().FindDefaultBillingAddress(ctx, userId)
	if err != nil {
		return nil, err
	}
	if billing == nil {
		return nil, nil
	}

	return &dto.UserBillingResponse{
		Id:           billing.Id,
		FirstName:    billing.FirstName,
		LastName:     billing.LastName,
		Email:        billing.Email,
		Phone:        billing.Phone,
		AddressLine1: billing.AddressLine1,
		AddressLine2: billing.AddressLine2,
		City:         billing.City,
		State:        billing.State,
		PostalCode:   billing.PostalCode,
		Country:      billing.Country,
	}, nil
}

func (s *userService) UpdateBillingInfo(ctx context.Context, userId uuid.UUID, req dto.UserBillingUpdateRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	billing, err := uow.SubscriptionRepository().FindDefaultBillingAddress(ctx, userId)
	if err != nil {
		return err
	}

	if billing == nil {
		billing = &entity.BillingAddress{
			Id:        uuid.New(),
			UserId:    userId,
			IsDefault: true,
			CreatedAt: time.Now(),
		}
	}

	billing.FirstName = req.FirstName
	billing.LastName = req.LastName
	billing.Email = req.Email
	billing.Phone = req.Phone
	billing.AddressLine1 = req.AddressLine1
	billing.AddressLine2 = req.AddressLine2
	billing.City = req.City
	billing.State = req.State
	billing.PostalCode = req.PostalCode
	billing.Country = req.Country
	billing.UpdatedAt = time.Now()

	return uow.SubscriptionRepository().SaveBillingAddress(ctx, billing)
}
