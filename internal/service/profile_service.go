package service

import (
	"context"

	"cncraft/internal/models"
	"cncraft/internal/repository"

	"go.uber.org/zap"
)

// ProfileDetails mirrors the dashboard form: default delivery fields and
// notification preference. Empty strings clear the stored default. A nil
// EmailNotifications leaves the stored preference untouched, so callers
// that only save delivery info cannot flip an opt-out.
type ProfileDetails struct {
	DefaultPhoneNumber    string
	DefaultStreetAddress1 string
	DefaultStreetAddress2 string
	DefaultTownOrCity     string
	DefaultCounty         string
	DefaultPostcode       string
	DefaultCountry        string
	EmailNotifications    *bool
}

type ProfileService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewProfileService(repo *repository.Repository, log *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, log: log}
}

func (s *ProfileService) requireProfile(ctx context.Context) (*models.UserProfile, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return s.repo.Profiles.GetOrCreate(ctx, userID)
}

func (s *ProfileService) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	return s.requireProfile(ctx)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in ProfileDetails) (*models.UserProfile, error) {
	profile, err := s.requireProfile(ctx)
	if err != nil {
		return nil, err
	}

	profile.DefaultPhoneNumber = optional(in.DefaultPhoneNumber)
	profile.DefaultStreetAddress1 = optional(in.DefaultStreetAddress1)
	profile.DefaultStreetAddress2 = optional(in.DefaultStreetAddress2)
	profile.DefaultTownOrCity = optional(in.DefaultTownOrCity)
	profile.DefaultCounty = optional(in.DefaultCounty)
	profile.DefaultPostcode = optional(in.DefaultPostcode)
	profile.DefaultCountry = optional(in.DefaultCountry)
	if in.EmailNotifications != nil {
		profile.EmailNotifications = *in.EmailNotifications
	}

	if err := s.repo.Profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// OrderHistory lists the shopper's past orders, newest first.
func (s *ProfileService) OrderHistory(ctx context.Context) ([]models.Order, error) {
	profile, err := s.requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Orders.ListByProfile(ctx, profile.ID)
}

// OrderConfirmation re-surfaces a past order's confirmation by number.
func (s *ProfileService) OrderConfirmation(ctx context.Context, orderNumber string) (*models.Order, error) {
	if _, err := s.requireProfile(ctx); err != nil {
		return nil, err
	}
	order, err := s.repo.Orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
