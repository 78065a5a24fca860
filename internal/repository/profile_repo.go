package repository

import (
	"context"
	"errors"

	"cncraft/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	// GetOrCreate mirrors the account signal that provisions a profile with
	// the account: a profile always exists for an authenticated user.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	Update(ctx context.Context, p *models.UserProfile) error
}

type profileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) ProfileRepo { return &profileRepo{db: db} }

func (r *profileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *profileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	p, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	p = &models.UserProfile{UserID: userID}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepo) Update(ctx context.Context, p *models.UserProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
