package database

import (
	"context"
	"errors"

	"github.com/1rvyn/web-stories-editor/models"
	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Users) ByAuth0ID(ctx context.Context, sub string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth0_id = ?", sub).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Upsert creates the user for profile.Auth0ID or refreshes its profile fields.
func (r *Users) Upsert(ctx context.Context, profile models.User) (*models.User, error) {
	user, err := r.ByAuth0ID(ctx, profile.Auth0ID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		user = &profile
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	case err != nil:
		return nil, err
	}
	user.Email = profile.Email
	user.Name = profile.Name
	user.Picture = profile.Picture
	user.EmailVerified = profile.EmailVerified
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
