// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Athlete
// and Recruiter profile models.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
)

// CreateAthlete inserts a new athlete profile owned by userID. Returns
// ErrDuplicate when the user already has an athlete profile.
func CreateAthlete(ctx context.Context, db *gorm.DB, userID, sport, position, bio string) (*domain.Athlete, error) {
	a := &domain.Athlete{
		ID:        uuid.NewString(),
		UserID:    userID,
		Sport:     sport,
		Position:  position,
		Bio:       bio,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return a, nil
}

// CreateRecruiter inserts a new recruiter profile owned by userID. Returns
// ErrDuplicate when the user already has a recruiter profile.
func CreateRecruiter(ctx context.Context, db *gorm.DB, userID, company, bio string) (*domain.Recruiter, error) {
	r := &domain.Recruiter{
		ID:        uuid.NewString(),
		UserID:    userID,
		Company:   company,
		Bio:       bio,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r, nil
}

// GetAthlete fetches an athlete profile by ID, or ErrNotFound if missing.
func GetAthlete(ctx context.Context, db *gorm.DB, id string) (*domain.Athlete, error) {
	var a domain.Athlete
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAthleteByUser fetches the athlete profile owned by userID.
func GetAthleteByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Athlete, error) {
	var a domain.Athlete
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetRecruiter fetches a recruiter profile by ID, or ErrNotFound if missing.
func GetRecruiter(ctx context.Context, db *gorm.DB, id string) (*domain.Recruiter, error) {
	var r domain.Recruiter
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRecruiterByUser fetches the recruiter profile owned by userID.
func GetRecruiterByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Recruiter, error) {
	var r domain.Recruiter
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// CountAthletes returns the total number of athlete profiles for pagination.
func CountAthletes(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Athlete{}).Count(&total).Error
	return total, err
}

// ListAthletesPage returns a paginated slice of athlete profiles ordered by
// creation time descending (newest first).
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListAthletesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Athlete, error) {
	var out []domain.Athlete
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListAthletes returns all athlete profiles (discovery/index rebuilds).
func ListAthletes(ctx context.Context, db *gorm.DB) ([]domain.Athlete, error) {
	var out []domain.Athlete
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// UpdateAthlete updates the mutable fields of an athlete profile, enforcing
// user ownership. Returns ErrNotFound when the profile does not exist or is
// not owned by userID.
func UpdateAthlete(ctx context.Context, db *gorm.DB, id, userID, sport, position, bio string) error {
	res := db.WithContext(ctx).
		Model(&domain.Athlete{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"sport": sport, "position": position, "bio": bio})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateRecruiter updates the mutable fields of a recruiter profile,
// enforcing user ownership. Returns ErrNotFound when the profile does not
// exist or is not owned by userID.
func UpdateRecruiter(ctx context.Context, db *gorm.DB, id, userID, company, bio string) error {
	res := db.WithContext(ctx).
		Model(&domain.Recruiter{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"company": company, "bio": bio})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
