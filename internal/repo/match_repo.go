// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Match model.
//
// The status transition uses a conditional UPDATE so the pending check and
// the write are a single atomic statement against stored state: of two
// concurrent accept/decline calls on the same pending match, exactly one
// affects a row.
//
// Functions:
//
//   - CreateMatch(ctx, db, athleteID, recruiterID) -> *domain.Match, error
//     Inserts a new pending Match; ErrDuplicate when the pair already exists.
//
//   - GetMatch(ctx, db, id) -> *domain.Match, error
//     Fetches a single match by ID, or ErrNotFound if missing.
//
//   - TransitionMatchStatus(ctx, db, id, newStatus) -> *domain.Match, error
//     Conditionally moves a pending match to accepted/declined.
//     Returns ErrNotFound for an unknown id and ErrNotPending when the
//     match has already left the pending state.
//
//   - ListMatchesForAthlete / ListMatchesForRecruiter
//     Pure reads scoped to one side of the pair.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
)

// ErrNotPending indicates a status transition was attempted on a match that
// is no longer pending. Accepted and declined are terminal.
var ErrNotPending = errors.New("match is not pending")

// CreateMatch inserts a new Match in the pending state. The match ID is a
// randomly generated UUID and CreatedAt is set to UTC. Returns ErrDuplicate
// when a match between the same athlete and recruiter already exists.
func CreateMatch(ctx context.Context, db *gorm.DB, athleteID, recruiterID string) (*domain.Match, error) {
	m := &domain.Match{
		ID:          uuid.NewString(),
		AthleteID:   athleteID,
		RecruiterID: recruiterID,
		Status:      domain.MatchPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return m, nil
}

// GetMatch fetches a single match by its ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error) {
	var m domain.Match
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// TransitionMatchStatus atomically moves a match from pending to newStatus
// using a conditional UPDATE ("update only if current status is pending").
// When zero rows are affected the match is re-read to distinguish an unknown
// id (ErrNotFound) from a lost race or terminal state (ErrNotPending).
//
// On success the refreshed match row is returned.
func TransitionMatchStatus(ctx context.Context, db *gorm.DB, id, newStatus string) (*domain.Match, error) {
	res := db.WithContext(ctx).
		Model(&domain.Match{}).
		Where("id = ? AND status = ?", id, domain.MatchPending).
		Updates(map[string]any{"status": newStatus, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := GetMatch(ctx, db, id); err != nil {
			return nil, err // ErrNotFound or DB failure
		}
		return nil, ErrNotPending
	}
	return GetMatch(ctx, db, id)
}

// ListMatchesForAthlete returns all matches referencing athleteID, ordered
// by creation time descending. It returns an empty slice if there are none.
func ListMatchesForAthlete(ctx context.Context, db *gorm.DB, athleteID string) ([]domain.Match, error) {
	var out []domain.Match
	err := db.WithContext(ctx).
		Where("athlete_id = ?", athleteID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListMatchesForRecruiter returns all matches referencing recruiterID,
// ordered by creation time descending.
func ListMatchesForRecruiter(ctx context.Context, db *gorm.DB, recruiterID string) ([]domain.Match, error) {
	var out []domain.Match
	err := db.WithContext(ctx).
		Where("recruiter_id = ?", recruiterID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
