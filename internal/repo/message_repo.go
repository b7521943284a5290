// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
)

// CreateMessage inserts a new message row. Seq is assigned by the database
// at insert time and orders the room's history.
func CreateMessage(db *gorm.DB, matchID, senderID, text string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	return m, db.Create(m).Error
}

// ListMessages returns a room's messages ordered deterministically (Seq ASC).
func ListMessages(db *gorm.DB, matchID string, limit int) ([]domain.Message, error) {
	var out []domain.Message
	q := db.Where("match_id = ?", matchID).Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(db *gorm.DB, matchID string) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM messages WHERE match_id = ? AND deleted_at IS NULL", matchID).Scan(&total).Error
	return total, err
}

// ListMessagesPage returns a paginated slice ordered (Seq ASC).
func ListMessagesPage(db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.
		Where("match_id = ?", matchID).
		Order("seq ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetMessage fetches a message by its UUID.
func GetMessage(db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MessagesStats returns aggregate metadata for messages within a given
// match: the total number of rows and the maximum Seq among them. It is
// used for conditional responses (ETag) on the history endpoint. When the
// room has no messages, the returned count and maxSeq are 0.
func MessagesStats(ctx context.Context, db *gorm.DB, matchID string) (count int64, maxSeq uint64, err error) {
	q := db.WithContext(ctx).Model(&domain.Message{}).Where("match_id = ?", matchID)

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		Seq uint64
	}
	if err = q.Select("seq").Order("seq DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.Seq, nil
}
