// Package services – ChatService
//
// This file implements the ChatService, which appends and reads the message
// history of a match room. Text is trimmed and length-capped, the match must
// exist, and both reads and writes are restricted to the two participants.
// Ordering is provided by the repository's monotonic sequence; this layer
// never reorders what it reads.
//
// Realtime fan-out is deliberately not performed here: callers broadcast via
// the hub only after Append has returned successfully.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
)

// ChatRepo defines the repository contract required by ChatService.
type ChatRepo interface {
	// GetMatch fetches the room's backing match.
	GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error)

	// GetAthlete fetches an athlete profile by ID.
	GetAthlete(ctx context.Context, db *gorm.DB, id string) (*domain.Athlete, error)

	// GetRecruiter fetches a recruiter profile by ID.
	GetRecruiter(ctx context.Context, db *gorm.DB, id string) (*domain.Recruiter, error)

	// CreateMessage appends a message; the store assigns the sequence.
	CreateMessage(db *gorm.DB, matchID, senderID, text string) (*domain.Message, error)

	// ListMessages returns the room history in sequence order.
	ListMessages(db *gorm.DB, matchID string, limit int) ([]domain.Message, error)

	// CountMessages returns the total number of messages for pagination.
	CountMessages(db *gorm.DB, matchID string) (int64, error)

	// ListMessagesPage returns a page of the room history in sequence order.
	ListMessagesPage(db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error)

	// MessagesStats returns count and max sequence for cache validation.
	MessagesStats(ctx context.Context, db *gorm.DB, matchID string) (int64, uint64, error)
}

// ChatService provides message append and history operations scoped to a
// match room.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the chat repository used by this service.
	Repo ChatRepo

	// MaxMessageLen caps stored message text by rune length.
	MaxMessageLen int
}

// NewChatService constructs a ChatService with a default message length cap.
func NewChatService(db *gorm.DB, r ChatRepo) *ChatService {
	return &ChatService{DB: db, Repo: r, MaxMessageLen: 2000}
}

// Append validates and persists one message in the given room. The sender
// must be a participant of the backing match. The returned message carries
// the store-assigned sequence number.
func (s *ChatService) Append(ctx context.Context, senderUserID, matchID, text string) (*domain.Message, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Append",
		trace.WithAttributes(attribute.String("match.id", matchID)),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxMessageLen > 0 && utf8.RuneCountInString(text) > s.MaxMessageLen {
		return nil, ErrMessageTooLong
	}

	if err := s.authorize(ctx, senderUserID, matchID); err != nil {
		return nil, err
	}
	return s.Repo.CreateMessage(s.DB, matchID, senderUserID, text)
}

// History returns the full room history in send order. The caller must be a
// participant of the backing match.
func (s *ChatService) History(ctx context.Context, callerUserID, matchID string) ([]domain.Message, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(attribute.String("match.id", matchID)),
	)
	defer span.End()

	if err := s.authorize(ctx, callerUserID, matchID); err != nil {
		return nil, err
	}
	out, err := s.Repo.ListMessages(s.DB, matchID, 0)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Message{}
	}
	return out, nil
}

// HistoryPage returns a page of the room history in send order, plus the
// total message count. Invalid page arguments fall back to defaults.
func (s *ChatService) HistoryPage(ctx context.Context, callerUserID, matchID string, page, pageSize int) ([]domain.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if err := s.authorize(ctx, callerUserID, matchID); err != nil {
		return nil, 0, err
	}

	total, err := s.Repo.CountMessages(s.DB, matchID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}
	items, err := s.Repo.ListMessagesPage(s.DB, matchID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Stats exposes message count and max sequence for conditional requests.
func (s *ChatService) Stats(ctx context.Context, matchID string) (int64, uint64, error) {
	return s.Repo.MessagesStats(ctx, s.DB, matchID)
}

// authorize verifies the match exists and the user owns one of its sides.
func (s *ChatService) authorize(ctx context.Context, userID, matchID string) error {
	m, err := s.Repo.GetMatch(ctx, s.DB, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	a, err := s.Repo.GetAthlete(ctx, s.DB, m.AthleteID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if a != nil && a.UserID == userID {
		return nil
	}
	r, err := s.Repo.GetRecruiter(ctx, s.DB, m.RecruiterID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if r != nil && r.UserID == userID {
		return nil
	}
	return ErrNotParticipant
}
