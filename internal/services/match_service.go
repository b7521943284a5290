// Package services – MatchService
//
// This file implements the MatchService, which manages the match lifecycle
// between athletes and recruiters. A match is created in the pending state by
// a recruiter and resolves exactly once to accepted or declined. The
// resolution is delegated to a conditional repository update so that
// concurrent transitions cannot both succeed.
//
// Observability: public methods are OpenTelemetry-instrumented. Realtime
// notifications are published only after the state change is persisted.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
)

// MatchRepo defines the repository contract required by MatchService.
type MatchRepo interface {
	// CreateMatch inserts a pending match between the given profiles.
	CreateMatch(ctx context.Context, db *gorm.DB, athleteID, recruiterID string) (*domain.Match, error)

	// GetMatch fetches a match by ID.
	GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error)

	// TransitionMatchStatus applies pending → newStatus atomically.
	TransitionMatchStatus(ctx context.Context, db *gorm.DB, id, newStatus string) (*domain.Match, error)

	// ListMatchesForAthlete returns every match where the athlete is a side.
	ListMatchesForAthlete(ctx context.Context, db *gorm.DB, athleteID string) ([]domain.Match, error)

	// ListMatchesForRecruiter returns every match where the recruiter is a side.
	ListMatchesForRecruiter(ctx context.Context, db *gorm.DB, recruiterID string) ([]domain.Match, error)

	// GetAthlete fetches an athlete profile by ID.
	GetAthlete(ctx context.Context, db *gorm.DB, id string) (*domain.Athlete, error)

	// GetRecruiter fetches a recruiter profile by ID.
	GetRecruiter(ctx context.Context, db *gorm.DB, id string) (*domain.Recruiter, error)

	// GetAthleteByUser fetches the athlete profile owned by a user.
	GetAthleteByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Athlete, error)

	// GetRecruiterByUser fetches the recruiter profile owned by a user.
	GetRecruiterByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Recruiter, error)
}

// MatchService coordinates match creation, resolution, and listing. It
// enforces participant authorization and publishes realtime events after
// successful persistence.
type MatchService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the match repository used by this service.
	Repo MatchRepo
	// Notifier receives events after persistence; nil disables publishing.
	Notifier Notifier
}

// NewMatchService constructs a MatchService.
func NewMatchService(db *gorm.DB, r MatchRepo, n Notifier) *MatchService {
	return &MatchService{DB: db, Repo: r, Notifier: n}
}

// Create opens a pending match between an athlete and a recruiter. The caller
// must own the recruiter profile; recruiters initiate interest, athletes
// respond. Both participants are notified once the row is persisted.
func (s *MatchService) Create(ctx context.Context, callerUserID, athleteID, recruiterID string) (*domain.Match, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("athlete.id", athleteID),
			attribute.String("recruiter.id", recruiterID),
		),
	)
	defer span.End()

	rec, err := s.Repo.GetRecruiter(ctx, s.DB, recruiterID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecruiterNotFound
		}
		return nil, err
	}
	if rec.UserID != callerUserID {
		return nil, ErrNotParticipant
	}

	ath, err := s.Repo.GetAthlete(ctx, s.DB, athleteID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}

	m, err := s.Repo.CreateMatch(ctx, s.DB, athleteID, recruiterID)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateMatch
		}
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.PublishMatchEvent(*m, ath.UserID, rec.UserID)
	}
	return m, nil
}

// SetStatus resolves a pending match to accepted or declined. Only a
// participant may resolve, and a match that already left pending is reported
// as resolved without being modified. The returned match reflects the
// persisted state.
func (s *MatchService) SetStatus(ctx context.Context, callerUserID, matchID, status string) (*domain.Match, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "SetStatus",
		trace.WithAttributes(
			attribute.String("match.id", matchID),
			attribute.String("match.status", status),
		),
	)
	defer span.End()

	if status != domain.MatchAccepted && status != domain.MatchDeclined {
		return nil, ErrInvalidStatus
	}

	m, err := s.Repo.GetMatch(ctx, s.DB, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	athleteUserID, recruiterUserID, err := s.participants(ctx, m)
	if err != nil {
		return nil, err
	}
	if callerUserID != athleteUserID && callerUserID != recruiterUserID {
		return nil, ErrNotParticipant
	}

	updated, err := s.Repo.TransitionMatchStatus(ctx, s.DB, matchID, status)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotPending):
			return nil, ErrMatchResolved
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.PublishMatchEvent(*updated, athleteUserID, recruiterUserID)
	}
	return updated, nil
}

// Get returns a match by ID.
func (s *MatchService) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	m, err := s.Repo.GetMatch(ctx, s.DB, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListForUser returns every match the user participates in, resolved through
// whichever profile the user owns. Users without a profile see an empty list.
func (s *MatchService) ListForUser(ctx context.Context, userID string) ([]domain.Match, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "ListForUser",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if a, err := s.Repo.GetAthleteByUser(ctx, s.DB, userID); err == nil {
		return s.Repo.ListMatchesForAthlete(ctx, s.DB, a.ID)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if r, err := s.Repo.GetRecruiterByUser(ctx, s.DB, userID); err == nil {
		return s.Repo.ListMatchesForRecruiter(ctx, s.DB, r.ID)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	return []domain.Match{}, nil
}

// IsParticipant reports whether the user owns either side of the match.
func (s *MatchService) IsParticipant(ctx context.Context, userID string, m *domain.Match) (bool, error) {
	athleteUserID, recruiterUserID, err := s.participants(ctx, m)
	if err != nil {
		return false, err
	}
	return userID == athleteUserID || userID == recruiterUserID, nil
}

// participants resolves the owning user IDs of both sides of a match.
func (s *MatchService) participants(ctx context.Context, m *domain.Match) (athleteUserID, recruiterUserID string, err error) {
	a, err := s.Repo.GetAthlete(ctx, s.DB, m.AthleteID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", "", ErrAthleteNotFound
		}
		return "", "", err
	}
	r, err := s.Repo.GetRecruiter(ctx, s.DB, m.RecruiterID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", "", ErrRecruiterNotFound
		}
		return "", "", err
	}
	return a.UserID, r.UserID, nil
}
