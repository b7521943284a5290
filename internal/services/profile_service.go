// Package services – ProfileService
//
// This file implements the ProfileService, which reads and updates athlete
// and recruiter profiles. Profile reads join the owning user at read time so
// responses carry the display name without relying on ORM eager loading.
// Sport names are normalized to title case so discovery queries are not
// case-sensitive on entry.
//
// The service also feeds the in-memory athlete discovery catalog, rebuilding
// it after profile mutations.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
	"github.com/talentscout/talentscout-server/internal/search"
)

// ProfileRepo defines the repository contract required by ProfileService.
type ProfileRepo interface {
	// GetAthlete fetches an athlete profile by ID.
	GetAthlete(ctx context.Context, db *gorm.DB, id string) (*domain.Athlete, error)

	// GetRecruiter fetches a recruiter profile by ID.
	GetRecruiter(ctx context.Context, db *gorm.DB, id string) (*domain.Recruiter, error)

	// GetAthleteByUser fetches the athlete profile owned by a user.
	GetAthleteByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Athlete, error)

	// GetRecruiterByUser fetches the recruiter profile owned by a user.
	GetRecruiterByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Recruiter, error)

	// GetUser fetches the owning account of a profile.
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)

	// CountAthletes returns the total athlete count for pagination.
	CountAthletes(ctx context.Context, db *gorm.DB) (int64, error)

	// ListAthletesPage returns a page of athlete profiles.
	ListAthletesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Athlete, error)

	// ListAthletes returns every athlete profile (catalog rebuilds).
	ListAthletes(ctx context.Context, db *gorm.DB) ([]domain.Athlete, error)

	// UpdateAthlete mutates an athlete profile owned by userID.
	UpdateAthlete(ctx context.Context, db *gorm.DB, id, userID, sport, position, bio string) error

	// UpdateRecruiter mutates a recruiter profile owned by userID.
	UpdateRecruiter(ctx context.Context, db *gorm.DB, id, userID, company, bio string) error
}

// AthleteView is an athlete profile joined with its owner's public fields.
type AthleteView struct {
	domain.Athlete
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// RecruiterView is a recruiter profile joined with its owner's public fields.
type RecruiterView struct {
	domain.Recruiter
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// ProfileService provides profile reads, ownership-checked updates, and
// athlete discovery search.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the profile repository used by this service.
	Repo ProfileRepo
	// Catalog is the in-memory discovery index; nil disables search.
	Catalog *search.Catalog

	titler cases.Caser
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB, r ProfileRepo, catalog *search.Catalog) *ProfileService {
	return &ProfileService{
		DB:      db,
		Repo:    r,
		Catalog: catalog,
		titler:  cases.Title(language.English),
	}
}

// GetAthlete returns one athlete joined with its owner.
func (s *ProfileService) GetAthlete(ctx context.Context, id string) (*AthleteView, error) {
	a, err := s.Repo.GetAthlete(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return s.athleteView(ctx, a)
}

// GetRecruiter returns one recruiter joined with its owner.
func (s *ProfileService) GetRecruiter(ctx context.Context, id string) (*RecruiterView, error) {
	r, err := s.Repo.GetRecruiter(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecruiterNotFound
		}
		return nil, err
	}
	u, err := s.Repo.GetUser(ctx, s.DB, r.UserID)
	if err != nil {
		return nil, err
	}
	return &RecruiterView{Recruiter: *r, Name: u.Name, Avatar: u.Avatar}, nil
}

// ListAthletesPage returns a page of athletes joined with their owners, plus
// the total athlete count. Invalid page arguments fall back to defaults.
func (s *ProfileService) ListAthletesPage(ctx context.Context, page, pageSize int) ([]AthleteView, int64, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "ListAthletesPage",
		trace.WithAttributes(attribute.Int("page", page)),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := s.Repo.CountAthletes(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []AthleteView{}, 0, nil
	}

	items, err := s.Repo.ListAthletesPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AthleteView, 0, len(items))
	for i := range items {
		v, err := s.athleteView(ctx, &items[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, total, nil
}

// UpdateAthlete mutates the athlete profile, enforcing ownership. The sport
// is required and normalized to title case. The discovery catalog is
// refreshed after a successful write.
func (s *ProfileService) UpdateAthlete(ctx context.Context, callerUserID, athleteID, sport, position, bio string) (*AthleteView, error) {
	sport = s.titler.String(strings.ToLower(strings.TrimSpace(sport)))
	if sport == "" {
		return nil, ErrSportRequired
	}
	err := s.Repo.UpdateAthlete(ctx, s.DB, athleteID, callerUserID, sport, strings.TrimSpace(position), strings.TrimSpace(bio))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if err := s.RebuildCatalog(ctx); err != nil {
		return nil, err
	}
	return s.GetAthlete(ctx, athleteID)
}

// UpdateRecruiter mutates the recruiter profile, enforcing ownership. The
// company is required.
func (s *ProfileService) UpdateRecruiter(ctx context.Context, callerUserID, recruiterID, company, bio string) (*RecruiterView, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, ErrCompanyRequired
	}
	err := s.Repo.UpdateRecruiter(ctx, s.DB, recruiterID, callerUserID, company, strings.TrimSpace(bio))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecruiterNotFound
		}
		return nil, err
	}
	return s.GetRecruiter(ctx, recruiterID)
}

// SearchAthletes ranks athletes against a free-text query using the
// discovery catalog and returns the joined views in score order.
func (s *ProfileService) SearchAthletes(ctx context.Context, query string, k int) ([]AthleteView, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "SearchAthletes",
		trace.WithAttributes(attribute.Int("search.k", k)),
	)
	defer span.End()

	if s.Catalog == nil {
		return []AthleteView{}, nil
	}
	if k <= 0 {
		k = 10
	}

	out := []AthleteView{}
	for _, hit := range s.Catalog.TopK(query, k) {
		a, err := s.Repo.GetAthlete(ctx, s.DB, hit.AthleteID)
		if err != nil {
			// The catalog may briefly trail the store; skip vanished rows.
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, err
		}
		v, err := s.athleteView(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// RebuildCatalog reloads every athlete into the discovery catalog. Safe to
// call concurrently with searches.
func (s *ProfileService) RebuildCatalog(ctx context.Context) error {
	if s.Catalog == nil {
		return nil
	}
	athletes, err := s.Repo.ListAthletes(ctx, s.DB)
	if err != nil {
		return err
	}
	docs := make([]search.Doc, 0, len(athletes))
	for i := range athletes {
		a := &athletes[i]
		name := ""
		if u, err := s.Repo.GetUser(ctx, s.DB, a.UserID); err == nil {
			name = u.Name
		}
		docs = append(docs, search.Doc{
			AthleteID: a.ID,
			Text:      strings.Join([]string{name, a.Sport, a.Position, a.Bio}, " "),
		})
	}
	s.Catalog.Rebuild(docs)
	return nil
}

func (s *ProfileService) athleteView(ctx context.Context, a *domain.Athlete) (*AthleteView, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, a.UserID)
	if err != nil {
		return nil, err
	}
	return &AthleteView{Athlete: *a, Name: u.Name, Avatar: u.Avatar}, nil
}
