// Package services – AuthService
//
// This file implements account signup and login. Passwords are hashed with
// bcrypt and never leave this layer; successful calls return a signed access
// token issued by the injected TokenIssuer. Signup also creates the role
// profile (athlete or recruiter) in the same transaction as the user row so a
// half-registered account can never be observed.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
)

// MinPasswordLen is the minimum accepted password length in runes.
const MinPasswordLen = 8

// TokenIssuer mints signed access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// AuthRepo defines the repository contract required by AuthService.
type AuthRepo interface {
	// CreateUser inserts a new account row.
	CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash, role string) (*domain.User, error)

	// GetUser fetches an account by ID.
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)

	// GetUserByEmail fetches an account by its unique email.
	GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)

	// CreateAthlete inserts the athlete profile owned by a user.
	CreateAthlete(ctx context.Context, db *gorm.DB, userID, sport, position, bio string) (*domain.Athlete, error)

	// CreateRecruiter inserts the recruiter profile owned by a user.
	CreateRecruiter(ctx context.Context, db *gorm.DB, userID, company, bio string) (*domain.Recruiter, error)
}

// SignupInput carries the fields accepted at registration. Sport and Position
// apply to athletes; Company applies to recruiters.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Sport    string
	Position string
	Company  string
	Bio      string
}

// AuthService provides signup, login, and account lookup.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the account repository used by this service.
	Repo AuthRepo
	// Tokens issues access tokens on successful signup and login.
	Tokens TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, r AuthRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{DB: db, Repo: r, Tokens: tokens}
}

// Signup registers a new account with its role profile and returns the user
// together with a fresh access token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Signup",
		trace.WithAttributes(attribute.String("user.role", in.Role)),
	)
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	if in.Role != domain.RoleAthlete && in.Role != domain.RoleRecruiter {
		return nil, "", ErrInvalidRole
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, "", ErrInvalidCredentials
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLen {
		return nil, "", ErrWeakPassword
	}
	if in.Role == domain.RoleAthlete && strings.TrimSpace(in.Sport) == "" {
		return nil, "", ErrSportRequired
	}
	if in.Role == domain.RoleRecruiter && strings.TrimSpace(in.Company) == "" {
		return nil, "", ErrCompanyRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	var user *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := s.Repo.CreateUser(ctx, tx, in.Name, in.Email, string(hash), in.Role)
		if err != nil {
			return err
		}
		switch in.Role {
		case domain.RoleAthlete:
			if _, err := s.Repo.CreateAthlete(ctx, tx, u.ID, in.Sport, in.Position, in.Bio); err != nil {
				return err
			}
		case domain.RoleRecruiter:
			if _, err := s.Repo.CreateRecruiter(ctx, tx, u.ID, in.Company, in.Bio); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies an email/password pair and returns the user with a fresh
// access token. Unknown emails and bad passwords are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Get returns the account with the given ID.
func (s *AuthService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
