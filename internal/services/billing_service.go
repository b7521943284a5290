// Package services – BillingService
//
// Recruiter subscriptions unlock contact features in the client. The flow is
// deliberately simple: create a provider-hosted checkout session, mark the
// account subscribed once the provider confirms. Confirm is exposed
// separately so a payment webhook can drive it.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/billing"
	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
)

// BillingRepo defines the repository contract required by BillingService.
type BillingRepo interface {
	// GetUser fetches an account by ID.
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)

	// MarkSubscribed flips the account subscription flag.
	MarkSubscribed(ctx context.Context, db *gorm.DB, id string, subscribed bool) error
}

// BillingService starts and confirms subscription checkouts.
type BillingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the account repository used by this service.
	Repo BillingRepo
	// Provider creates hosted checkout sessions.
	Provider billing.Provider
}

// NewBillingService constructs a BillingService.
func NewBillingService(db *gorm.DB, r BillingRepo, p billing.Provider) *BillingService {
	return &BillingService{DB: db, Repo: r, Provider: p}
}

// StartCheckout creates a checkout session for the user's subscription.
func (s *BillingService) StartCheckout(ctx context.Context, userID string) (*billing.CheckoutSession, error) {
	tr := otel.Tracer("services/BillingService")
	ctx, span := tr.Start(ctx, "StartCheckout",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	u, err := s.Repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Provider.CreateCheckoutSession(ctx, u.ID, u.Email)
}

// Confirm marks the account as subscribed after the provider reports a
// completed checkout.
func (s *BillingService) Confirm(ctx context.Context, userID string) error {
	if err := s.Repo.MarkSubscribed(ctx, s.DB, userID, true); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
