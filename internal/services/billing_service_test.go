package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/billing"
	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
)

type fakeBillingRepo struct {
	users map[string]*domain.User
}

func (r *fakeBillingRepo) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeBillingRepo) MarkSubscribed(ctx context.Context, db *gorm.DB, id string, subscribed bool) error {
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.IsSubscribed = subscribed
	return nil
}

func TestStartCheckout(t *testing.T) {
	r := &fakeBillingRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "dana@example.com"},
	}}
	s := NewBillingService(nil, r, &billing.HostedProvider{BaseURL: "https://pay.example.com/checkout"})

	sess, err := s.StartCheckout(context.Background(), "u1")
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if sess.ID == "" || !strings.Contains(sess.URL, "client_reference_id=u1") {
		t.Fatalf("session = %+v", sess)
	}

	if _, err := s.StartCheckout(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v; want ErrUserNotFound", err)
	}
}

func TestConfirm(t *testing.T) {
	r := &fakeBillingRepo{users: map[string]*domain.User{
		"u1": {ID: "u1"},
	}}
	s := NewBillingService(nil, r, &billing.HostedProvider{BaseURL: "https://pay.example.com/checkout"})

	if err := s.Confirm(context.Background(), "u1"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !r.users["u1"].IsSubscribed {
		t.Fatalf("user not marked subscribed")
	}
	if err := s.Confirm(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v; want ErrUserNotFound", err)
	}
}
