package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour, "talentscout")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	tok, err := m.Issue("user-1", "athlete")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "athlete" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Issuer != "talentscout" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestParse_ExpiredToken(t *testing.T) {
	m, err := NewManager("test-secret", time.Nanosecond, "talentscout")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	tok, err := m.Issue("user-1", "athlete")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := m.Parse(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v; want ErrExpiredToken", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	m1, _ := NewManager("secret-one", time.Hour, "ts")
	m2, _ := NewManager("secret-two", time.Hour, "ts")

	tok, err := m1.Issue("user-1", "recruiter")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m2.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v; want ErrInvalidToken", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour, "ts")
	if _, err := m.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v; want ErrInvalidToken", err)
	}
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager("", time.Hour, "ts"); err == nil {
		t.Fatalf("empty secret accepted")
	}
	if _, err := NewManager("s", 0, "ts"); err == nil {
		t.Fatalf("zero TTL accepted")
	}
}
