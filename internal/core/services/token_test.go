package services

import (
	"testing"
	"time"

	"chatwire/internal/core/domain"

	"github.com/google/uuid"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "chatwire", time.Hour)
	user := &domain.User{ID: uuid.New(), Email: "a@b.c", Username: "alice"}

	token, err := svc.Generate(user)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != user.ID {
		t.Errorf("user id = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Email != user.Email || claims.Username != user.Username {
		t.Errorf("claims = %+v, want email/username of %+v", claims, user)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", "chatwire", time.Hour)
	verifier := NewTokenService("secret-two", "chatwire", time.Hour)

	token, err := issuer.Generate(&domain.User{ID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Error("expected validation failure for foreign signature")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", "chatwire", time.Hour)
	for _, bad := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := svc.Validate(bad); err == nil {
			t.Errorf("Validate(%q) should fail", bad)
		}
	}
}

func TestExpiryMatchesTTL(t *testing.T) {
	ttl := 30 * time.Minute
	svc := NewTokenService("test-secret", "chatwire", ttl)

	token, err := svc.Generate(&domain.User{ID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	exp := svc.Expiry(token)
	if exp == nil {
		t.Fatal("expected an expiry")
	}
	want := time.Now().Add(ttl)
	if diff := exp.Sub(want); diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("expiry %v is %v away from expected", exp, diff)
	}
}

func TestExpiryNilOnGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", "chatwire", time.Hour)
	if exp := svc.Expiry("garbage"); exp != nil {
		t.Errorf("expected nil expiry, got %v", exp)
	}
}
