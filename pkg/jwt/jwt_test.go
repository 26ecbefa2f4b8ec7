package jwt

import (
	"testing"
	"time"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", "userhub", time.Hour)

	token, err := m.GenerateAccessToken("alice@example.com", "Alice", RoleStaff)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "alice@example.com" || claims.Name != "Alice" || claims.Role != RoleStaff {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager("secret", "userhub", time.Hour)

	t.Run("wrong key", func(t *testing.T) {
		token, err := NewManager("other", "userhub", time.Hour).GenerateAccessToken("a@example.com", "", RoleAttendee)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		if _, err := m.Validate(token); err == nil {
			t.Fatalf("expected signature failure")
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := NewManager("secret", "elsewhere", time.Hour).GenerateAccessToken("a@example.com", "", RoleAttendee)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		if _, err := m.Validate(token); err == nil {
			t.Fatalf("expected issuer failure")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, err := NewManager("secret", "userhub", -time.Minute).GenerateAccessToken("a@example.com", "", RoleAttendee)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		if _, err := m.Validate(token); err == nil {
			t.Fatalf("expected expiry failure")
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := m.GenerateAccessToken("", "", RoleAttendee)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		if _, err := m.Validate(token); err == nil {
			t.Fatalf("expected missing subject failure")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.jwt"); err == nil {
			t.Fatalf("expected parse failure")
		}
	})
}
