package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/ports"
)

func newAuthService(h *harness) *AuthService {
	return NewAuthService(h.store.Users(), h.cache, h.registry, config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "daybook-test",
	}, nil)
}

func TestSignUpLoginAndValidate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	svc := newAuthService(h)

	resp, err := svc.SignUp(ctx, ports.SignUpRequest{Email: " Ana@Example.com ", Password: "correct-horse", DisplayName: "Ana"})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if resp.User.Email != "ana@example.com" || resp.User.PasswordHash != "" {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 3600 {
		t.Errorf("response = %+v", resp)
	}

	claims, err := svc.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != resp.User.ID.String() {
		t.Errorf("claims user = %s, want %s", claims.UserID, resp.User.ID)
	}

	login, err := svc.Login(ctx, ports.LoginRequest{Email: "ana@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Error("login returned a different user")
	}

	user, err := svc.GetUser(ctx, resp.User.ID)
	if err != nil || user.DisplayName != "Ana" || user.PasswordHash != "" {
		t.Errorf("GetUser = %+v, %v", user, err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newHarness(t))

	req := ports.SignUpRequest{Email: "ana@example.com", Password: "correct-horse"}
	if _, err := svc.SignUp(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignUp(ctx, req); !errors.Is(err, entities.ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newHarness(t))

	if _, err := svc.SignUp(ctx, ports.SignUpRequest{Email: "ana@example.com", Password: "correct-horse"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, ports.LoginRequest{Email: "ana@example.com", Password: "wrong-horse"}); !errors.Is(err, entities.ErrUnauthorized) {
		t.Errorf("bad password err = %v", err)
	}
	if _, err := svc.Login(ctx, ports.LoginRequest{Email: "bob@example.com", Password: "correct-horse"}); !errors.Is(err, entities.ErrUnauthorized) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestValidateTokenRejectsForeignAndExpired(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	svc := newAuthService(h)

	resp, err := svc.SignUp(ctx, ports.SignUpRequest{Email: "ana@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}

	other := newAuthService(h)
	other.jwtConfig.Secret = "another-secret"
	if _, err := other.ValidateToken(resp.AccessToken); !errors.Is(err, entities.ErrUnauthorized) {
		t.Errorf("foreign token err = %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(resp.AccessToken); !errors.Is(err, entities.ErrUnauthorized) {
		t.Errorf("expired token err = %v", err)
	}
}

func TestSignOutClearsUserState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	svc := newAuthService(h)
	userID := uuid.New()
	otherID := uuid.New()

	for _, id := range []uuid.UUID{userID, otherID} {
		if err := h.cache.Set(ctx, "snapshot_"+id.String(), "cached", time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	before := h.registry.For(userID)

	if err := svc.SignOut(ctx, userID); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if ok, _ := h.cache.Exists(ctx, "snapshot_"+userID.String()); ok {
		t.Error("user snapshot should be cleared")
	}
	if ok, _ := h.cache.Exists(ctx, "snapshot_"+otherID.String()); !ok {
		t.Error("other users' cache must survive")
	}
	if h.registry.For(userID) == before {
		t.Error("orchestrator should be recreated after sign-out")
	}
}
