package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/testutil"
	"github.com/Eman21-ctr/milk-management-app/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
)

func TestSignUpSignInSignOut(t *testing.T) {
	env := setupLedger(t)
	repos := repository.NewRepositories(env.db)

	res, err := env.svc.Auth.SignUp(env.ctx, &SignUpRequest{Email: " Admin@KDMP.id ", Password: "rahasia123", Name: "Admin"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if res.User.Email != "admin@kdmp.id" || res.TokenType != "Bearer" || res.AccessToken == "" {
		t.Fatalf("unexpected sign-up result %+v", res)
	}
	if _, err := env.svc.Auth.SignUp(env.ctx, &SignUpRequest{Email: "admin@kdmp.id", Password: "rahasia123"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := env.svc.Auth.SignIn(env.ctx, &SignInRequest{Email: "admin@kdmp.id", Password: "salah"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := env.svc.Auth.SignIn(env.ctx, &SignInRequest{Email: "nobody@kdmp.id", Password: "rahasia123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	signed, err := env.svc.Auth.SignIn(env.ctx, &SignInRequest{Email: "ADMIN@kdmp.id", Password: "rahasia123"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	claims := &middleware.JWTClaims{}
	if _, err := jwt.ParseWithClaims(signed.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(DefaultOptions().JWTSecret), nil
	}, jwt.WithTimeFunc(env.clock.Now)); err != nil {
		t.Fatalf("token should verify: %v", err)
	}
	if claims.UserID != res.User.ID || claims.ID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}

	me, err := env.svc.Auth.Me(env.ctx, claims.UserID)
	if err != nil || me.LastLoginAt == nil {
		t.Errorf("expected last login recorded, got %+v (%v)", me, err)
	}

	if err := env.svc.Auth.SignOut(env.ctx, claims); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	revoked, err := repos.RevokedToken.IsRevoked(env.ctx, claims.ID)
	if err != nil || !revoked {
		t.Errorf("expected token revoked, got %v (%v)", revoked, err)
	}

	// 过期后清理
	env.clock.Set(env.clock.Now().Add(25 * time.Hour))
	n, err := env.svc.Auth.PurgeRevoked(env.ctx)
	if err != nil || n != 1 {
		t.Errorf("expected 1 purged, got %d (%v)", n, err)
	}
}

func TestSignUpDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	opts := DefaultOptions()
	opts.AllowSignup = false
	svc := NewServices(repository.NewRepositories(db), opts, Deps{}, nil)

	_, err := svc.Auth.SignUp(context.Background(), &SignUpRequest{Email: "a@b.id", Password: "rahasia123"})
	if !errors.Is(err, ErrSignupDisabled) {
		t.Fatalf("expected ErrSignupDisabled, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := normalizePhone("0812-3456-7890")
	if err != nil {
		t.Fatalf("normalizePhone: %v", err)
	}
	if !strings.HasPrefix(got, "+62 812") {
		t.Errorf("expected +62 international format, got %q", got)
	}
	if got2, _ := normalizePhone("+6281234567890"); got2 != got {
		t.Errorf("expected same result for international input, got %q vs %q", got2, got)
	}
	if got, err := normalizePhone("  "); err != nil || got != "" {
		t.Errorf("expected empty phone allowed, got %q (%v)", got, err)
	}
	if _, err := normalizePhone("12"); !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestCoordinatorLifecycle(t *testing.T) {
	env := setupLedger(t)
	k1 := testutil.SeedKitchen(t, env.db, "sppg-1", "SPPG Satu")
	k2 := testutil.SeedKitchen(t, env.db, "sppg-2", "SPPG Dua")

	if _, err := env.svc.Coordinator.CreateCoordinator(env.ctx, &CreateCoordinatorRequest{Name: "X", SPPGIDs: []string{"ghost"}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown sppg, got %v", err)
	}
	if _, err := env.svc.Coordinator.CreateCoordinator(env.ctx, &CreateCoordinatorRequest{Name: "X", ContactPhone: "abc"}); !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("expected ErrInvalidPhone, got %v", err)
	}

	c, err := env.svc.Coordinator.CreateCoordinator(env.ctx, &CreateCoordinatorRequest{
		Name:         "  Korwil Penfui ",
		Region:       "Kupang Tengah",
		ContactPhone: "081234567890",
		SPPGIDs:      []string{k1.ID, k1.ID},
	})
	if err != nil {
		t.Fatalf("CreateCoordinator: %v", err)
	}
	if c.Name != "Korwil Penfui" || c.Stock != 0 {
		t.Errorf("unexpected coordinator %+v", c)
	}
	if len(c.SPPGIDs) != 1 || !c.Serves(k1.ID) {
		t.Errorf("expected served kitchens [%s], got %v", k1.ID, c.SPPGIDs)
	}

	ids := []string{k2.ID}
	region := "Kupang Timur"
	updated, err := env.svc.Coordinator.UpdateCoordinator(env.ctx, c.ID, &UpdateCoordinatorRequest{Region: &region, SPPGIDs: &ids})
	if err != nil {
		t.Fatalf("UpdateCoordinator: %v", err)
	}
	if updated.Region != region || !updated.Serves(k2.ID) || updated.Serves(k1.ID) {
		t.Errorf("unexpected update result %+v", updated)
	}

	blank := " "
	if _, err := env.svc.Coordinator.UpdateCoordinator(env.ctx, c.ID, &UpdateCoordinatorRequest{Name: &blank}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank name, got %v", err)
	}

	list, err := env.svc.Coordinator.ListCoordinators(env.ctx, "penfui")
	if err != nil || len(list) != 1 {
		t.Errorf("expected 1 search hit, got %d (%v)", len(list), err)
	}
}

func TestKitchenLifecycle(t *testing.T) {
	env := setupLedger(t)

	k, err := env.svc.Kitchen.CreateKitchen(env.ctx, &CreateKitchenRequest{Name: "SPPG Oesapa", District: "Kelapa Lima"})
	if err != nil {
		t.Fatalf("CreateKitchen: %v", err)
	}
	addr := "Jl. Timor Raya No. 1"
	updated, err := env.svc.Kitchen.UpdateKitchen(env.ctx, k.ID, &UpdateKitchenRequest{Address: &addr})
	if err != nil {
		t.Fatalf("UpdateKitchen: %v", err)
	}
	if updated.Address != addr || updated.Name != "SPPG Oesapa" {
		t.Errorf("unexpected kitchen %+v", updated)
	}
	if _, err := env.svc.Kitchen.UpdateKitchen(env.ctx, "missing", &UpdateKitchenRequest{Address: &addr}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
