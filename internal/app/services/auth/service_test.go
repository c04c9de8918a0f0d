package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainauth "hems/internal/domain/auth"
	domainuser "hems/internal/domain/user"
	"hems/internal/infra/storage/memory"
)

// plainHasher avoids bcrypt cost in tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type seqTokens struct{ n int }

func (g *seqTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

func newTestService(ttl time.Duration) *Service {
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  plainHasher{},
		Tokens:     &seqTokens{},
		SessionTTL: ttl,
	}
}

func TestRegisterAndResolve(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{Email: "Guest@Example.com", Name: "Guest", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Token == "" {
		t.Fatal("register must issue a session token")
	}
	if result.User.Email != "guest@example.com" {
		t.Fatalf("email not normalized: %q", result.User.Email)
	}
	if result.User.HasRole(domainuser.RoleStaff) {
		t.Fatal("plain registration must not grant staff")
	}

	resolved, err := svc.ResolveToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.User.ID != result.User.ID {
		t.Fatalf("resolved user = %q, want %q", resolved.User.ID, result.User.ID)
	}

	staff, err := svc.Register(ctx, RegisterParams{Email: "desk@example.com", Name: "Desk", Password: "secret-pass", Staff: true})
	if err != nil {
		t.Fatalf("register staff: %v", err)
	}
	if !staff.User.HasRole(domainuser.RoleStaff) {
		t.Fatal("staff registration must grant the staff role")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "A", Password: "short"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("short password: got %v, want ErrPasswordTooShort", err)
	}
	if _, err := svc.Register(ctx, RegisterParams{Email: "  ", Name: "A", Password: "secret-pass"}); !errors.Is(err, domainuser.ErrEmailRequired) {
		t.Fatalf("blank email: got %v, want ErrEmailRequired", err)
	}

	if _, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "A", Password: "secret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterParams{Email: "A@B.C", Name: "B", Password: "secret-pass"}); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("duplicate email: got %v, want ErrEmailAlreadyUsed", err)
	}
}

func TestLoginAndLogout(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "A", Password: "secret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	logged, err := svc.Login(ctx, LoginParams{Email: "a@b.c", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(ctx, LoginParams{Email: "a@b.c", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, LoginParams{Email: "nobody@b.c", Password: "secret-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}

	if err := svc.Logout(ctx, logged.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ResolveToken(ctx, logged.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("resolve after logout: got %v, want ErrSessionNotFound", err)
	}
}

func TestResolveExpiredSession(t *testing.T) {
	svc := newTestService(time.Nanosecond)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "A", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := svc.ResolveToken(ctx, result.Token); err == nil {
		t.Fatal("expired session must not resolve")
	}
}
