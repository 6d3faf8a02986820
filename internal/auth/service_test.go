package auth

import (
	"context"
	"testing"
	"time"

	"github.com/hfarrukh/solaradvisor/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(storage.NewMemory())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "s3cret", "admin")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.PasswordHash == "s3cret" {
		t.Fatal("password stored in plain text")
	}

	got, err := svc.Authenticate(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("authenticated wrong user: %s != %s", got.ID, u.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, err := svc.Authenticate(ctx, "nobody", "s3cret"); err == nil {
		t.Error("expected error for unknown user")
	}
	if _, err := svc.Register(ctx, "alice", "other", "viewer"); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestTokenLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tok, raw, err := svc.CreateToken(ctx, "user-1", "ci", "viewer", nil)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if tok.TokenHash == raw {
		t.Fatal("raw token stored instead of its hash")
	}

	got, err := svc.ValidateToken(ctx, raw)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got.ID != tok.ID || got.Role != "viewer" {
		t.Errorf("got token %+v", got)
	}

	if _, err := svc.ValidateToken(ctx, "not-a-token"); err == nil {
		t.Error("expected error for unknown token")
	}

	past := time.Now().Add(-time.Hour)
	_, expiredRaw, err := svc.CreateToken(ctx, "user-1", "old", "viewer", &past)
	if err != nil {
		t.Fatalf("CreateToken expired: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, expiredRaw); err == nil {
		t.Error("expected error for expired token")
	}

	if err := svc.DeleteToken(ctx, tok.ID); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, raw); err == nil {
		t.Error("deleted token should not validate")
	}
}

func TestEnforceRoles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, "admin", "pw", "admin")
	if err != nil {
		t.Fatalf("Register admin: %v", err)
	}
	editor, err := svc.Register(ctx, "editor", "pw", "editor")
	if err != nil {
		t.Fatalf("Register editor: %v", err)
	}
	viewer, err := svc.Register(ctx, "viewer", "pw", "viewer")
	if err != nil {
		t.Fatalf("Register viewer: %v", err)
	}

	cases := []struct {
		sub, obj, act string
		want          bool
	}{
		{admin.ID, "analyses", "write", true},
		{admin.ID, "settings", "write", true},
		{editor.ID, "analyses", "write", true},
		{editor.ID, "market", "write", true},
		{editor.ID, "settings", "write", false},
		{viewer.ID, "analyses", "read", true},
		{viewer.ID, "analyses", "write", false},
		{"stranger", "analyses", "read", false},
	}
	for _, c := range cases {
		got, err := svc.Enforce(c.sub, c.obj, c.act)
		if err != nil {
			t.Fatalf("Enforce(%s,%s,%s): %v", c.sub, c.obj, c.act, err)
		}
		if got != c.want {
			t.Errorf("Enforce(%s,%s,%s) = %v, want %v", c.sub, c.obj, c.act, got, c.want)
		}
	}
}
