package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryAnalyses(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	got, err := s.GetAnalysis(ctx, "missing")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing analysis, got %+v", got)
	}

	now := time.Now()
	for i, id := range []string{"a1", "a2", "a3"} {
		err := s.SaveAnalysis(ctx, Analysis{
			ID:        id,
			Source:    "fields",
			Location:  "karachi",
			Payload:   []byte(`{}`),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveAnalysis(%s): %v", id, err)
		}
	}

	list, err := s.ListAnalyses(ctx, 2)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(list))
	}
	if list[0].ID != "a3" || list[1].ID != "a2" {
		t.Errorf("expected newest-first order [a3 a2], got [%s %s]", list[0].ID, list[1].ID)
	}

	pruned, err := s.PruneAnalyses(ctx, now.Add(90*time.Second))
	if err != nil {
		t.Fatalf("PruneAnalyses: %v", err)
	}
	if pruned != 2 {
		t.Errorf("expected 2 pruned, got %d", pruned)
	}
	remaining, _ := s.ListAnalyses(ctx, 10)
	if len(remaining) != 1 || remaining[0].ID != "a3" {
		t.Errorf("expected only a3 to remain, got %+v", remaining)
	}
}

func TestMemorySettingsAndSnapshots(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	v, err := s.GetSetting(ctx, "refresh_interval_seconds")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value for unset key, got %q", v)
	}
	if err := s.SetSetting(ctx, "refresh_interval_seconds", "3600"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	v, _ = s.GetSetting(ctx, "refresh_interval_seconds")
	if v != "3600" {
		t.Errorf("expected 3600, got %q", v)
	}

	snap, err := s.GetTariffSnapshot(ctx, "nepra")
	if err != nil {
		t.Fatalf("GetTariffSnapshot: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot before save, got %+v", snap)
	}
	if err := s.SaveTariffSnapshot(ctx, TariffSnapshot{Source: "nepra", Payload: []byte(`{"bands":[]}`)}); err != nil {
		t.Fatalf("SaveTariffSnapshot: %v", err)
	}
	snap, _ = s.GetTariffSnapshot(ctx, "nepra")
	if snap == nil || snap.Source != "nepra" {
		t.Fatalf("expected saved snapshot back, got %+v", snap)
	}
	if snap.FetchedAt.IsZero() {
		t.Errorf("expected FetchedAt to be stamped")
	}
}

func TestMemoryUsersAndTokens(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	u := User{ID: "u1", Username: "admin", Role: "admin", CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	got, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != "u1" {
		t.Fatalf("expected user u1, got %+v", got)
	}

	tok := Token{ID: "t1", UserID: "u1", Name: "ci", TokenHash: "abc", Role: "viewer", CreatedAt: time.Now()}
	if err := s.CreateToken(ctx, tok); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	byHash, err := s.GetTokenByHash(ctx, "abc")
	if err != nil {
		t.Fatalf("GetTokenByHash: %v", err)
	}
	if byHash == nil || byHash.ID != "t1" {
		t.Fatalf("expected token t1, got %+v", byHash)
	}
	if err := s.UpdateTokenLastUsed(ctx, "t1"); err != nil {
		t.Fatalf("UpdateTokenLastUsed: %v", err)
	}
	byHash, _ = s.GetTokenByHash(ctx, "abc")
	if byHash.LastUsedAt == nil {
		t.Errorf("expected LastUsedAt to be set")
	}
	if err := s.DeleteToken(ctx, "t1"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	byHash, _ = s.GetTokenByHash(ctx, "abc")
	if byHash != nil {
		t.Errorf("expected token to be deleted, got %+v", byHash)
	}
}

func TestMemoryAdvisoryLockAlwaysAcquires(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	ok, err := s.AcquireAdvisoryLock(ctx, 42)
	if err != nil {
		t.Fatalf("AcquireAdvisoryLock: %v", err)
	}
	if !ok {
		t.Errorf("expected single-process lock to acquire")
	}
	if _, err := s.ReleaseAdvisoryLock(ctx, 42); err != nil {
		t.Fatalf("ReleaseAdvisoryLock: %v", err)
	}
}
