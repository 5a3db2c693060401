package guide

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetSubmission(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	sub := Submission{
		ID:       "sub-1",
		Form:     "corrections",
		Fields:   map[string]string{"page": "/faq", "details": "Typo in the second answer"},
		RemoteIP: "203.0.113.5",
	}
	if err := s.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("SaveSubmission failed: %v", err)
	}

	got, err := s.GetSubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if got.Form != "corrections" {
		t.Errorf("Form = %q, want %q", got.Form, "corrections")
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, StatusPending)
	}
	if got.Fields["page"] != "/faq" || got.Fields["details"] != sub.Fields["details"] {
		t.Errorf("Fields = %v, want %v", got.Fields, sub.Fields)
	}
	if got.RemoteIP != "203.0.113.5" {
		t.Errorf("RemoteIP = %q", got.RemoteIP)
	}
	if got.CreatedAt.IsZero() || time.Since(got.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v, want about now", got.CreatedAt)
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetSubmission(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveSubmissionDuplicateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sub := Submission{ID: "dup", Form: "contact", Fields: map[string]string{}}
	if err := s.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := s.SaveSubmission(ctx, sub); err == nil {
		t.Error("second save with the same id should fail")
	}
}

func TestListSubmissionsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		sub := Submission{ID: id, Form: "contact", Fields: map[string]string{}, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.SaveSubmission(ctx, sub); err != nil {
			t.Fatalf("SaveSubmission(%s): %v", id, err)
		}
	}

	all, err := s.ListSubmissions(ctx, 0)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("order = %v, want [c b a]", ids(all))
	}

	limited, err := s.ListSubmissions(ctx, 2)
	if err != nil {
		t.Fatalf("ListSubmissions(2) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
}

func TestMarkTransitions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.SaveSubmission(ctx, Submission{ID: "x", Form: "contact", Fields: map[string]string{}}); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkFailed(ctx, "x", errors.New("endpoint returned 500")); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, _ := s.GetSubmission(ctx, "x")
	if got.Status != StatusFailed || got.Attempts != 1 || got.LastError != "endpoint returned 500" {
		t.Errorf("after failure = %+v", got)
	}

	if err := s.MarkForwarded(ctx, "x"); err != nil {
		t.Fatalf("MarkForwarded: %v", err)
	}
	got, _ = s.GetSubmission(ctx, "x")
	if got.Status != StatusForwarded || got.Attempts != 2 || got.LastError != "" {
		t.Errorf("after forward = %+v", got)
	}

	if err := s.MarkForwarded(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkForwarded(missing) = %v, want ErrNotFound", err)
	}
}

func TestListRetryable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	save := func(sub Submission) {
		t.Helper()
		sub.Form = "contact"
		sub.Fields = map[string]string{}
		if err := s.SaveSubmission(ctx, sub); err != nil {
			t.Fatal(err)
		}
	}
	save(Submission{ID: "pending"})
	save(Submission{ID: "failed-once", Status: StatusFailed, Attempts: 1})
	save(Submission{ID: "gave-up", Status: StatusFailed, Attempts: 3})
	save(Submission{ID: "done", Status: StatusForwarded, Attempts: 1})
	save(Submission{ID: "in-flight", Status: StatusSending})
	hourAgo := time.Now().Add(-time.Hour)
	save(Submission{ID: "abandoned", Status: StatusSending, CreatedAt: hourAgo, UpdatedAt: hourAgo})

	subs, err := s.ListRetryable(ctx, 3, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ListRetryable failed: %v", err)
	}
	got := map[string]bool{}
	for _, sub := range subs {
		got[sub.ID] = true
	}
	if len(got) != 3 || !got["pending"] || !got["failed-once"] || !got["abandoned"] {
		t.Errorf("retryable = %v, want [abandoned pending failed-once]", ids(subs))
	}
}

func TestClaimIsExclusive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.SaveSubmission(ctx, Submission{ID: "x", Form: "contact", Fields: map[string]string{}}); err != nil {
		t.Fatal(err)
	}
	staleBefore := time.Now().Add(-time.Minute)

	ok, err := s.Claim(ctx, "x", staleBefore)
	if err != nil || !ok {
		t.Fatalf("first Claim = %v, %v; want true", ok, err)
	}
	if ok, _ := s.Claim(ctx, "x", staleBefore); ok {
		t.Error("second Claim should fail while the first is in flight")
	}
	got, _ := s.GetSubmission(ctx, "x")
	if got.Status != StatusSending || got.Attempts != 0 {
		t.Errorf("claimed = %+v", got)
	}

	// A claim older than staleBefore can be taken over.
	if ok, _ := s.Claim(ctx, "x", time.Now().Add(time.Minute)); !ok {
		t.Error("stale claim should be reclaimable")
	}

	if err := s.MarkForwarded(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Claim(ctx, "x", time.Now().Add(time.Minute)); ok {
		t.Error("forwarded submission must not be claimed")
	}
	if ok, _ := s.Claim(ctx, "missing", staleBefore); ok {
		t.Error("missing submission must not be claimed")
	}
}

func TestDeleteAndCount(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for _, sub := range []Submission{
		{ID: "1", Form: "contact", Fields: map[string]string{}},
		{ID: "2", Form: "contact", Fields: map[string]string{}, Status: StatusForwarded},
		{ID: "3", Form: "contribute", Fields: map[string]string{}},
	} {
		if err := s.SaveSubmission(ctx, sub); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.DeleteSubmission(ctx, "1"); err != nil {
		t.Fatalf("DeleteSubmission failed: %v", err)
	}
	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[StatusPending] != 1 || counts[StatusForwarded] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func ids(subs []Submission) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}
