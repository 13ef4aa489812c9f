package store

import (
	"context"
	"os"
	"testing"
	"time"

	"llm-relay/api/internal/content"
)

// Runs against a real Postgres when TEST_DATABASE_URL is set.
func openTestRepo(t *testing.T) *DocumentRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewDocumentRepo(db, 0)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return repo
}

func TestDocumentRepoRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	url := "https://example.com/test-" + time.Now().Format("150405.000000000") + ".pdf"
	t.Cleanup(func() { _, _ = repo.DB.Exec(`delete from document_cache where url = $1`, url) })

	if _, ok, err := repo.FindText(ctx, url); err != nil || ok {
		t.Fatalf("FindText before save = (%v, %v), want miss", ok, err)
	}
	if err := repo.SaveText(ctx, url, content.Text{Body: "v1", MediaType: "application/pdf"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveText(ctx, url, content.Text{Body: "v2", MediaType: "text/plain"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, ok, err := repo.FindText(ctx, url)
	if err != nil || !ok {
		t.Fatalf("FindText = (%v, %v), want hit", ok, err)
	}
	if got.Body != "v2" || got.MediaType != "text/plain" {
		t.Fatalf("got %+v", got)
	}
}

func TestDocumentRepoMaxAge(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	url := "https://example.com/stale-" + time.Now().Format("150405.000000000") + ".txt"
	t.Cleanup(func() { _, _ = repo.DB.Exec(`delete from document_cache where url = $1`, url) })

	if err := repo.Upsert(ctx, DocumentRow{URL: url, MediaType: "text/plain", Text: "old"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := repo.DB.ExecContext(ctx, `update document_cache set created_at = now() - interval '2 hours' where url = $1`, url); err != nil {
		t.Fatalf("age row: %v", err)
	}
	if _, err := repo.Find(ctx, url, time.Hour); err != ErrNotFound {
		t.Fatalf("Find stale = %v, want ErrNotFound", err)
	}
	if _, err := repo.Find(ctx, url, 0); err != nil {
		t.Fatalf("Find without max age: %v", err)
	}
}
