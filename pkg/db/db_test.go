package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"transitatlas/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	d.Close()
}

func TestCrawlBookkeeping(t *testing.T) {
	ctx := context.Background()
	d, err := db.Init(filepath.Join(t.TempDir(), "crawl_test.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	if err := d.StartSession(ctx, "session-1", "bus"); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	if err := d.MarkRouteCrawled(ctx, "110100012567", "110100", "bus", "夜1路", "session-1"); err != nil {
		t.Fatalf("MarkRouteCrawled() failed: %v", err)
	}

	ids, err := d.CrawledRouteIDs(ctx, "110100", "bus")
	if err != nil {
		t.Fatalf("CrawledRouteIDs() failed: %v", err)
	}
	if !ids["110100012567"] {
		t.Error("expected route 110100012567 to be recorded")
	}

	// Same route id in metro mode must not collide.
	other, err := d.CrawledRouteIDs(ctx, "110100", "metro")
	if err != nil {
		t.Fatalf("CrawledRouteIDs() failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no metro routes, got %d", len(other))
	}

	if err := d.FinishSession(ctx, "session-1", 1, 1); err != nil {
		t.Fatalf("FinishSession() failed: %v", err)
	}
}

func TestPersistentState(t *testing.T) {
	ctx := context.Background()
	d, err := db.Init(filepath.Join(t.TempDir(), "state_test.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	got, err := d.GetState(ctx, "last_city:bus")
	if err != nil {
		t.Fatalf("GetState() failed: %v", err)
	}
	if got != "" {
		t.Errorf("unset key = %q, want empty", got)
	}

	if err := d.SetState(ctx, "last_city:bus", "北京市"); err != nil {
		t.Fatalf("SetState() failed: %v", err)
	}
	got, err = d.GetState(ctx, "last_city:bus")
	if err != nil || got != "北京市" {
		t.Errorf("GetState() = %q, %v; want 北京市", got, err)
	}

	// Overwrite replaces, clearing included.
	if err := d.SetState(ctx, "last_city:bus", ""); err != nil {
		t.Fatalf("SetState() failed: %v", err)
	}
	got, _ = d.GetState(ctx, "last_city:bus")
	if got != "" {
		t.Errorf("cleared key = %q, want empty", got)
	}
}

func TestTranslationStore(t *testing.T) {
	ctx := context.Background()
	d, err := db.Init(filepath.Join(t.TempDir(), "trans_test.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	if _, ok := d.GetTranslation(ctx, "西单"); ok {
		t.Error("expected miss for unseen source")
	}

	if err := d.PutTranslation(ctx, "西单", "Xidan", "pinyin"); err != nil {
		t.Fatalf("PutTranslation() failed: %v", err)
	}

	got, ok := d.GetTranslation(ctx, "西单")
	if !ok || got != "Xidan" {
		t.Errorf("GetTranslation() = %q, %v; want 'Xidan', true", got, ok)
	}
}
