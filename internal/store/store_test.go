package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/models"
	"github.com/vdhoang/botui/internal/testutil"
)

func sample(id int64, eventDate string) models.Memory {
	now := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	return models.Memory{
		ID:        id,
		Title:     "Kỷ niệm",
		Text:      "nội dung",
		EventDate: eventDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testutil.TestDB(t)

	m := sample(1, "2024-04-01")
	if err := db.UpsertMemory(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := db.GetMemory(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != m.Title || got.Text != m.Text || got.EventDate != m.EventDate {
		t.Errorf("got %+v", got)
	}

	// Upsert replaces in place.
	m.Title = "Đã sửa"
	m.IsDeleted = true
	if err := db.UpsertMemory(m); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetMemory(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Đã sửa" || !got.IsDeleted {
		t.Errorf("upsert did not replace: %+v", got)
	}
}

func TestGetMemory_NotFound(t *testing.T) {
	db := testutil.TestDB(t)
	if _, err := db.GetMemory(42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListMemories_OrderedByEventDateDesc(t *testing.T) {
	db := testutil.TestDB(t)
	for _, m := range []models.Memory{
		sample(1, "2024-01-01"),
		sample(2, "2024-06-01"),
		sample(3, "2024-03-15"),
	} {
		if err := db.UpsertMemory(m); err != nil {
			t.Fatal(err)
		}
	}
	got, err := db.ListMemories()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantIDs := []int64{2, 3, 1}
	for i, w := range wantIDs {
		if got[i].ID != w {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, w)
		}
	}
}

func TestDeleteMemoryAndIDs(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.UpsertMemory(sample(1, "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertMemory(sample(2, "2024-02-01")); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteMemory(1); err != nil {
		t.Fatal(err)
	}
	ids, err := db.AllMemoryIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("ids = %v, want only id 2", ids)
	}
	if _, ok := ids[2]; !ok {
		t.Errorf("ids = %v", ids)
	}
}

func TestCache(t *testing.T) {
	db := testutil.TestDB(t)

	if _, ok, err := db.CacheGet("botui_cache_family:me"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := db.CacheSet("botui_cache_family:me", "Ông\n Bố"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := db.CacheGet("botui_cache_family:me")
	if err != nil || !ok || v != "Ông\n Bố" {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}

	// Replacement.
	if err := db.CacheSet("botui_cache_family:me", "mới"); err != nil {
		t.Fatal(err)
	}
	v, _, _ = db.CacheGet("botui_cache_family:me")
	if v != "mới" {
		t.Errorf("got %q, want replacement", v)
	}

	// Prefix clear leaves other keys alone.
	if err := db.CacheSet("other", "x"); err != nil {
		t.Fatal(err)
	}
	if err := db.CacheClear("botui_cache_"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := db.CacheGet("botui_cache_family:me"); ok {
		t.Error("prefixed key survived clear")
	}
	if v, ok, _ := db.CacheGet("other"); !ok || v != "x" {
		t.Error("unrelated key cleared")
	}
}
