package session

import (
	"context"
	"testing"

	"z-reader-session-api/internal/domain/entity"
)

func TestPositionStoreRoundTrip(t *testing.T) {
	kv := newFakeKV()
	store := NewPositionStore(kv, 0)
	ctx := context.Background()

	pos := entity.ReadingPosition{ChapterIndex: 3, ScrollRatio: 0.42}
	if err := store.Save(ctx, "book-1", pos); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "book-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || got.ChapterIndex != 3 || got.ScrollRatio != 0.42 {
		t.Fatalf("Load() = %+v, want {3 0.42}", got)
	}
}

func TestPositionStoreLoadAbsent(t *testing.T) {
	store := NewPositionStore(newFakeKV(), 0)

	got, err := store.Load(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Load() = %+v, want nil for absent record", got)
	}
}

func TestPositionStoreHealsCorruption(t *testing.T) {
	kv := newFakeKV()
	kv.data[positionKey("book-1")] = "{not json"
	store := NewPositionStore(kv, 0)
	ctx := context.Background()

	// 首次读取：自愈为默认位置，损坏记录被删除
	got, err := store.Load(ctx, "book-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := entity.DefaultReadingPosition()
	if got == nil || *got != def {
		t.Fatalf("Load() = %+v, want default position %+v", got, def)
	}
	if kv.deletes != 1 {
		t.Fatalf("deletes = %d, want 1", kv.deletes)
	}

	// 再次读取：记录已不存在
	got, err = store.Load(ctx, "book-1")
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if got != nil {
		t.Fatalf("second Load() = %+v, want nil", got)
	}
}

func TestSaveScrollThrottling(t *testing.T) {
	kv := newFakeKV()
	store := NewPositionStore(kv, 0.05)
	ctx := context.Background()

	if err := store.Save(ctx, "book-1", entity.ReadingPosition{ChapterIndex: 1, ScrollRatio: 0.10}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	base := kv.setCount()

	// 同章节内 3% 变化量：节流，不落盘
	saved, err := store.SaveScroll(ctx, "book-1", entity.ReadingPosition{ChapterIndex: 1, ScrollRatio: 0.13})
	if err != nil {
		t.Fatalf("SaveScroll() error = %v", err)
	}
	if saved || kv.setCount() != base {
		t.Fatalf("small delta: saved = %v, sets = %d, want throttled with %d sets", saved, kv.setCount(), base)
	}

	// 同章节内 10% 变化量：落盘
	saved, err = store.SaveScroll(ctx, "book-1", entity.ReadingPosition{ChapterIndex: 1, ScrollRatio: 0.20})
	if err != nil {
		t.Fatalf("SaveScroll() error = %v", err)
	}
	if !saved || kv.setCount() != base+1 {
		t.Fatalf("large delta: saved = %v, sets = %d, want write", saved, kv.setCount())
	}

	// 章节变化：即便滚动比例相同也落盘
	saved, err = store.SaveScroll(ctx, "book-1", entity.ReadingPosition{ChapterIndex: 2, ScrollRatio: 0.20})
	if err != nil {
		t.Fatalf("SaveScroll() error = %v", err)
	}
	if !saved || kv.setCount() != base+2 {
		t.Fatalf("chapter change: saved = %v, sets = %d, want write", saved, kv.setCount())
	}
}
