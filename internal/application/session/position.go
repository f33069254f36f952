package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/internal/domain/repository"
	"z-reader-session-api/pkg/logger"
	"z-reader-session-api/pkg/metrics"
)

// positionKeyPrefix 每本书一条记录，挂在跨书籍共享的键值存储里
const positionKeyPrefix = "reading_progress_"

// DefaultScrollSaveDelta 滚动保存的节流阈值：滚动比例变化超过 5% 才落盘
const DefaultScrollSaveDelta = 0.05

// PositionStore 阅读位置的持久化存取。
// 每次保存都是对该书记录的完整覆盖，乱序完成的写入以最后一次为准，无需合并。
type PositionStore struct {
	kv          repository.KeyValueStore
	scrollDelta float64

	mu        sync.Mutex
	lastSaved map[string]entity.ReadingPosition
}

// NewPositionStore 创建位置存取器；delta <= 0 时使用默认 5% 阈值
func NewPositionStore(kv repository.KeyValueStore, scrollDelta float64) *PositionStore {
	if scrollDelta <= 0 {
		scrollDelta = DefaultScrollSaveDelta
	}
	return &PositionStore{
		kv:          kv,
		scrollDelta: scrollDelta,
		lastSaved:   make(map[string]entity.ReadingPosition),
	}
}

func positionKey(bookID string) string {
	return positionKeyPrefix + bookID
}

// Save 无条件保存阅读位置（章节切换路径）
func (s *PositionStore) Save(ctx context.Context, bookID string, pos entity.ReadingPosition) error {
	pos = pos.Normalize()
	raw, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal reading position: %w", err)
	}
	if err := s.kv.SetString(ctx, positionKey(bookID), string(raw)); err != nil {
		return fmt.Errorf("failed to save reading position: %w", err)
	}

	s.mu.Lock()
	s.lastSaved[bookID] = pos
	s.mu.Unlock()

	metrics.PositionSavesTotal.WithLabelValues("chapter").Inc()
	return nil
}

// SaveScroll 滚动驱动的保存，带 5% 变化量节流；章节变化仍然立即落盘。
// 返回是否实际写入。
func (s *PositionStore) SaveScroll(ctx context.Context, bookID string, pos entity.ReadingPosition) (bool, error) {
	pos = pos.Normalize()

	s.mu.Lock()
	last, ok := s.lastSaved[bookID]
	s.mu.Unlock()

	if ok && last.ChapterIndex == pos.ChapterIndex &&
		math.Abs(last.ScrollRatio-pos.ScrollRatio) < s.scrollDelta {
		metrics.PositionSavesThrottled.Inc()
		return false, nil
	}

	raw, err := json.Marshal(pos)
	if err != nil {
		return false, fmt.Errorf("failed to marshal reading position: %w", err)
	}
	if err := s.kv.SetString(ctx, positionKey(bookID), string(raw)); err != nil {
		return false, fmt.Errorf("failed to save reading position: %w", err)
	}

	s.mu.Lock()
	s.lastSaved[bookID] = pos
	s.mu.Unlock()

	metrics.PositionSavesTotal.WithLabelValues("scroll").Inc()
	return true, nil
}

// Load 读取阅读位置。键不存在返回 (nil, nil)；
// 反序列化失败时自愈：删除损坏记录并返回默认位置，不向上传播错误。
func (s *PositionStore) Load(ctx context.Context, bookID string) (*entity.ReadingPosition, error) {
	raw, ok, err := s.kv.GetString(ctx, positionKey(bookID))
	if err != nil {
		return nil, fmt.Errorf("failed to load reading position: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var pos entity.ReadingPosition
	if err := json.Unmarshal([]byte(raw), &pos); err != nil {
		logger.Warn(ctx, "corrupted reading position record, resetting",
			"book_id", bookID, "error", err.Error())
		if delErr := s.kv.Delete(ctx, positionKey(bookID)); delErr != nil {
			logger.Error(ctx, "failed to delete corrupted position record", delErr, "book_id", bookID)
		}
		metrics.PositionCorruptionsHealed.Inc()
		def := entity.DefaultReadingPosition()
		return &def, nil
	}

	pos = pos.Normalize()
	return &pos, nil
}
