package enrichment

import (
	"context"
	"sync"
	"time"

	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/pkg/logger"
	"z-reader-session-api/pkg/metrics"
)

// Manager 增强任务管理器。每个功能名维护一套状态：
// initial -[run]-> loading -[success]-> ready，loading -[failure]-> error。
// loading 期间的重复 run 是被拒绝的空操作；ready 且已有结果时的
// 重复 run 被短路，除非调用方显式 force（用于强制章节重抽取）。
type Manager struct {
	mu     sync.Mutex
	status map[entity.EnrichmentFeature]entity.EnrichmentStatus
	errs   map[entity.EnrichmentFeature]error
}

// NewManager 创建任务管理器，所有功能初始为 initial
func NewManager() *Manager {
	m := &Manager{
		status: make(map[entity.EnrichmentFeature]entity.EnrichmentStatus),
		errs:   make(map[entity.EnrichmentFeature]error),
	}
	for _, f := range entity.AllEnrichmentFeatures {
		m.status[f] = entity.EnrichmentInitial
	}
	return m
}

// Run 执行一次增强操作。返回值 started 表明 op 是否真正被执行：
// 并发保护（loading）与 ready 短路都返回 (false, nil)。
// 状态检查与置位在同一临界区内同步完成，两个近乎同时的调用
// 不可能都观察到 initial 并双双进入 op。
func (m *Manager) Run(ctx context.Context, feature entity.EnrichmentFeature, force bool, op func(context.Context) error) (started bool, err error) {
	m.mu.Lock()
	switch m.status[feature] {
	case entity.EnrichmentLoading:
		m.mu.Unlock()
		metrics.EnrichmentRejectedTotal.WithLabelValues(string(feature)).Inc()
		logger.Debug(ctx, "enrichment already in flight, skipping", "feature", feature)
		return false, nil
	case entity.EnrichmentReady:
		if !force {
			m.mu.Unlock()
			logger.Debug(ctx, "enrichment result cached, skipping", "feature", feature)
			return false, nil
		}
	}
	m.status[feature] = entity.EnrichmentLoading
	delete(m.errs, feature)
	m.mu.Unlock()

	start := time.Now()
	opErr := op(ctx)
	metrics.EnrichmentDuration.WithLabelValues(string(feature)).Observe(time.Since(start).Seconds())

	m.mu.Lock()
	if opErr != nil {
		m.status[feature] = entity.EnrichmentError
		m.errs[feature] = opErr
	} else {
		m.status[feature] = entity.EnrichmentReady
	}
	m.mu.Unlock()

	if opErr != nil {
		metrics.EnrichmentRunsTotal.WithLabelValues(string(feature), "error").Inc()
		logger.Error(ctx, "enrichment run failed", opErr, "feature", feature)
		return true, opErr
	}
	metrics.EnrichmentRunsTotal.WithLabelValues(string(feature), "ready").Inc()
	return true, nil
}

// Status 返回单个功能的状态
func (m *Manager) Status(feature entity.EnrichmentFeature) entity.EnrichmentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.status[feature]; ok {
		return s
	}
	return entity.EnrichmentInitial
}

// Err 返回功能最近一次失败的错误（非 error 状态时为 nil）
func (m *Manager) Err(feature entity.EnrichmentFeature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs[feature]
}

// All 返回全部功能状态的副本
func (m *Manager) All() map[entity.EnrichmentFeature]entity.EnrichmentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[entity.EnrichmentFeature]entity.EnrichmentStatus, len(m.status))
	for f, s := range m.status {
		out[f] = s
	}
	return out
}
