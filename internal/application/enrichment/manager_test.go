package enrichment

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"z-reader-session-api/internal/domain/entity"
)

func TestManagerStateTransitions(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	if got := m.Status(entity.FeatureSummary); got != entity.EnrichmentInitial {
		t.Fatalf("Status() = %s, want initial", got)
	}

	started, err := m.Run(ctx, entity.FeatureSummary, false, func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !started {
		t.Fatal("Run() started = false, want true")
	}
	if got := m.Status(entity.FeatureSummary); got != entity.EnrichmentReady {
		t.Fatalf("Status() = %s, want ready", got)
	}
}

func TestManagerRejectsWhilePending(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	calls := 0

	// 外层 op 执行期间再触发同一功能：内层必须被拒绝且不执行
	started, err := m.Run(ctx, entity.FeatureSummary, false, func(ctx context.Context) error {
		calls++
		inner, innerErr := m.Run(ctx, entity.FeatureSummary, false, func(context.Context) error {
			calls++
			return nil
		})
		if innerErr != nil {
			return innerErr
		}
		if inner {
			t.Error("inner Run() started = true, want rejected while pending")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !started {
		t.Fatal("outer Run() started = false, want true")
	}
	if calls != 1 {
		t.Fatalf("op calls = %d, want 1", calls)
	}
}

func TestManagerConcurrentRunsInvokeOpOnce(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	firstIn := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.Run(ctx, entity.FeatureVocabulary, false, func(context.Context) error {
			mu.Lock()
			calls++
			mu.Unlock()
			close(firstIn)
			<-release
			return nil
		})
	}()

	<-firstIn
	// 第一个调用仍在 loading：并发的第二个调用被拒绝
	started, err := m.Run(ctx, entity.FeatureVocabulary, false, func(context.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if started {
		t.Fatal("second Run() started = true, want rejected")
	}
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("op calls = %d, want 1", calls)
	}
	if got := m.Status(entity.FeatureVocabulary); got != entity.EnrichmentReady {
		t.Fatalf("Status() = %s, want ready", got)
	}
}

func TestManagerReadyShortCircuitAndForce(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	calls := 0
	op := func(context.Context) error {
		calls++
		return nil
	}

	if _, err := m.Run(ctx, entity.FeatureChapterExtraction, false, op); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// ready 短路
	started, err := m.Run(ctx, entity.FeatureChapterExtraction, false, op)
	if err != nil {
		t.Fatalf("cached Run() error = %v", err)
	}
	if started || calls != 1 {
		t.Fatalf("cached Run(): started = %v, calls = %d, want short-circuit", started, calls)
	}

	// force 绕过短路
	started, err = m.Run(ctx, entity.FeatureChapterExtraction, true, op)
	if err != nil {
		t.Fatalf("forced Run() error = %v", err)
	}
	if !started || calls != 2 {
		t.Fatalf("forced Run(): started = %v, calls = %d, want recompute", started, calls)
	}
}

func TestManagerErrorStateAllowsRetry(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	boom := fmt.Errorf("provider down")

	started, err := m.Run(ctx, entity.FeatureThemeAnalysis, false, func(context.Context) error {
		return boom
	})
	if !started {
		t.Fatal("Run() started = false, want true")
	}
	if err == nil {
		t.Fatal("Run() error = nil, want op failure")
	}
	if got := m.Status(entity.FeatureThemeAnalysis); got != entity.EnrichmentError {
		t.Fatalf("Status() = %s, want error", got)
	}
	if m.Err(entity.FeatureThemeAnalysis) == nil {
		t.Fatal("Err() = nil, want stored failure")
	}

	// error 状态允许再次运行，成功后错误被清除
	started, err = m.Run(ctx, entity.FeatureThemeAnalysis, false, func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("retry Run() error = %v", err)
	}
	if !started {
		t.Fatal("retry Run() started = false, want true")
	}
	if got := m.Status(entity.FeatureThemeAnalysis); got != entity.EnrichmentReady {
		t.Fatalf("Status() = %s, want ready", got)
	}
	if m.Err(entity.FeatureThemeAnalysis) != nil {
		t.Fatal("Err() after retry != nil, want cleared")
	}
}

func TestManagerAllCoversEveryFeature(t *testing.T) {
	m := NewManager()
	all := m.All()
	if len(all) != len(entity.AllEnrichmentFeatures) {
		t.Fatalf("All() = %d features, want %d", len(all), len(entity.AllEnrichmentFeatures))
	}
	for _, f := range entity.AllEnrichmentFeatures {
		if all[f] != entity.EnrichmentInitial {
			t.Errorf("All()[%s] = %s, want initial", f, all[f])
		}
	}
}
