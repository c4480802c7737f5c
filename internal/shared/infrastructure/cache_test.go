package infrastructure

import (
	"fmt"
	"strconv"
	"testing"
	"time"
)

func TestInMemoryCache_SetGetClear(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()

	cache.Set("stats:abc", 42, time.Minute)
	cache.Set("stats:abc", 43, time.Minute)
	got, ok := cache.Get("stats:abc")
	if !ok || got.(int) != 43 {
		t.Fatalf("Get = %v, %v; want 43, true", got, ok)
	}

	cache.Clear()
	if _, ok := cache.Get("stats:abc"); ok || cache.Len() != 0 {
		t.Fatal("entry should be gone after Clear")
	}
}

func TestInMemoryCache_ExpiredEntryIsMiss(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()

	cache.Set("k", "v", -time.Second)
	if _, ok := cache.Get("k"); ok {
		t.Fatal("expired entry must not be returned")
	}
}

func TestShardedCache_DeletePrefix(t *testing.T) {
	cache := NewShardedCache(8)
	defer cache.Close()

	for i := 0; i < 20; i++ {
		cache.Set(fmt.Sprintf("stats:dataset-a:%d", i), i, time.Minute)
	}
	cache.Set("stats:dataset-b:0", 0, time.Minute)

	if removed := cache.DeletePrefix("stats:dataset-a:"); removed != 20 {
		t.Fatalf("removed = %d, want 20", removed)
	}
	if _, ok := cache.Get("stats:dataset-b:0"); !ok {
		t.Fatal("other dataset entries must survive")
	}
}

func TestNewShardedCache_PanicsOnInvalidShardCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non power of two")
		}
	}()
	NewShardedCache(3)
}

func TestCacheKeyBuilder(t *testing.T) {
	key := NewCacheKeyBuilder().
		Add("stats").
		Add("3f1c").
		AddInts([]int{1, 2, 10}).
		AddDate(time.Date(2010, 2, 5, 0, 0, 0, 0, time.UTC)).
		Add("all").
		Build()

	want := "stats:3f1c:1,2,10:2010-02-05:all"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
}

// ========================================
// Benchmarks
// ========================================

// BenchmarkShardedCache_Get_HighContention teste Get avec haute contention
func BenchmarkShardedCache_Get_HighContention(b *testing.B) {
	cache := NewShardedCache(16)
	defer cache.Close()
	cache.Set("shared_key", "shared_value", 5*time.Minute)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = cache.Get("shared_key")
		}
	})
}

// BenchmarkCacheKeyBuilder_vs_Sprintf compare le builder à fmt.Sprintf
func BenchmarkCacheKeyBuilder_vs_Sprintf(b *testing.B) {
	stores := []int{1, 2, 3, 4, 5}

	b.Run("Builder", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = NewCacheKeyBuilder().Add("stats").Add("dataset").AddInts(stores).Add(strconv.Itoa(i)).Build()
		}
	})

	b.Run("Sprintf", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = fmt.Sprintf("stats:%s:%v:%d", "dataset", stores, i)
		}
	})
}
