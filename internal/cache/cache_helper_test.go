package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedGrievance struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, GrievanceCacheConfig.Prefix), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	want := cachedGrievance{ID: 42, Title: "Broken projector"}
	if err := helper.Set(ctx, "id:42", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedGrievance
	if err := helper.Get(ctx, "id:42", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("Got %+v, want %+v", got, want)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got cachedGrievance
	if err := helper.Get(context.Background(), "id:404", &got); err != ErrCacheNotFound {
		t.Errorf("Expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_KeysArePrefixed(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", cachedGrievance{ID: 1}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if !mr.Exists("grievance:id:1") {
		t.Errorf("Expected key grievance:id:1, have %v", mr.Keys())
	}
}

func TestCacheHelper_DeleteAndExists(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"id:1", "id:2"} {
		if err := helper.Set(ctx, key, cachedGrievance{}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err := helper.Exists(ctx, "id:1")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Key should be gone after delete")
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"owner:u1:page:1", "owner:u1:page:2", "owner:u2:page:1"} {
		if err := helper.Set(ctx, key, cachedGrievance{}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "owner:u1:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	if mr.Exists("grievance:owner:u1:page:1") || mr.Exists("grievance:owner:u1:page:2") {
		t.Error("u1 pages should be invalidated")
	}
	if !mr.Exists("grievance:owner:u2:page:1") {
		t.Error("u2 pages should survive")
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedGrievance{ID: 7, Title: "fetched"}, nil
	}

	var first cachedGrievance
	if err := helper.CacheOrExecute(ctx, "id:7", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 || first.Title != "fetched" {
		t.Fatalf("Expected one fetch, got calls=%d result=%+v", calls, first)
	}

	// The write-back is asynchronous; wait for it to land before the
	// second read.
	deadline := time.Now().Add(time.Second)
	for {
		exists, err := helper.Exists(ctx, "id:7")
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if exists {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache write-back never landed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var second cachedGrievance
	if err := helper.CacheOrExecute(ctx, "id:7", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected cache hit on second call, fetch ran %d times", calls)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}
	if err := helper.Get(ctx, "k", new(string)); err != ErrCacheNotAvailable {
		t.Errorf("Expected ErrCacheNotAvailable, got %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete with nil client should be a no-op, got %v", err)
	}
}
