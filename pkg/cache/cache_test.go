package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// exercise runs the behaviour every storing backend shares.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("layout"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || !bytes.Equal(data, []byte("layout")) {
		t.Errorf("Get(k) = %q, %v, %v; want layout hit", data, hit, err)
	}

	if err := c.Set(ctx, "k", []byte("newer"), 0); err != nil {
		t.Fatalf("Set overwrite error: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); !bytes.Equal(data, []byte("newer")) {
		t.Errorf("Get after overwrite = %q, want newer", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want nil miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestMemoryCache_Eviction(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("least recently used entry should be evicted")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(4)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, Len = %d", c.Len())
	}
}

func TestMemoryCache_CopiesData(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(4)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	got[1] = 'y'
	if again, _, _ := c.Get(ctx, "k"); string(again) != "abc" {
		t.Errorf("stored value changed to %q", again)
	}
}

func TestMemoryCache_InvalidSize(t *testing.T) {
	if _, err := NewMemoryCache(-1); err == nil {
		t.Error("NewMemoryCache(-1) should fail")
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, c)
}

func TestFileCache_ExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_ = c.Set(ctx, "old", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry file should be removed")
	}

	path := c.path("bad")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("{not json"), 0o644)
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cache dir still exists after Clear: %v", err)
	}
	// Set recreates the layout.
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Errorf("Set after Clear error: %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("PEDIGREE_REDIS_URL")
	if url == "" {
		t.Skip("PEDIGREE_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), RedisConfig{URL: url, Prefix: "pedigree-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisConfig{URL: "http://nope"}); err == nil {
		t.Error("NewRedisCache should reject a non-redis URL")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j1, err := HashJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if j2, _ := HashJSON(map[string]int{"a": 2}); j1 == j2 {
		t.Error("HashJSON should differ for different values")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail on unencodable values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := LayoutKeyOpts{Packed: true, AlignSpouses: true, Width: 10}
	lk1 := k.LayoutKey("hash123", base)
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey unexpected: %s", lk1)
	}
	if lk1 != k.LayoutKey("hash123", base) {
		t.Error("LayoutKey should be deterministic")
	}

	changed := base
	changed.Width = 12
	if lk1 == k.LayoutKey("hash123", changed) {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 == k.LayoutKey("hash456", base) {
		t.Error("Different pedigree hashes should produce different keys")
	}

	if k.DepthKey("h", true) == k.DepthKey("h", false) {
		t.Error("DepthKey should depend on spouse alignment")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "user:123:")
	inner := NewDefaultKeyer()

	if got, want := scoped.LayoutKey("h", LayoutKeyOpts{}), "user:123:"+inner.LayoutKey("h", LayoutKeyOpts{}); got != want {
		t.Errorf("LayoutKey = %s, want %s", got, want)
	}
	if got := scoped.DepthKey("h", true); !strings.HasPrefix(got, "user:123:depth:") {
		t.Errorf("DepthKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.DepthKey("h", false); key != "prefix:"+NewDefaultKeyer().DepthKey("h", false) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	errFatal := errors.New("fatal")
	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantErr   bool
		wantCalls int
	}{
		{"success", 0, true, false, 1},
		{"non-retryable stops", 5, false, true, 1},
		{"retry then succeed", 1, true, false, 2},
		{"attempts exhausted", 5, true, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, 3, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.retryable {
					return Retryable(errFatal)
				}
				return errFatal
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, 3, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
