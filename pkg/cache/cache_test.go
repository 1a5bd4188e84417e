package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestKeyIncludesFingerprint(t *testing.T) {
	if Key("d1", "f1") == Key("d1", "f2") {
		t.Fatal("fingerprint must change the key")
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("unexpected hit")
	}
	_ = c.Set(ctx, "k", Entry{Text: "HI\n", Unknowns: 1})
	e, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || e.Text != "HI\n" || e.Unknowns != 1 {
		t.Fatalf("got %+v %v %v", e, ok, err)
	}
}

// Integration test against a live server. Skips unless REDIS_TEST_URL is set.
func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set; skipping redis integration test")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer r.Close()
	key := Key("test-digest", "test-fingerprint")
	if err := r.Set(ctx, key, Entry{Text: "LOT\n"}); err != nil {
		t.Fatal(err)
	}
	e, ok, err := r.Get(ctx, key)
	if err != nil || !ok || e.Text != "LOT\n" {
		t.Fatalf("got %+v %v %v", e, ok, err)
	}
	if _, ok, err := r.Get(ctx, key+"-missing"); ok || err != nil {
		t.Fatalf("miss: %v %v", ok, err)
	}
}
