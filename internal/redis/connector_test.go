package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/auramark/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    100 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		WriteTimeout:   100 * time.Millisecond,
		PoolSize:       4,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestNew_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), testOptions(mr.Addr()), logger.New("error", false))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("client unusable: %v", err)
	}
}

func TestNew_TimesOut(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	start := time.Now()
	_, err := New(context.Background(), testOptions(addr), logger.New("error", false))
	if err == nil {
		t.Fatal("New() should fail when redis is down")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("New() took %v, expected to give up after ConnectTimeout", elapsed)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{"no address", func(o *ConnectOptions) { o.Addr = "" }},
		{"no connect timeout", func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{"no retry interval", func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{"no max wait", func(o *ConnectOptions) { o.MaxWait = 0 }},
		{"no ping timeout", func(o *ConnectOptions) { o.PingTimeout = 0 }},
		{"negative threshold", func(o *ConnectOptions) { o.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions("localhost:6379")
			tt.mutate(&opts)
			if _, err := New(context.Background(), opts, logger.New("error", false)); err == nil {
				t.Error("New() should reject invalid options")
			}
		})
	}
}
