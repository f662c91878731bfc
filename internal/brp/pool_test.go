package brp

import (
	"testing"
	"time"

	"github.com/bevyremote/brpmcp/internal/config"
)

func TestNewPool_SeparatesCallsAndWatchTimeouts(t *testing.T) {
	cfg := &config.Config{
		ConnectTimeout:      time.Second,
		RequestTimeout:      5 * time.Second,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     time.Minute,
	}
	pool := NewPool(cfg)

	if pool.Calls().Timeout != cfg.RequestTimeout {
		t.Errorf("Calls() timeout = %v, want %v", pool.Calls().Timeout, cfg.RequestTimeout)
	}
	if pool.Watch().Timeout != 0 {
		t.Errorf("Watch() timeout = %v, want 0 (unbounded for long-lived SSE streams)", pool.Watch().Timeout)
	}
	if pool.Calls().Transport != pool.Watch().Transport {
		t.Error("Calls() and Watch() should share one underlying transport (connection pool)")
	}
}
