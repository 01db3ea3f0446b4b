package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	cfg := PostgresPoolConfig{}.withDefaults()

	if cfg.MaxOpenConns != 10 || cfg.MaxIdleConns != 5 {
		t.Fatalf("unexpected pool sizes %+v", cfg)
	}
	if cfg.ConnMaxLifetime != 30*time.Minute || cfg.ConnMaxIdleTime != 5*time.Minute {
		t.Fatalf("unexpected lifetimes %+v", cfg)
	}
	if cfg.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout %v", cfg.PingTimeout)
	}
}

func TestPostgresPoolConfig_ExplicitValuesKept(t *testing.T) {
	cfg := PostgresPoolConfig{MaxOpenConns: 2, PingTimeout: time.Second}.withDefaults()

	if cfg.MaxOpenConns != 2 {
		t.Fatalf("expected explicit max open conns kept, got %d", cfg.MaxOpenConns)
	}
	if cfg.PingTimeout != time.Second {
		t.Fatalf("expected explicit ping timeout kept, got %v", cfg.PingTimeout)
	}
}
