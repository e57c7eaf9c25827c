package persistence

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/config"
)

func TestPostgresPing_NilPool(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("dsn-less construction failed: %v", err)
	}
	if err := pg.Ping(context.Background()); err == nil {
		t.Fatalf("ping with no pool reported healthy")
	}

	var missing *Postgres
	if err := missing.Ping(context.Background()); err == nil {
		t.Fatalf("ping on nil receiver reported healthy")
	}
}

func TestRedisPing_NilClient(t *testing.T) {
	var missing *Redis
	if err := missing.Ping(context.Background()); err == nil {
		t.Fatalf("ping on nil receiver reported healthy")
	}
}
