package redis

import (
	"testing"

	"github.com/evolvespaces/evolve-backend/pkg/config"
)

func configRedis(url string) config.RedisConfig {
	return config.RedisConfig{URL: url}
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	if got := c.IdempotencyKey("subscriptions", "abc"); got != "evolve:idempotency:subscriptions:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.IdempotencyKey("", "abc"); got != "evolve:idempotency:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestAccessSessionKey(t *testing.T) {
	c := &Client{}
	if got := c.AccessSessionKey("jti-1"); got != "evolve:session:access:jti-1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(configRedis("")); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(configRedis("redis://localhost:6379/2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
