package database

import (
	"context"
	"testing"

	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/rs/zerolog"
)

func TestNewRedisClientDisabled(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), &config.Config{}, zerolog.Nop())
	if err != nil || rdb != nil {
		t.Errorf("NewRedisClient = %v, %v; want nil, nil", rdb, err)
	}
}

func TestNewRedisClientBadURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), &config.Config{RedisURL: "http://nope"}, zerolog.Nop()); err == nil {
		t.Error("expected parse error")
	}
}
