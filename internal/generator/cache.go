package generator

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedGenerator memoises subject verdicts in Redis. Quiz content,
// explanations and reflections always go to the wrapped Generator.
// Redis failures are logged and bypassed.
type CachedGenerator struct {
	Generator
	rdb redis.Cmdable
	ttl time.Duration
	log zerolog.Logger
}

func NewCachedGenerator(inner Generator, rdb redis.Cmdable, ttl time.Duration, log zerolog.Logger) *CachedGenerator {
	return &CachedGenerator{
		Generator: inner,
		rdb:       rdb,
		ttl:       ttl,
		log:       log.With().Str("component", "verdict_cache").Logger(),
	}
}

func (g *CachedGenerator) VerifySubject(ctx context.Context, subject string) (model.SubjectVerdict, error) {
	key := config.CacheKey.SubjectVerdictKey(subject)

	var v model.SubjectVerdict
	if g.load(ctx, key, &v) {
		return v, nil
	}

	v, err := g.Generator.VerifySubject(ctx, subject)
	if err != nil {
		return v, err
	}
	v = v.WithDefaults(subject)
	g.store(ctx, key, &v)
	return v, nil
}

func (g *CachedGenerator) VerifySubSubject(ctx context.Context, subject, subSubject string) (model.SubSubjectVerdict, error) {
	key := config.CacheKey.SubSubjectVerdictKey(subject, subSubject)

	var v model.SubSubjectVerdict
	if g.load(ctx, key, &v) {
		return v, nil
	}

	v, err := g.Generator.VerifySubSubject(ctx, subject, subSubject)
	if err != nil {
		return v, err
	}
	v = v.WithDefaults(subject, subSubject)
	g.store(ctx, key, &v)
	return v, nil
}

func (g *CachedGenerator) load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := g.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.log.Warn().Err(err).Str("key", key).Msg("Verdict cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cached verdict")
		return false
	}
	return true
}

// store caches v only when it would pass validation downstream.
func (g *CachedGenerator) store(ctx context.Context, key string, v interface{}) {
	if validator.Validate(v) != nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := g.rdb.Set(ctx, key, raw, g.ttl).Err(); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("Verdict cache write failed")
	}
}
