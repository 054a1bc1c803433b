package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SubjectVerdictKey returns the cache key for a subject verification verdict
func (r *CacheKeyStruct) SubjectVerdictKey(subject string) string {
	return fmt.Sprintf("verdict:subject:%s", normalizeKeyPart(subject))
}

// SubSubjectVerdictKey returns the cache key for a sub-subject verification verdict
func (r *CacheKeyStruct) SubSubjectVerdictKey(subject, subSubject string) string {
	return fmt.Sprintf("verdict:subject:%s:sub:%s", normalizeKeyPart(subject), normalizeKeyPart(subSubject))
}

// RateLimitKey returns the counter key for a named limiter and client
func (r *CacheKeyStruct) RateLimitKey(limiter, client string) string {
	return fmt.Sprintf("ratelimit:%s:%s", limiter, client)
}

func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

var CacheKey = NewCacheKeyStruct()
