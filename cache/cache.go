// Package cache provides the byte-oriented cache used for hot read paths
// such as movie detail responses.
package cache

import "errors"

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// Cache stores serialized values under string keys with optional TTLs
type Cache interface {
	Has(key string) bool
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttlSeconds ...int) error
	Forget(key string) error
	ForgetByMatch(pattern string) error
	Flush() error
}

// Noop satisfies Cache without storing anything; used when caching is disabled
type Noop struct{}

func (Noop) Has(string) bool                    { return false }
func (Noop) Get(string) ([]byte, error)         { return nil, ErrMiss }
func (Noop) Set(string, []byte, ...int) error   { return nil }
func (Noop) Forget(string) error                { return nil }
func (Noop) ForgetByMatch(string) error         { return nil }
func (Noop) Flush() error                       { return nil }
