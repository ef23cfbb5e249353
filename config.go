package sitekit

import (
	"errors"
	"strings"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

var (
	ErrDefaultLocaleRequired = errors.New("sitekit: default locale is required")
	ErrCacheKeysRequired     = errors.New("sitekit: cache key serializer is required when caching is enabled")
)

// Config wires the module. A nil DB selects the in-memory stores, which is
// enough for tests and single-process tools; anything durable needs a bun
// handle.
type Config struct {
	// DB is the shared bun handle. Optional.
	DB *bun.DB

	// DefaultLocale receives translatable values submitted without an
	// explicit locale. Defaults to "en".
	DefaultLocale string

	// Logger supplies module-scoped loggers. Optional; logging is dropped
	// when absent.
	Logger interfaces.LoggerProvider

	// Authorizer gates writes. Defaults to allow-all.
	Authorizer interfaces.Authorizer

	// Revalidate is invoked after successful writes with cache tags.
	Revalidate interfaces.RevalidateHook

	// Cache and CacheKeys enable read-through caching on the lookup
	// repositories (locales, content types, pages). Both must be set.
	Cache     cache.CacheService
	CacheKeys cache.KeySerializer
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
	}
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	c.DefaultLocale = strings.TrimSpace(c.DefaultLocale)
	if c.DefaultLocale == "" {
		return ErrDefaultLocaleRequired
	}
	if c.Cache != nil && c.CacheKeys == nil {
		return ErrCacheKeysRequired
	}
	return nil
}
