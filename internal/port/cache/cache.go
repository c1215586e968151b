// Package cache defines the in-process caching port.
package cache

// Cache is a byte-oriented cache for rendered section payloads.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Close()
}
