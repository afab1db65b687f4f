// Package cache is the pluggable keyed store for resolved page metadata.
//
// The default MemoryStore is a bounded in-process map with FIFO eviction
// and lazy TTL expiry on read. RedisStore and S3Store share resolved
// metadata across server instances. Keys derive deterministically from the
// render context URL and its sorted parameters, so insertion order of the
// parameter map never changes the key.
//
// Stores must be safe under concurrent access: eviction and expiry checks
// happen inside Get and Set and must not corrupt state under interleaving.
package cache
