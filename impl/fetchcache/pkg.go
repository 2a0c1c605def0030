// Package fetchcache is the single source of truth for idempotent JSON fetches. It holds
// fetched documents in memory keyed by request URL, serves them until they are older
// than the TTL, and makes sure that concurrent lookups of the same key share one upstream
// fetch - which is common at startup when every consumer asks for the artwork metadata
// at once.
//
// When an upstream fetch fails, the cache degrades to the last known good value for the
// key if it ever had one. Only a key that has never been fetched successfully surfaces
// the error.
package fetchcache
