// Package ratelimit implements a per-caller, per-route fixed-window request
// limiter.
//
// Each (caller, route) pair owns one counter that starts at the first request
// and expires Window later. Within a window at most MaxRequests calls succeed;
// the next request after expiry opens a fresh window. Expired records are
// treated as absent on read and removed by a periodic Cleanup sweep.
//
// State lives behind the Store interface. MemoryStore serves a single
// process; RedisStore shares counters between instances; the libsql store in
// internal/store persists them across restarts.
package ratelimit
