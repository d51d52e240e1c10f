// Package cache keeps recently synthesized audio in memory so that speaking
// the same text with the same voice again skips synthesis. Entries are stored
// zstd-compressed and evicted least recently used first.
package cache
