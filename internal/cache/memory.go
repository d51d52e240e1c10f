package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrItemTooLarge is returned when a compressed item exceeds the capacity.
var ErrItemTooLarge = errors.New("item too large for cache")

// Stats holds cache metrics.
type Stats struct {
	Capacity  int64 // Maximum compressed size in bytes
	Size      int64 // Current compressed size in bytes
	Items     int
	Hits      int64
	Misses    int64
	Evictions int64
}

// AudioCache is an LRU cache of PCM audio bounded by compressed size.
type AudioCache struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.Mutex
	stats Stats
}

type entry struct {
	key        string
	compressed []byte
}

// New creates a cache holding at most capacity compressed bytes.
func New(capacity int64) (*AudioCache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &AudioCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		encoder:  enc,
		decoder:  dec,
		stats:    Stats{Capacity: capacity},
	}, nil
}

// Key derives a cache key from the voice and text.
func Key(voice, text string) string {
	sum := sha256.Sum256([]byte(voice + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Get returns the decompressed audio stored under key.
func (c *AudioCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	e := elem.Value.(*entry)
	pcm, err := c.decoder.DecodeAll(e.compressed, nil)
	if err != nil {
		c.removeElement(elem)
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	return pcm, true
}

// Put compresses and stores pcm under key, evicting older entries as needed.
func (c *AudioCache) Put(key string, pcm []byte) error {
	compressed := c.encoder.EncodeAll(pcm, nil)
	n := int64(len(compressed))

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	if n > c.capacity {
		return ErrItemTooLarge
	}
	for c.size+n > c.capacity && c.eviction.Len() > 0 {
		c.removeElement(c.eviction.Back())
		c.stats.Evictions++
	}

	c.items[key] = c.eviction.PushFront(&entry{key: key, compressed: compressed})
	c.size += n
	return nil
}

// Clear removes all entries.
func (c *AudioCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// Stats returns a snapshot of the cache metrics.
func (c *AudioCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.size
	s.Items = len(c.items)
	return s
}

// must be called with lock held
func (c *AudioCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	c.size -= int64(len(e.compressed))
}
