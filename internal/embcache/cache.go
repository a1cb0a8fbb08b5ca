// Package embcache provides a read-through Redis cache for embeddings so
// repeated queries do not re-bill the embedding provider.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/redis/rueidis"
)

const keyPrefix = "veritext:emb:"

// ErrKeyNotFound is returned by a Store when the key has no cached value.
var ErrKeyNotFound = errors.New("cache key not found")

// Store is the key-value interface the cache consumes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// EmbeddingClient is the inner embedder being decorated.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RueidisStore adapts a rueidis client to the Store interface.
type RueidisStore struct {
	client rueidis.Client
	ttl    time.Duration
}

// NewRueidisStore connects to Redis at the given address.
func NewRueidisStore(addr string, ttl time.Duration) (*RueidisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RueidisStore{client: client, ttl: ttl}, nil
}

func (s *RueidisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *RueidisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Do(ctx,
		s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(s.ttl).Build(),
	).Error()
}

// Close releases the underlying Redis connection.
func (s *RueidisStore) Close() {
	s.client.Close()
}

// CachedEmbedder caches embeddings in a key-value store. Cache failures are
// logged and treated as misses; the embedder itself never fails because of
// the cache.
type CachedEmbedder struct {
	inner EmbeddingClient
	store Store
}

// New creates a caching decorator around an embedding client.
func New(inner EmbeddingClient, store Store) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: store}
}

// GenerateEmbedding returns a cached embedding or calls the inner embedder.
func (c *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		return vec, nil
	}

	vec, err := c.inner.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	c.putToCache(ctx, key, vec)
	return vec, nil
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Printf("embcache: failed to read %s: %v", key, err)
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		log.Printf("embcache: corrupt entry %s: %v", key, err)
		return nil, false
	}

	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	if err := c.store.Set(ctx, key, vectorToBytes(vec)); err != nil {
		log.Printf("embcache: failed to write %s: %v", key, err)
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(h[:])
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: len=%d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
