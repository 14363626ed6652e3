package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ahrav/go-faceoff/internal/ports"
)

// cachedLLM serves repeated requests from a cache store, making reruns of
// the same statement set free.
type cachedLLM struct {
	next  CoreLLM
	store ports.CacheStore
	ttl   time.Duration
}

// cachedResponse is the serialized form of a cached provider response.
type cachedResponse struct {
	Response  string `json:"response"`
	TokensIn  int    `json:"tokens_in"`
	TokensOut int    `json:"tokens_out"`
}

// CacheMiddleware creates middleware that caches successful responses keyed
// by model, prompt, and request options. A zero ttl caches without expiry.
// Failures are never cached, and cache errors degrade to a provider call.
func CacheMiddleware(store ports.CacheStore, ttl time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &cachedLLM{
			next:  next,
			store: store,
			ttl:   ttl,
		}
	}
}

// DoRequest returns a cached response when one exists, otherwise forwards
// the request and caches the successful result.
func (c *cachedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	key := c.cacheKey(prompt, opts)

	if cached, ok := c.lookup(ctx, key); ok {
		return cached.Response, cached.TokensIn, cached.TokensOut, nil
	}

	response, tokensIn, tokensOut, err := c.next.DoRequest(ctx, prompt, opts)
	if err != nil {
		return response, tokensIn, tokensOut, err
	}

	payload, marshalErr := json.Marshal(cachedResponse{
		Response:  response,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
	})
	if marshalErr == nil {
		// Best effort; a failed write only costs a future cache miss.
		_ = c.store.Set(ctx, key, string(payload), c.ttl)
	}

	return response, tokensIn, tokensOut, nil
}

// lookup fetches and decodes a cached response.
// Corrupt or unreadable entries count as misses.
func (c *cachedLLM) lookup(ctx context.Context, key string) (cachedResponse, bool) {
	value, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return cachedResponse{}, false
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return cachedResponse{}, false
	}

	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return cachedResponse{}, false
	}

	return cached, true
}

// cacheKey derives a stable key from the model, prompt, and options.
// Option maps are serialized in sorted key order so logically equal
// requests hash identically.
func (c *cachedLLM) cacheKey(prompt string, opts map[string]any) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", c.next.GetModel(), prompt)

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, opts[k])
	}

	return "llm:" + hex.EncodeToString(h.Sum(nil))
}

// GetModel returns the model name from the wrapped implementation.
func (c *cachedLLM) GetModel() string { return c.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (c *cachedLLM) SetModel(m string) { c.next.SetModel(m) }
