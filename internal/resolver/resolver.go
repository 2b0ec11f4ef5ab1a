// Package resolver turns a channel identifier into an AI/human verdict by
// consulting, in priority order: manual overrides, the consensus store
// (through a TTL cache), and the bundled fallback dataset. Resolution always
// fails open: any storage failure degrades to "unknown", never to an error.
package resolver

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/pkg/identifier"
)

// OverrideLookup is the slice of the override store the resolver needs.
type OverrideLookup interface {
	Get(ctx context.Context, id string) (model.OverrideAction, bool)
}

// ConsensusLookup fetches the most recent consensus prediction for a channel
// addressed by internal ID or normalized identifier. found=false with a nil
// error means the store was reachable but holds no prediction.
type ConsensusLookup interface {
	Latest(ctx context.Context, channelID, normalized string) (isAI bool, found bool, err error)
}

// FallbackLookup is the static dataset tier.
type FallbackLookup interface {
	Lookup(normalized string) (model.Classification, bool)
}

// Resolver composes the lookup tiers behind a single Resolve call.
type Resolver struct {
	overrides OverrideLookup
	consensus ConsensusLookup
	fallback  FallbackLookup
	cache     *ttlCache
	log       zerolog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithClock injects a clock for the TTL cache (tests).
func WithClock(now Clock) Option {
	return func(r *Resolver) { r.cache.now = now }
}

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.cache.ttl = ttl }
}

func New(overrides OverrideLookup, consensus ConsensusLookup, fallback FallbackLookup, logger zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		overrides: overrides,
		consensus: consensus,
		fallback:  fallback,
		cache:     newTTLCache(DefaultTTL, nil),
		log:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the classification for a channel, or (Unknown, false) when
// no tier produces a verdict. channelID may be empty; rawID may be a handle,
// a UC... ID, or a URL path fragment in any of the accepted shapes.
func (r *Resolver) Resolve(ctx context.Context, rawID, channelID string) (model.Classification, bool) {
	normalized := identifier.Normalize(rawID)

	// Tier 1: manual override, checked under both keys the caller may have
	// stored it by.
	for _, key := range resolutionKeys(channelID, normalized) {
		if action, ok := r.overrides.Get(ctx, key); ok {
			switch action {
			case model.OverrideBlock:
				return model.AIGenerated, true
			case model.OverrideAllow:
				return model.HumanCreated, true
			}
		}
	}

	// Tier 2: consensus store behind the TTL cache.
	cacheKey := normalized
	if channelID != "" {
		cacheKey = channelID
	}
	if cls, found, ok := r.lookupConsensus(ctx, cacheKey, channelID, normalized); ok && found {
		return cls, true
	}

	// Tier 3: bundled dataset.
	if r.fallback != nil {
		if cls, ok := r.fallback.Lookup(normalized); ok {
			return cls, true
		}
	}

	return model.Unknown, false
}

// lookupConsensus serves tier 2 from the cache when fresh, otherwise reads
// the store. Successful reads (including "no prediction") are cached; errors
// are not, so the next resolution retries the store.
func (r *Resolver) lookupConsensus(ctx context.Context, cacheKey, channelID, normalized string) (model.Classification, bool, bool) {
	if cacheKey == "" {
		return model.Unknown, false, false
	}

	if cls, found, ok := r.cache.get(cacheKey); ok {
		return cls, found, true
	}

	if r.consensus == nil {
		return model.Unknown, false, false
	}

	isAI, found, err := r.consensus.Latest(ctx, channelID, normalized)
	if err != nil {
		// Fail open: treat the store as silent this round and do not
		// poison the cache with the outage.
		r.log.Warn().Err(err).Str("key", cacheKey).Msg("resolver: consensus lookup failed")
		return model.Unknown, false, false
	}

	cls := model.Unknown
	if found {
		cls = model.HumanCreated
		if isAI {
			cls = model.AIGenerated
		}
	}
	r.cache.put(cacheKey, cls, found)
	return cls, found, true
}

// ShouldHide resolves a channel and maps the verdict onto the caller's hide
// preferences. Unknown never hides, and no failure anywhere in the chain
// escapes as an error: a classification outage must not mass-hide content.
func (r *Resolver) ShouldHide(ctx context.Context, rawID string, prefs model.HidePreferences, channelID string) bool {
	cls, ok := r.Resolve(ctx, rawID, channelID)
	if !ok {
		return false
	}
	return cls.ShouldHide(prefs)
}

// Invalidate drops the cache entry for a single key (channel ID or
// identifier, in raw or normalized form).
func (r *Resolver) Invalidate(key string) {
	if key == "" {
		r.InvalidateAll()
		return
	}
	r.cache.invalidate(key)
	if norm := identifier.Normalize(key); norm != key {
		r.cache.invalidate(norm)
	}
}

// InvalidateAll clears the whole cache.
func (r *Resolver) InvalidateAll() {
	r.cache.invalidateAll()
}

// StartSweeper expires stale entries in the background until ctx is done.
func (r *Resolver) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.cache.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func resolutionKeys(channelID, normalized string) []string {
	keys := make([]string, 0, 2)
	if channelID != "" {
		keys = append(keys, channelID)
	}
	if normalized != "" && normalized != channelID {
		keys = append(keys, normalized)
	}
	return keys
}
