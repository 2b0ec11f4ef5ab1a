// Package override holds per-user manual block/allow decisions. They are
// the highest-priority classification signal and never expire.
package override

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/internal/storage"
	"github.com/icar1an/serenity/pkg/identifier"
)

const (
	recordsKey    = "serenity:overrides"
	generationKey = "serenity:overrides:gen"
)

// Store persists overrides through a KV layer and serves reads from an
// in-memory index. A generation counter in the KV layer detects external
// mutation of the persisted records: when it moves, the index reloads on
// next access.
type Store struct {
	kv       storage.KV
	onChange func(key string)

	mu     sync.Mutex
	index  map[string]model.Override
	gen    int64
	loaded bool
}

// New creates a Store over the given KV layer. onChange is invoked with the
// normalized identifier after every mutation (the resolver hooks its cache
// invalidation here); it may be nil.
func New(kv storage.KV, onChange func(key string)) *Store {
	return &Store{
		kv:       kv,
		onChange: onChange,
		index:    make(map[string]model.Override),
	}
}

// Set upserts an override, replacing any existing record for the same
// normalized identifier. The record is persisted before Set returns.
func (s *Store) Set(ctx context.Context, rawID string, action model.OverrideAction, handle string) error {
	key := identifier.Normalize(rawID)
	if key == "" {
		return fmt.Errorf("override: empty identifier")
	}
	if _, ok := model.ParseOverrideAction(string(action)); !ok {
		return fmt.Errorf("override: invalid action %q", action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return err
	}

	s.index[key] = model.Override{
		Identifier: key,
		Handle:     identifier.NormalizeDisplay(handle),
		Action:     action,
		Timestamp:  time.Now(),
	}

	if err := s.persistLocked(ctx); err != nil {
		return err
	}

	s.notify(key)
	return nil
}

// Get returns the action for an identifier, if one is set.
func (s *Store) Get(ctx context.Context, rawID string) (model.OverrideAction, bool) {
	key := identifier.Normalize(rawID)
	if key == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		// Reads fail open: a storage error means "no override".
		log.Warn().Err(err).Msg("override: index refresh failed")
		return "", false
	}

	rec, ok := s.index[key]
	if !ok {
		return "", false
	}
	return rec.Action, true
}

// Remove deletes an override if present; removing a missing key is a no-op
// that still reports success.
func (s *Store) Remove(ctx context.Context, rawID string) error {
	key := identifier.Normalize(rawID)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return err
	}

	if _, ok := s.index[key]; !ok {
		return nil
	}
	delete(s.index, key)

	if err := s.persistLocked(ctx); err != nil {
		return err
	}

	s.notify(key)
	return nil
}

// List returns all overrides, ordered by identifier for stable output.
func (s *Store) List(ctx context.Context) ([]model.Override, error) {
	return s.list(ctx, "")
}

// ListBlocked returns only block overrides.
func (s *Store) ListBlocked(ctx context.Context) ([]model.Override, error) {
	return s.list(ctx, model.OverrideBlock)
}

// ListAllowed returns only allow overrides.
func (s *Store) ListAllowed(ctx context.Context) ([]model.Override, error) {
	return s.list(ctx, model.OverrideAllow)
}

func (s *Store) list(ctx context.Context, action model.OverrideAction) ([]model.Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}

	out := make([]model.Override, 0, len(s.index))
	for _, rec := range s.index {
		if action == "" || rec.Action == action {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

// ClearAll removes every override.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = make(map[string]model.Override)
	if err := s.kv.Delete(ctx, recordsKey); err != nil {
		return err
	}
	gen, err := s.kv.Incr(ctx, generationKey)
	if err != nil {
		return err
	}
	s.gen = gen
	s.loaded = true

	s.notify("")
	return nil
}

// refreshLocked reloads the index when the persisted generation has moved
// past the one we indexed (another process wrote through the same KV).
func (s *Store) refreshLocked(ctx context.Context) error {
	gen, err := s.currentGeneration(ctx)
	if err != nil {
		return err
	}
	if s.loaded && gen == s.gen {
		return nil
	}

	data, ok, err := s.kv.Get(ctx, recordsKey)
	if err != nil {
		return err
	}

	index := make(map[string]model.Override)
	if ok {
		if err := json.Unmarshal(data, &index); err != nil {
			return fmt.Errorf("override: corrupt records: %w", err)
		}
	}

	s.index = index
	s.gen = gen
	s.loaded = true
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.index)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, recordsKey, data); err != nil {
		return err
	}
	gen, err := s.kv.Incr(ctx, generationKey)
	if err != nil {
		return err
	}
	s.gen = gen
	return nil
}

func (s *Store) currentGeneration(ctx context.Context) (int64, error) {
	data, ok, err := s.kv.Get(ctx, generationKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	var gen int64
	if _, err := fmt.Sscanf(string(data), "%d", &gen); err != nil {
		return 0, nil
	}
	return gen, nil
}

func (s *Store) notify(key string) {
	if s.onChange != nil {
		s.onChange(key)
	}
}
