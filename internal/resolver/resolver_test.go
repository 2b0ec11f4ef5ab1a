package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/icar1an/serenity/internal/fallback"
	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/internal/override"
	"github.com/icar1an/serenity/internal/storage"
	"github.com/icar1an/serenity/pkg/identifier"
)

type fakeOverrides struct {
	actions map[string]model.OverrideAction
}

func (f *fakeOverrides) Get(_ context.Context, id string) (model.OverrideAction, bool) {
	// The real store normalizes the key inside Get (see override.Store.Get).
	a, ok := f.actions[identifier.Normalize(id)]
	return a, ok
}

// fakeConsensus counts store reads so tests can assert cache behavior.
type fakeConsensus struct {
	mu    sync.Mutex
	calls int
	isAI  bool
	found bool
	err   error
}

func (f *fakeConsensus) Latest(_ context.Context, _, _ string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.isAI, f.found, f.err
}

func (f *fakeConsensus) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFallback struct {
	entries map[string]model.Classification
}

func (f *fakeFallback) Lookup(normalized string) (model.Classification, bool) {
	cls, ok := f.entries[normalized]
	return cls, ok
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestResolver(ov *fakeOverrides, cs *fakeConsensus, fb *fakeFallback, clk *fixedClock) *Resolver {
	if ov == nil {
		ov = &fakeOverrides{}
	}
	opts := []Option{}
	if clk != nil {
		opts = append(opts, WithClock(clk.Now))
	}
	var consensus ConsensusLookup
	if cs != nil {
		consensus = cs
	}
	var fallback FallbackLookup
	if fb != nil {
		fallback = fb
	}
	return New(ov, consensus, fallback, zerolog.Nop(), opts...)
}

func TestResolve_OverrideBeatsConsensus(t *testing.T) {
	ov := &fakeOverrides{actions: map[string]model.OverrideAction{
		"somechannel": model.OverrideAllow,
	}}
	cs := &fakeConsensus{isAI: true, found: true}
	r := newTestResolver(ov, cs, nil, nil)

	cls, ok := r.Resolve(context.Background(), "@SomeChannel", "")
	if !ok || cls != model.HumanCreated {
		t.Fatalf("Resolve = (%v, %v), want (human_created, true)", cls, ok)
	}
	if cs.callCount() != 0 {
		t.Errorf("consensus consulted %d times despite override", cs.callCount())
	}
}

func TestResolve_OverrideCheckedUnderChannelID(t *testing.T) {
	ov := &fakeOverrides{actions: map[string]model.OverrideAction{
		"ucaaaaaaaaaaaaaaaaaaaaaa": model.OverrideBlock,
	}}
	r := newTestResolver(ov, nil, nil, nil)

	cls, ok := r.Resolve(context.Background(), "@unrelated", "UCAAAAAAAAAAAAAAAAAAAAAA")
	if !ok || cls != model.AIGenerated {
		t.Fatalf("Resolve = (%v, %v), want (ai_generated, true)", cls, ok)
	}
}

func TestResolve_ConsensusVerdicts(t *testing.T) {
	for _, c := range []struct {
		isAI bool
		want model.Classification
	}{
		{true, model.AIGenerated},
		{false, model.HumanCreated},
	} {
		cs := &fakeConsensus{isAI: c.isAI, found: true}
		r := newTestResolver(nil, cs, nil, nil)
		cls, ok := r.Resolve(context.Background(), "@channel", "")
		if !ok || cls != c.want {
			t.Errorf("isAI=%v: Resolve = (%v, %v), want (%v, true)", c.isAI, cls, ok, c.want)
		}
	}
}

func TestResolve_CacheServesRepeatReads(t *testing.T) {
	cs := &fakeConsensus{isAI: true, found: true}
	clk := &fixedClock{now: time.Unix(1700000000, 0)}
	r := newTestResolver(nil, cs, nil, clk)

	for i := 0; i < 10; i++ {
		if cls, ok := r.Resolve(context.Background(), "@cached", ""); !ok || cls != model.AIGenerated {
			t.Fatalf("read %d: Resolve = (%v, %v)", i, cls, ok)
		}
	}
	if got := cs.callCount(); got != 1 {
		t.Errorf("consensus reads = %d, want 1 (cache must absorb repeats)", got)
	}

	clk.Advance(DefaultTTL)
	r.Resolve(context.Background(), "@cached", "")
	if got := cs.callCount(); got != 2 {
		t.Errorf("consensus reads after TTL expiry = %d, want 2", got)
	}
}

func TestResolve_NegativeResultIsCached(t *testing.T) {
	cs := &fakeConsensus{found: false}
	fb := &fakeFallback{entries: map[string]model.Classification{
		"somechannel": model.AIAssisted,
	}}
	r := newTestResolver(nil, cs, fb, nil)

	for i := 0; i < 3; i++ {
		cls, ok := r.Resolve(context.Background(), "@SomeChannel", "")
		if !ok || cls != model.AIAssisted {
			t.Fatalf("read %d: Resolve = (%v, %v), want (ai_assisted, true)", i, cls, ok)
		}
	}
	if got := cs.callCount(); got != 1 {
		t.Errorf("consensus reads = %d, want 1 (no-prediction result must be cached)", got)
	}
}

func TestResolve_ErrorsAreNotCached(t *testing.T) {
	cs := &fakeConsensus{err: errors.New("connection refused")}
	r := newTestResolver(nil, cs, nil, nil)

	if cls, ok := r.Resolve(context.Background(), "@down", ""); ok || cls != model.Unknown {
		t.Fatalf("Resolve during outage = (%v, %v), want (unknown, false)", cls, ok)
	}

	// Store recovers; the next resolution must retry it.
	cs.mu.Lock()
	cs.err = nil
	cs.isAI = true
	cs.found = true
	cs.mu.Unlock()

	if cls, ok := r.Resolve(context.Background(), "@down", ""); !ok || cls != model.AIGenerated {
		t.Fatalf("Resolve after recovery = (%v, %v), want (ai_generated, true)", cls, ok)
	}
}

func TestResolve_FallbackTier(t *testing.T) {
	fb := &fakeFallback{entries: map[string]model.Classification{
		"somechannel": model.AIGenerated,
	}}
	r := newTestResolver(nil, nil, fb, nil)

	cls, ok := r.Resolve(context.Background(), "/c/SomeChannel/", "")
	if !ok || cls != model.AIGenerated {
		t.Fatalf("Resolve = (%v, %v), want (ai_generated, true)", cls, ok)
	}
}

func TestResolve_NoTierProducesUnknown(t *testing.T) {
	r := newTestResolver(nil, &fakeConsensus{}, &fakeFallback{}, nil)
	cls, ok := r.Resolve(context.Background(), "@nobody", "")
	if ok || cls != model.Unknown {
		t.Fatalf("Resolve = (%v, %v), want (unknown, false)", cls, ok)
	}
}

func TestInvalidate_ForcesReread(t *testing.T) {
	cs := &fakeConsensus{isAI: false, found: true}
	r := newTestResolver(nil, cs, nil, nil)

	r.Resolve(context.Background(), "@flipme", "")
	if got := cs.callCount(); got != 1 {
		t.Fatalf("consensus reads = %d, want 1", got)
	}

	cs.mu.Lock()
	cs.isAI = true
	cs.mu.Unlock()

	// Invalidation may arrive in raw form; the normalized entry must go too.
	r.Invalidate("@FlipMe")

	cls, ok := r.Resolve(context.Background(), "@flipme", "")
	if !ok || cls != model.AIGenerated {
		t.Fatalf("Resolve after invalidate = (%v, %v), want (ai_generated, true)", cls, ok)
	}
	if got := cs.callCount(); got != 2 {
		t.Errorf("consensus reads = %d, want 2", got)
	}
}

func TestShouldHide_MapsPreferences(t *testing.T) {
	cs := &fakeConsensus{isAI: true, found: true}
	r := newTestResolver(nil, cs, nil, nil)

	if !r.ShouldHide(context.Background(), "@aichannel", model.HidePreferences{HideAI: true}, "") {
		t.Error("AI channel with HideAI set should hide")
	}
	if r.ShouldHide(context.Background(), "@aichannel", model.HidePreferences{}, "") {
		t.Error("AI channel without HideAI set should not hide")
	}
}

// Full chain with the real override store and fallback dataset: a channel
// known only to the bundled dataset resolves from it until a manual allow
// takes priority.
func TestResolve_OverrideStoreAndDataset(t *testing.T) {
	ctx := context.Background()

	ds := fallback.New(map[string]string{"somechannel": "ai_generated"})
	cs := &fakeConsensus{found: false}

	var res *Resolver
	ov := override.New(storage.NewMemoryKV(), func(key string) { res.Invalidate(key) })
	res = New(ov, cs, ds, zerolog.Nop())

	cls, ok := res.Resolve(ctx, "@SomeChannel", "")
	if !ok || cls != model.AIGenerated {
		t.Fatalf("Resolve before override = (%v, %v), want (ai_generated, true)", cls, ok)
	}

	if err := ov.Set(ctx, "somechannel", model.OverrideAllow, "@SomeChannel"); err != nil {
		t.Fatalf("override set: %v", err)
	}

	cls, ok = res.Resolve(ctx, "@SomeChannel", "")
	if !ok || cls != model.HumanCreated {
		t.Fatalf("Resolve after allow override = (%v, %v), want (human_created, true)", cls, ok)
	}

	if err := ov.Remove(ctx, "somechannel"); err != nil {
		t.Fatalf("override remove: %v", err)
	}

	cls, ok = res.Resolve(ctx, "@SomeChannel", "")
	if !ok || cls != model.AIGenerated {
		t.Fatalf("Resolve after override removal = (%v, %v), want (ai_generated, true)", cls, ok)
	}
}

func TestShouldHide_FailsOpen(t *testing.T) {
	cs := &fakeConsensus{err: errors.New("store down")}
	prefs := model.HidePreferences{HideAI: true, HideAIAssisted: true, HideMixed: true}
	r := newTestResolver(nil, cs, nil, nil)

	if r.ShouldHide(context.Background(), "@anything", prefs, "") {
		t.Error("a classification outage must never hide content")
	}
}
