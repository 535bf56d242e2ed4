package voice

import (
	"context"
	"sort"

	"github.com/edgespeak/edgespeak/internal/engine"
)

// Catalog is the set of voices available at one point in time, in the
// order the engine reported them. It is fetched fresh per request; there
// is no cross-request cache.
type Catalog struct {
	voices []Descriptor
}

// Fetch pulls the full voice list from the engine and normalizes each
// entry. The engine's ordering is preserved.
func Fetch(ctx context.Context, eng engine.Engine) (*Catalog, error) {
	raw, err := eng.ListVoices(ctx)
	if err != nil {
		return nil, err
	}
	voices := make([]Descriptor, 0, len(raw))
	for _, v := range raw {
		voices = append(voices, Normalize(v))
	}
	return &Catalog{voices: voices}, nil
}

// FromDescriptors builds a catalog directly, preserving order. Used by
// tests and by views that re-wrap a filtered slice.
func FromDescriptors(voices []Descriptor) *Catalog {
	return &Catalog{voices: voices}
}

// All returns the voices in fetch order. Callers must not mutate the
// returned slice.
func (c *Catalog) All() []Descriptor {
	return c.voices
}

// Len returns the number of voices in the catalog.
func (c *Catalog) Len() int {
	return len(c.voices)
}

// SortedByLocale returns a copy of the catalog stably sorted by locale.
func (c *Catalog) SortedByLocale() []Descriptor {
	out := make([]Descriptor, len(c.voices))
	copy(out, c.voices)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Locale < out[j].Locale
	})
	return out
}

// UniqueByLocale keeps the first-encountered voice per locale and returns
// the survivors sorted by locale.
func (c *Catalog) UniqueByLocale() []Descriptor {
	seen := make(map[string]bool, len(c.voices))
	out := make([]Descriptor, 0, len(c.voices))
	for _, v := range c.voices {
		if seen[v.Locale] {
			continue
		}
		seen[v.Locale] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Locale < out[j].Locale
	})
	return out
}
