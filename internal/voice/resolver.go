package voice

import (
	"math/rand/v2"
	"strings"
)

// DefaultVoice is the fixed fallback voice id used when no request
// parameter matches anything in the catalog.
const DefaultVoice = "en-US-AriaNeural"

// Query carries the caller's loose voice request. All fields are
// optional.
type Query struct {
	Voice   string // explicit id or substring of one
	Lang    string // locale prefix, e.g. "en" or "en-US"
	Gender  string // exact match, case-insensitive
	Country string // locale region suffix, e.g. "ZA"
}

// Resolve picks exactly one voice id from the catalog. It is total: when
// nothing matches it returns DefaultVoice rather than failing.
//
// Precedence is first-match: an explicit voice takes the substring path
// and never falls through to the filters, even if they were also
// supplied; filters narrow the catalog and pick uniformly at random among
// the survivors; anything else yields the default.
func Resolve(c *Catalog, q Query) string {
	if q.Voice != "" {
		clean := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(q.Voice), "neural", ""))
		for _, v := range c.All() {
			if strings.Contains(strings.ToLower(v.ID), clean) {
				return v.ID
			}
		}
		return DefaultVoice
	}

	if q.Lang != "" || q.Gender != "" || q.Country != "" {
		candidates := c.All()
		if q.Lang != "" {
			candidates = filter(candidates, func(v Descriptor) bool {
				return strings.HasPrefix(strings.ToLower(v.Locale), strings.ToLower(q.Lang))
			})
		}
		if q.Gender != "" {
			candidates = filter(candidates, func(v Descriptor) bool {
				return strings.EqualFold(v.Gender, q.Gender)
			})
		}
		if q.Country != "" {
			candidates = filter(candidates, func(v Descriptor) bool {
				parts := strings.Split(v.Locale, "-")
				return strings.EqualFold(parts[len(parts)-1], q.Country)
			})
		}
		if len(candidates) > 0 {
			return candidates[rand.IntN(len(candidates))].ID
		}
	}

	return DefaultVoice
}

func filter(voices []Descriptor, keep func(Descriptor) bool) []Descriptor {
	out := make([]Descriptor, 0, len(voices))
	for _, v := range voices {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
