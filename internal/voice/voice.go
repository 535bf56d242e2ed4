// Package voice normalizes the engine's raw voice catalog and resolves a
// caller's loose voice request into one concrete voice id.
package voice

import (
	"strings"

	"github.com/edgespeak/edgespeak/internal/engine"
)

const (
	// Fallback glyphs for locales whose region cannot be mapped to a
	// regional-indicator pair.
	globeGlyph = "\U0001F310"              // locale carries no region at all
	flagGlyph  = "\U0001F3F3\uFE0F"        // region present but malformed
	riBase     = rune(0x1F1E6) - rune('A') // 'A' -> regional indicator A
)

// Descriptor is the normalized identity of one synthesis voice. Built
// fresh on every catalog fetch and never mutated afterwards.
type Descriptor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Locale       string `json:"locale"`
	Flag         string `json:"flag"`
	FullLanguage string `json:"full_lang"`
}

// Normalize converts one raw catalog entry into a Descriptor. It is total
// over well-formed input: derived fields degrade to documented fallbacks
// instead of failing.
func Normalize(raw engine.RawVoice) Descriptor {
	return Descriptor{
		ID:           raw.ShortName,
		Name:         displayName(raw.ShortName),
		Gender:       raw.Gender,
		Locale:       raw.Locale,
		Flag:         FlagGlyph(raw.Locale),
		FullLanguage: fullLanguage(raw.FriendlyName, raw.Locale),
	}
}

// displayName extracts the short human label from a voice id such as
// "en-US-AriaNeural" -> "Aria". Ids without the locale prefix pass
// through verbatim.
func displayName(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) > 2 {
		return strings.TrimSuffix(parts[2], "Neural")
	}
	return id
}

// FlagGlyph derives the regional-indicator pair for the locale's region
// code. Locales without a region yield a globe, regions shorter than two
// characters yield a placeholder flag.
func FlagGlyph(locale string) string {
	if !strings.Contains(locale, "-") {
		return globeGlyph
	}
	region := []rune(locale[strings.LastIndex(locale, "-")+1:])
	if len(region) < 2 {
		return flagGlyph
	}
	return string(region[0]+riBase) + string(region[1]+riBase)
}

// fullLanguage takes the trailing segment of the friendly name, e.g.
// "Microsoft Aria Online (Natural) - English (United States)" ->
// "English (United States)". An absent friendly name falls back to the
// raw locale.
func fullLanguage(friendly, locale string) string {
	if friendly == "" {
		return locale
	}
	parts := strings.Split(friendly, " - ")
	return parts[len(parts)-1]
}
