// Package stub provides a canned in-process engine for tests and offline
// development. It reports a small fixed voice catalog and renders a
// deterministic placeholder payload instead of real audio.
package stub

import (
	"context"
	"fmt"
	"io"

	"github.com/edgespeak/edgespeak/internal/engine"
	"github.com/edgespeak/edgespeak/internal/engine/registry"
)

func init() {
	registry.Engines.Register("stub", func(_ map[string]string) (engine.Engine, error) {
		return &Stub{}, nil
	})
}

// Voices is the canned catalog the stub reports, in fetch order.
var Voices = []engine.RawVoice{
	{
		Name:         "Microsoft Server Speech Text to Speech Voice (en-US, AriaNeural)",
		ShortName:    "en-US-AriaNeural",
		Gender:       "Female",
		Locale:       "en-US",
		FriendlyName: "Microsoft Aria Online (Natural) - English (United States)",
	},
	{
		Name:         "Microsoft Server Speech Text to Speech Voice (en-US, GuyNeural)",
		ShortName:    "en-US-GuyNeural",
		Gender:       "Male",
		Locale:       "en-US",
		FriendlyName: "Microsoft Guy Online (Natural) - English (United States)",
	},
	{
		Name:         "Microsoft Server Speech Text to Speech Voice (en-GB, SoniaNeural)",
		ShortName:    "en-GB-SoniaNeural",
		Gender:       "Female",
		Locale:       "en-GB",
		FriendlyName: "Microsoft Sonia Online (Natural) - English (United Kingdom)",
	},
	{
		Name:         "Microsoft Server Speech Text to Speech Voice (af-ZA, AdriNeural)",
		ShortName:    "af-ZA-AdriNeural",
		Gender:       "Female",
		Locale:       "af-ZA",
		FriendlyName: "Microsoft Adri Online (Natural) - Afrikaans (South Africa)",
	},
	{
		Name:         "Microsoft Server Speech Text to Speech Voice (fr-FR, DeniseNeural)",
		ShortName:    "fr-FR-DeniseNeural",
		Gender:       "Female",
		Locale:       "fr-FR",
		FriendlyName: "Microsoft Denise Online (Natural) - French (France)",
	},
}

// Stub is a no-network Engine.
type Stub struct {
	// ListErr and RenderErr, when set, force the corresponding call to
	// fail. Tests use these to exercise error paths.
	ListErr   error
	RenderErr error
}

func (s *Stub) ListVoices(_ context.Context) ([]engine.RawVoice, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]engine.RawVoice, len(Voices))
	copy(out, Voices)
	return out, nil
}

func (s *Stub) Render(_ context.Context, text, voiceID, rate string, w io.Writer) error {
	if s.RenderErr != nil {
		return s.RenderErr
	}
	_, err := fmt.Fprintf(w, "FAKEMP3|voice=%s|rate=%s|text=%s", voiceID, rate, text)
	return err
}

func (s *Stub) Close() error {
	return nil
}
