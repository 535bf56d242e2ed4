package engine

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable reports that the synthesis engine could not be reached
// for a voice listing. Handlers map it to a fixed user-visible message.
var ErrUnavailable = errors.New("tts engine unavailable")

// RawVoice is one catalog entry exactly as the engine reports it.
type RawVoice struct {
	Name           string `json:"Name"`
	ShortName      string `json:"ShortName"`
	Gender         string `json:"Gender"`
	Locale         string `json:"Locale"`
	FriendlyName   string `json:"FriendlyName"`
	SuggestedCodec string `json:"SuggestedCodec"`
	Status         string `json:"Status"`
}

// Engine lists synthesis voices and renders text to audio.
type Engine interface {
	// ListVoices fetches the full voice catalog from the engine.
	ListVoices(ctx context.Context) ([]RawVoice, error)

	// Render synthesizes text with the given voice id and rate offset
	// (e.g. "+0%") and writes the audio stream to w.
	Render(ctx context.Context, text, voiceID, rate string, w io.Writer) error

	Close() error
}
