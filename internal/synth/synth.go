// Package synth drives the engine's asynchronous render call to
// completion for one request and manages the transient audio artifact it
// produces.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pitabwire/frame/workerpool"
	"github.com/rs/xid"

	"github.com/edgespeak/edgespeak/internal/engine"
)

// ErrEmptyText reports a synthesis request without text. Handlers reject
// this before calling Synthesize; the guard here keeps the contract total.
var ErrEmptyText = errors.New("text must not be empty")

// Synthesizer renders text into in-memory audio via a scratch file. The
// scratch file is exclusively owned by one call and never survives it.
type Synthesizer struct {
	eng        engine.Engine
	scratchDir string
	pool       workerpool.WorkerPool
}

// New creates a Synthesizer writing scratch files into scratchDir. A nil
// pool runs renders on a plain goroutine.
func New(eng engine.Engine, scratchDir string, pool workerpool.WorkerPool) *Synthesizer {
	return &Synthesizer{eng: eng, scratchDir: scratchDir, pool: pool}
}

// Synthesize renders (text, voiceID, rate) and returns the audio bytes.
// The engine call runs on the worker pool while the request's goroutine
// blocks on its outcome. The scratch file is removed on every path,
// success and failure alike; removal errors are swallowed.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceID, rate string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	path := filepath.Join(s.scratchDir, "tts_"+xid.New().String()+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("synth: create scratch file: %w", err)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	renderDone := make(chan error, 1)
	render := func() {
		renderDone <- s.eng.Render(ctx, text, voiceID, rate, f)
	}
	if s.pool != nil {
		if err := s.pool.Submit(ctx, render); err != nil {
			f.Close()
			return nil, fmt.Errorf("synth: submit render: %w", err)
		}
	} else {
		go render()
	}

	err = <-renderDone
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("synth: close scratch file: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("synth: read rendered audio: %w", err)
	}
	return data, nil
}
