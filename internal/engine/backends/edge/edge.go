// Package edge implements the synthesis engine against the Microsoft Edge
// read-aloud service: voice listing over HTTPS, audio rendering over a
// websocket synthesis stream.
package edge

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/edgespeak/edgespeak/internal/engine"
	"github.com/edgespeak/edgespeak/internal/engine/registry"
)

const (
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"

	defaultVoicesURL = "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/voices/list?trustedclienttoken=" + trustedClientToken
	defaultWSSURL    = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0"
	origin    = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"

	// Audio frames arrive well under this, but the default read limit of
	// 32KiB is too small for them.
	maxFrameSize = 1 << 22
)

func init() {
	registry.Engines.Register("edge", func(config map[string]string) (engine.Engine, error) {
		voicesURL := config["voices_url"]
		if voicesURL == "" {
			voicesURL = defaultVoicesURL
		}
		wssURL := config["wss_url"]
		if wssURL == "" {
			wssURL = defaultWSSURL
		}
		return &Edge{
			voicesURL: voicesURL,
			wssURL:    wssURL,
			client:    &http.Client{Timeout: 30 * time.Second},
		}, nil
	})
}

// Edge talks to the Edge read-aloud service.
type Edge struct {
	voicesURL string
	wssURL    string
	client    *http.Client
}

func (e *Edge) ListVoices(ctx context.Context) ([]engine.RawVoice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.voicesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("edge: create voice list request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: voice list HTTP %d: %s", engine.ErrUnavailable, resp.StatusCode, body)
	}

	var voices []engine.RawVoice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, fmt.Errorf("%w: decode voice list: %v", engine.ErrUnavailable, err)
	}
	return voices, nil
}

func (e *Edge) Render(ctx context.Context, text, voiceID, rate string, w io.Writer) error {
	wsURL := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", e.wssURL, trustedClientToken, newSessionID())

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("Origin", origin)
	headers.Set("Pragma", "no-cache")
	headers.Set("Cache-Control", "no-cache")

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: headers})
	if err != nil {
		return fmt.Errorf("edge: dial synthesis stream: %w", err)
	}
	defer conn.Close(websocket.StatusInternalError, "render aborted")
	conn.SetReadLimit(maxFrameSize)

	if err := conn.Write(ctx, websocket.MessageText, speechConfigMessage()); err != nil {
		return fmt.Errorf("edge: send speech config: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, ssmlMessage(newSessionID(), text, voiceID, rate)); err != nil {
		return fmt.Errorf("edge: send ssml: %w", err)
	}

	audioReceived := false
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("edge: read synthesis stream: %w", err)
		}

		switch typ {
		case websocket.MessageText:
			hdrs, _ := splitTextMessage(data)
			if hdrs["Path"] == "turn.end" {
				if !audioReceived {
					return fmt.Errorf("edge: no audio received for voice %q", voiceID)
				}
				conn.Close(websocket.StatusNormalClosure, "done")
				return nil
			}
		case websocket.MessageBinary:
			payload, path, err := parseBinaryMessage(data)
			if err != nil {
				return fmt.Errorf("edge: %w", err)
			}
			if path != "audio" || len(payload) == 0 {
				continue
			}
			audioReceived = true
			if _, err := w.Write(payload); err != nil {
				return fmt.Errorf("edge: write audio: %w", err)
			}
		}
	}
}

func (e *Edge) Close() error {
	return nil
}

// newSessionID returns a 32-char lowercase hex id, the format the service
// expects for ConnectionId and X-RequestId values.
func newSessionID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
