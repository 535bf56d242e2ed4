package edge

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"

	"github.com/edgespeak/edgespeak/internal/engine"
	"github.com/edgespeak/edgespeak/internal/engine/registry"
)

func newTestEngine(t *testing.T, voicesURL, wssURL string) engine.Engine {
	t.Helper()
	eng, err := registry.Engines.Create("edge", map[string]string{
		"voices_url": voicesURL,
		"wss_url":    wssURL,
	})
	if err != nil {
		t.Fatalf("create edge engine: %v", err)
	}
	return eng
}

// wsURL converts an httptest server HTTP URL to a WebSocket URL.
func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func binaryFrame(path string, payload []byte) []byte {
	header := []byte("X-RequestId:abc\r\nContent-Type:audio/mpeg\r\nPath:" + path + "\r\n")
	frame := make([]byte, 2+len(header)+len(payload))
	binary.BigEndian.PutUint16(frame[:2], uint16(len(header)))
	copy(frame[2:], header)
	copy(frame[2+len(header):], payload)
	return frame
}

func textFrame(path string) []byte {
	return []byte("X-RequestId:abc\r\nPath:" + path + "\r\n\r\n{}")
}

func startSynthServer(t *testing.T, handler func(conn *websocket.Conn, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client declares the browser-extension origin; skip the
		// same-origin check the way the real service does.
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")
		handler(conn, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"ShortName":"en-US-AriaNeural","Gender":"Female","Locale":"en-US","FriendlyName":"Microsoft Aria Online (Natural) - English (United States)"}]`))
	}))
	defer srv.Close()

	eng := newTestEngine(t, srv.URL, "ws://unused")
	voices, err := eng.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 1 || voices[0].ShortName != "en-US-AriaNeural" {
		t.Errorf("voices = %+v", voices)
	}
}

func TestListVoicesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	eng := newTestEngine(t, srv.URL, "ws://unused")
	if _, err := eng.ListVoices(context.Background()); err == nil {
		t.Fatal("ListVoices succeeded against a failing service")
	}
}

func TestRenderStreamsAudio(t *testing.T) {
	ctx := context.Background()

	srv := startSynthServer(t, func(conn *websocket.Conn, r *http.Request) {
		if r.URL.Query().Get("ConnectionId") == "" {
			t.Error("missing ConnectionId")
		}

		// speech.config then ssml.
		for range 2 {
			_, data, err := conn.Read(ctx)
			if err != nil {
				t.Errorf("read client frame: %v", err)
				return
			}
			if bytes.Contains(data, []byte("Path:ssml")) && !bytes.Contains(data, []byte("<voice name='en-US-AriaNeural'>")) {
				t.Errorf("ssml frame missing voice element: %s", data)
			}
		}

		conn.Write(ctx, websocket.MessageText, textFrame("turn.start"))
		conn.Write(ctx, websocket.MessageBinary, binaryFrame("audio", []byte("chunk-one-")))
		conn.Write(ctx, websocket.MessageBinary, binaryFrame("audio", []byte("chunk-two")))
		conn.Write(ctx, websocket.MessageText, textFrame("turn.end"))
	})

	eng := newTestEngine(t, "http://unused", wsURL(srv))

	var buf bytes.Buffer
	if err := eng.Render(ctx, "Hello", "en-US-AriaNeural", "+0%", &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := buf.String(); got != "chunk-one-chunk-two" {
		t.Errorf("audio = %q, want concatenated chunks", got)
	}
}

func TestRenderNoAudioIsAnError(t *testing.T) {
	ctx := context.Background()

	srv := startSynthServer(t, func(conn *websocket.Conn, _ *http.Request) {
		for range 2 {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
		conn.Write(ctx, websocket.MessageText, textFrame("turn.end"))
	})

	eng := newTestEngine(t, "http://unused", wsURL(srv))

	var buf bytes.Buffer
	if err := eng.Render(ctx, "Hello", "xx-XX-NobodyNeural", "+0%", &buf); err == nil {
		t.Fatal("Render succeeded without receiving audio")
	}
}

func TestSSMLEscapesText(t *testing.T) {
	msg := string(ssmlMessage("req-1", `Tom & Jerry <3 "quotes"`, "en-US-AriaNeural", "+10%"))
	if !strings.Contains(msg, "Tom &amp; Jerry &lt;3 &quot;quotes&quot;") {
		t.Errorf("text not escaped: %s", msg)
	}
	if !strings.Contains(msg, "rate='+10%'") {
		t.Errorf("rate not applied: %s", msg)
	}
}

func TestParseBinaryMessage(t *testing.T) {
	payload, path, err := parseBinaryMessage(binaryFrame("audio", []byte("mp3data")))
	if err != nil {
		t.Fatalf("parseBinaryMessage: %v", err)
	}
	if path != "audio" || string(payload) != "mp3data" {
		t.Errorf("path = %q, payload = %q", path, payload)
	}

	if _, _, err := parseBinaryMessage([]byte{0x01}); err == nil {
		t.Error("accepted a truncated frame")
	}
	if _, _, err := parseBinaryMessage([]byte{0xFF, 0xFF, 'x'}); err == nil {
		t.Error("accepted a header length larger than the frame")
	}
}

func TestSplitTextMessage(t *testing.T) {
	headers, body := splitTextMessage([]byte("Path:turn.end\r\nX-RequestId:r1\r\n\r\npayload"))
	if headers["Path"] != "turn.end" || headers["X-RequestId"] != "r1" {
		t.Errorf("headers = %v", headers)
	}
	if string(body) != "payload" {
		t.Errorf("body = %q", body)
	}
}
