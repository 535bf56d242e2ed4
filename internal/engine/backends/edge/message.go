package edge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// The read-aloud stream exchanges messages of text headers separated from
// an optional body by a blank line, the same shape for both directions.
// Binary frames prefix the headers with a big-endian 2-byte header length.

const outputFormat = "audio-24khz-48kbitrate-mono-mp3"

func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05") + " GMT+0000 (Coordinated Universal Time)"
}

func speechConfigMessage() []byte {
	var b strings.Builder
	b.WriteString("X-Timestamp:" + timestamp() + "\r\n")
	b.WriteString("Content-Type:application/json; charset=utf-8\r\n")
	b.WriteString("Path:speech.config\r\n\r\n")
	b.WriteString(`{"context":{"synthesis":{"audio":{"metadataoptions":` +
		`{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},` +
		`"outputFormat":"` + outputFormat + `"}}}}`)
	return []byte(b.String())
}

func ssmlMessage(requestID, text, voiceID, rate string) []byte {
	var b strings.Builder
	b.WriteString("X-RequestId:" + requestID + "\r\n")
	b.WriteString("Content-Type:application/ssml+xml\r\n")
	b.WriteString("X-Timestamp:" + timestamp() + "\r\n")
	b.WriteString("Path:ssml\r\n\r\n")
	b.WriteString("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>")
	b.WriteString("<voice name='" + voiceID + "'>")
	b.WriteString("<prosody pitch='+0Hz' rate='" + rate + "' volume='+0%'>")
	b.WriteString(escapeXML(text))
	b.WriteString("</prosody></voice></speak>")
	return []byte(b.String())
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// splitTextMessage parses a text frame into its headers and body.
func splitTextMessage(data []byte) (map[string]string, []byte) {
	head, body, _ := bytes.Cut(data, []byte("\r\n\r\n"))
	return parseHeaders(head), body
}

// parseBinaryMessage extracts the audio payload and the Path header from a
// binary frame.
func parseBinaryMessage(data []byte) (payload []byte, path string, err error) {
	if len(data) < 2 {
		return nil, "", fmt.Errorf("binary frame too short (%d bytes)", len(data))
	}
	headerLen := int(binary.BigEndian.Uint16(data[:2]))
	if 2+headerLen > len(data) {
		return nil, "", fmt.Errorf("binary frame header length %d exceeds frame size %d", headerLen, len(data))
	}
	headers := parseHeaders(data[2 : 2+headerLen])
	return data[2+headerLen:], headers["Path"], nil
}

func parseHeaders(raw []byte) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(string(raw), "\r\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
