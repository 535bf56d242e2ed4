package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

// Session cookie flags carried by the web surface. Values are HMAC-signed
// with the configured secret so they cannot be forged client-side; this
// replaces the original's ambient process-wide session state with
// explicit per-request values.
const (
	cookieVerified = "edgespeak_verified"
	cookieAdmin    = "edgespeak_admin"
)

type sessions struct {
	secret []byte
}

func newSessions(secret string) *sessions {
	return &sessions{secret: []byte(secret)}
}

func (s *sessions) sign(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return value + "." + sig
}

func (s *sessions) verify(signed, want string) bool {
	value, sig, ok := strings.Cut(signed, ".")
	if !ok || value != want {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(expected))
}

func (s *sessions) set(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    s.sign(value),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *sessions) has(r *http.Request, name, value string) bool {
	c, err := r.Cookie(name)
	if err != nil {
		return false
	}
	return s.verify(c.Value, value)
}

func (s *sessions) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
