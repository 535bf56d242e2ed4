// Package web serves the HTTP surface: the /tts synthesis endpoint, the
// HTML pages around it, and the admin panel.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/pitabwire/util"

	"github.com/edgespeak/edgespeak/config"
	"github.com/edgespeak/edgespeak/internal/engine"
	"github.com/edgespeak/edgespeak/internal/stats"
	"github.com/edgespeak/edgespeak/internal/synth"
	"github.com/edgespeak/edgespeak/internal/voice"
	"github.com/edgespeak/edgespeak/pkg/presets"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves all routes. The voice catalog is fetched fresh from the
// engine on every request that needs it.
type Handler struct {
	cfg      *config.EdgeSpeakConfig
	eng      engine.Engine
	synth    *synth.Synthesizer
	stats    *stats.Store
	presets  *presets.Loader
	sessions *sessions
	tmpl     *template.Template
}

// NewHandler creates the web handler with its parsed templates.
func NewHandler(cfg *config.EdgeSpeakConfig, eng engine.Engine, syn *synth.Synthesizer, st *stats.Store, pl *presets.Loader) (*Handler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return &Handler{
		cfg:      cfg,
		eng:      eng,
		synth:    syn,
		stats:    st,
		presets:  pl,
		sessions: newSessions(cfg.SessionSecret),
		tmpl:     tmpl,
	}, nil
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/verify-security", h.handleVerifySecurity)
	mux.HandleFunc("/voices", h.handleVoices)
	mux.HandleFunc("/languages", h.handleLanguages)
	mux.HandleFunc("/api-docs", h.handleAPIDocs)
	mux.HandleFunc("/presets", h.handlePresets)
	mux.HandleFunc("/tts", h.handleTTS)
	mux.HandleFunc("/dashboard/734401", h.handleAdminLogin)
	mux.HandleFunc("/dashboard/panel", h.handleAdminPanel)
	mux.HandleFunc("/logout", h.handleLogout)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleTTS is the synthesis endpoint: classify and count the request,
// fetch the catalog, resolve the voice, render, return the bytes.
func (h *Handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	text := r.FormValue("text")
	if text == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing 'text' parameter")
		return
	}

	// Counters are best-effort: a failed write must never block synthesis.
	origin := stats.Classify(r.Referer(), r.Host)
	if err := h.stats.Increment(origin); err != nil {
		util.Log(ctx).WithError(err).Error("usage counter update failed")
	}

	catalog, err := voice.Fetch(ctx, h.eng)
	if err != nil {
		util.Log(ctx).WithError(err).Error("voice catalog fetch failed")
		writeJSONError(w, http.StatusInternalServerError, "TTS Engine unavailable")
		return
	}

	voiceID := voice.Resolve(catalog, voice.Query{
		Voice:   r.FormValue("voice"),
		Lang:    r.FormValue("lang"),
		Gender:  r.FormValue("gender"),
		Country: r.FormValue("country"),
	})

	rate := r.FormValue("rate")
	if rate == "" {
		rate = h.cfg.DefaultRate
	}

	audio, err := h.synth.Synthesize(ctx, text, voiceID, rate)
	if err != nil {
		util.Log(ctx).WithError(err).Error("synthesis failed")
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=tts_%s.mp3", voiceID))
	w.Header().Set("X-Voice-Used", voiceID)
	w.Write(audio)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if !h.sessions.has(r, cookieVerified, "verified_user") {
		h.render(w, "security.html", nil)
		return
	}

	catalog, err := voice.Fetch(r.Context(), h.eng)
	if err != nil {
		http.Error(w, fmt.Sprintf("System Error: %v", err), http.StatusInternalServerError)
		return
	}
	h.render(w, "generator.html", map[string]any{
		"Voices":  catalog.SortedByLocale(),
		"Presets": h.presets.All(),
	})
}

// handleVerifySecurity marks the browser as having passed the security
// check page.
func (h *Handler) handleVerifySecurity(w http.ResponseWriter, r *http.Request) {
	h.sessions.set(w, cookieVerified, "verified_user")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleVoices(w http.ResponseWriter, r *http.Request) {
	catalog, err := voice.Fetch(r.Context(), h.eng)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error loading voices: %v", err), http.StatusInternalServerError)
		return
	}
	h.render(w, "voices.html", map[string]any{"Voices": catalog.All()})
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	catalog, err := voice.Fetch(r.Context(), h.eng)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error loading languages: %v", err), http.StatusInternalServerError)
		return
	}
	h.render(w, "languages.html", map[string]any{"Languages": catalog.UniqueByLocale()})
}

func (h *Handler) handleAPIDocs(w http.ResponseWriter, _ *http.Request) {
	h.render(w, "apidocs.html", nil)
}

func (h *Handler) handlePresets(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.presets.All())
}

func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if r.FormValue("username") == h.cfg.AdminUsername && r.FormValue("password") == h.cfg.AdminPassword {
			h.sessions.set(w, cookieAdmin, "admin_logged_in")
			http.Redirect(w, r, "/dashboard/panel", http.StatusFound)
			return
		}
	}
	h.render(w, "admin_login.html", nil)
}

func (h *Handler) handleAdminPanel(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.has(r, cookieAdmin, "admin_logged_in") {
		http.Redirect(w, r, "/dashboard/734401", http.StatusFound)
		return
	}
	h.render(w, "admin_panel.html", map[string]any{"Stats": h.stats.Load()})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.clear(w, cookieAdmin)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template render failed", slog.String("template", name), slog.String("error", err.Error()))
	}
}
