package config

import (
	"os"
	"path/filepath"

	"github.com/pitabwire/frame/config"
)

// EdgeSpeakConfig holds configuration for the edgespeak service.
type EdgeSpeakConfig struct {
	config.ConfigurationDefault
	EngineBackend string `envDefault:"edge"             env:"TTS_ENGINE"`
	DefaultRate   string `envDefault:"+0%"              env:"DEFAULT_RATE"`
	ScratchDir    string `envDefault:""                 env:"SCRATCH_DIR"`
	StatsFile     string `envDefault:""                 env:"STATS_FILE"`
	PresetsDir    string `envDefault:"./presets"        env:"PRESETS_DIR"`
	SessionSecret string `envDefault:"edgespeak-dev-secret" env:"SESSION_SECRET"`
	AdminUsername string `envDefault:"Spidey"           env:"ADMIN_USERNAME"`
	AdminPassword string `envDefault:"Admin_734401"     env:"ADMIN_PASSWORD"`
	EdgeVoicesURL string `envDefault:""                 env:"EDGE_VOICES_URL"`
	EdgeWSSURL    string `envDefault:""                 env:"EDGE_WSS_URL"`
}

// ScratchPath returns the directory for transient audio files: the
// configured one, or /tmp on serverless platforms, or the system temp
// directory.
func (c *EdgeSpeakConfig) ScratchPath() string {
	if c.ScratchDir != "" {
		return c.ScratchDir
	}
	return defaultScratchDir()
}

// StatsPath returns the location of the usage counters file, defaulting
// to server_stats.json in the scratch directory.
func (c *EdgeSpeakConfig) StatsPath() string {
	if c.StatsFile != "" {
		return c.StatsFile
	}
	return filepath.Join(c.ScratchPath(), "server_stats.json")
}

// EngineConfig builds the config map handed to the engine factory.
func (c *EdgeSpeakConfig) EngineConfig() map[string]string {
	return map[string]string{
		"voices_url": c.EdgeVoicesURL,
		"wss_url":    c.EdgeWSSURL,
	}
}

// Serverless platforms only guarantee /tmp to be writable.
func defaultScratchDir() string {
	if os.Getenv("VERCEL") != "" || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return "/tmp"
	}
	return os.TempDir()
}
