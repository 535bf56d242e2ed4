// Package presets loads named voice presets from YAML files. A preset
// pairs a friendly alias with a concrete voice id and optional rate, and
// feeds the generator page and the /presets view.
package presets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Preset is one voice shortcut.
type Preset struct {
	Name        string `yaml:"name"                  json:"name"`
	Voice       string `yaml:"voice"                 json:"voice"`
	Rate        string `yaml:"rate,omitempty"        json:"rate,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Loader loads and optionally hot-reloads presets from a directory.
type Loader struct {
	dir string

	mu      sync.RWMutex
	presets map[string]Preset
}

// NewLoader creates a preset loader for the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:     dir,
		presets: make(map[string]Preset),
	}
}

// LoadAll loads all .yaml and .yml files from the configured directory.
func (l *Loader) LoadAll() (map[string]Preset, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read presets dir %q: %w", l.dir, err)
	}

	result := make(map[string]Preset)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		p, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", path, err)
		}
		result[p.Name] = p
	}

	l.mu.Lock()
	l.presets = result
	l.mu.Unlock()

	return result, nil
}

// Get returns a loaded preset by name.
func (l *Loader) Get(name string) (Preset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.presets[name]
	return p, ok
}

// All returns the loaded presets sorted by name.
func (l *Loader) All() []Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]Preset, 0, len(l.presets))
	for _, p := range l.presets {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (l *Loader) loadFile(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, err
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse YAML: %w", err)
	}

	if p.Name == "" {
		p.Name = filepath.Base(path[:len(path)-len(filepath.Ext(path))])
	}
	if p.Voice == "" {
		return Preset{}, fmt.Errorf("preset %q has no voice", p.Name)
	}

	return p, nil
}

// WatchAndReload starts watching the presets directory for changes and
// reloads. A failed reload keeps the previous set. This blocks until the
// done channel is closed.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", l.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					if _, err := l.LoadAll(); err != nil {
						slog.Warn("preset reload failed, keeping previous set",
							slog.String("dir", l.dir), slog.String("error", err.Error()))
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
