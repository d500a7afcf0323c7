// Package prefs persists user preferences to a JSON file, the desktop
// analog of the front end's local storage. Articles are never stored
// here; only display preferences survive a restart.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Preferences mirrors the settings the UI lets a user change.
type Preferences struct {
	TemperatureUnit string    `json:"temperature_unit"`
	Location        string    `json:"location"`
	Theme           string    `json:"theme"`
	LastCategory    string    `json:"last_category"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store is a file-backed preference store.
type Store struct {
	path  string
	mu    sync.Mutex
	prefs Preferences
}

// NewStore creates a store over the given file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		prefs: Preferences{
			TemperatureUnit: "celsius",
			Location:        "Nairobi",
			Theme:           "light",
			LastCategory:    "latest",
		},
	}
}

// Load reads preferences from disk. A missing file keeps the defaults.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read prefs: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.prefs); err != nil {
		return fmt.Errorf("parse prefs: %w", err)
	}
	return nil
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Update applies fn to the preferences and writes them to disk.
func (s *Store) Update(fn func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.prefs)
	s.prefs.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
