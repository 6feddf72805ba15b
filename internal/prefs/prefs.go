/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package prefs persists the small amount of user state that survives a
// restart: the chosen language and the saved farm location.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Coords is a saved location in decimal degrees.
type Coords struct {
	Lat float64 `toml:"lat"`
	Lon float64 `toml:"lon"`
}

func (c Coords) String() string {
	return strconv.FormatFloat(c.Lat, 'f', 5, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 5, 64)
}

// ParseCoords reads "lat,lon".
func ParseCoords(s string) (Coords, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Coords{}, fmt.Errorf("coords %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return Coords{}, fmt.Errorf("coords %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return Coords{}, fmt.Errorf("coords %q: %w", s, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coords{}, fmt.Errorf("coords %q: out of range", s)
	}
	return Coords{Lat: lat, Lon: lon}, nil
}

// Prefs is the persisted state.
type Prefs struct {
	Language      string  `toml:"language,omitempty"`
	LocationAsked bool    `toml:"location_asked"`
	Location      *Coords `toml:"location,omitempty"`
}

// Store reads and writes Prefs at a fixed path.
type Store struct {
	path string

	mu    sync.Mutex
	prefs Prefs
}

// Open loads path, starting empty when it does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := toml.DecodeFile(path, &s.prefs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load prefs: %w", err)
	}
	return s, nil
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.prefs
	if p.Location != nil {
		loc := *p.Location
		p.Location = &loc
	}
	return p
}

// SetLanguage records and saves the UI language.
func (s *Store) SetLanguage(code string) error {
	return s.update(func(p *Prefs) { p.Language = code })
}

// SetLocation saves coords and marks the first-run prompt as answered.
func (s *Store) SetLocation(c Coords) error {
	return s.update(func(p *Prefs) {
		p.Location = &c
		p.LocationAsked = true
	})
}

// SkipLocation marks the first-run prompt as answered without a location.
func (s *Store) SkipLocation() error {
	return s.update(func(p *Prefs) { p.LocationAsked = true })
}

func (s *Store) update(fn func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.prefs
	fn(&next)
	if err := s.save(next); err != nil {
		return err
	}
	s.prefs = next
	return nil
}

func (s *Store) save(p Prefs) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}
