/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package config resolves runtime settings from ~/.krishimitra/config.toml,
// KRISHI_* environment variables and built-in defaults, in that order of
// increasing precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"krishimitra/internal/i18n"
	"krishimitra/pkg/format"
)

// ======================================================
// Schema
// ======================================================

type Config struct {
	LogLevel string `toml:"log_level"`

	Backend  BackendConfig  `toml:"backend"`
	Audio    AudioConfig    `toml:"audio"`
	Voice    VoiceConfig    `toml:"voice"`
	UI       UIConfig       `toml:"ui"`
	Location LocationConfig `toml:"location"`

	// Dir holds config, preferences, logs and caches.
	Dir string `toml:"-"`
}

type BackendConfig struct {
	URL         string        `toml:"url"`
	Timeout     time.Duration `toml:"timeout"`
	MinInterval time.Duration `toml:"min_interval"`
}

type AudioConfig struct {
	Autoplay   bool    `toml:"autoplay"`
	VolumeDB   float64 `toml:"volume_db"`
	SampleRate int     `toml:"sample_rate"`
	Socket     string  `toml:"socket"`
}

type VoiceConfig struct {
	Command     string        `toml:"command"`
	InputFormat string        `toml:"input_format"`
	InputDevice string        `toml:"input_device"`
	MaxDuration time.Duration `toml:"max_duration"`
}

type UIConfig struct {
	Language    string        `toml:"language"`
	TypingSpeed time.Duration `toml:"typing_speed"`
	LocaleDir   string        `toml:"locale_dir"`
}

type LocationConfig struct {
	URL string `toml:"url"`
}

// Default returns the built-in settings rooted at dir.
func Default(dir string) *Config {
	return &Config{
		LogLevel: "info",
		Backend: BackendConfig{
			URL:         "http://127.0.0.1:8000",
			Timeout:     90 * time.Second,
			MinInterval: time.Second,
		},
		Audio: AudioConfig{
			Autoplay:   true,
			SampleRate: format.SampleRate,
			Socket:     format.SocketFile,
		},
		Voice: VoiceConfig{
			Command:     "ffmpeg",
			InputFormat: "pulse",
			InputDevice: "default",
			MaxDuration: 15 * time.Second,
		},
		UI: UIConfig{
			TypingSpeed: 15 * time.Millisecond,
			LocaleDir:   filepath.Join(dir, "locales"),
		},
		Location: LocationConfig{
			URL: "https://nominatim.openstreetmap.org",
		},
		Dir: dir,
	}
}

// ======================================================
// Paths
// ======================================================

// HomeDir returns $KRISHI_HOME or ~/.krishimitra.
func HomeDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("KRISHI_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("could not determine home directory")
	}
	return filepath.Join(home, ".krishimitra"), nil
}

func (c *Config) Path() string { return filepath.Join(c.Dir, "config.toml") }
func (c *Config) PrefsPath() string { return filepath.Join(c.Dir, "prefs.toml") }
func (c *Config) LogPath() string { return filepath.Join(c.Dir, "krishimitra.log") }
func (c *Config) CacheDir() string { return filepath.Join(c.Dir, "cache") }

// ======================================================
// Loading
// ======================================================

// Load reads the config file in HomeDir, if any.
func Load() (*Config, error) {
	dir, err := HomeDir()
	if err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

// LoadDir reads dir/config.toml over the defaults, then applies the
// environment and validates the result. A missing file is not an error.
func LoadDir(dir string) (*Config, error) {
	cfg := Default(dir)

	if _, err := toml.DecodeFile(cfg.Path(), cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", cfg.Path(), err)
	}
	cfg.Dir = dir

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies KRISHI_* variables.
func (c *Config) ApplyEnvOverrides() error {
	c.Backend.URL = envOrDefault("KRISHI_BACKEND_URL", c.Backend.URL)
	c.Audio.Socket = envOrDefault("KRISHI_SOCKET", c.Audio.Socket)
	c.Voice.Command = envOrDefault("KRISHI_FFMPEG", c.Voice.Command)
	c.UI.Language = envOrDefault("KRISHI_LANG", c.UI.Language)
	c.LogLevel = envOrDefault("KRISHI_LOG_LEVEL", c.LogLevel)

	if v := strings.TrimSpace(os.Getenv("KRISHI_BACKEND_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KRISHI_BACKEND_TIMEOUT: %w", err)
		}
		c.Backend.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("KRISHI_AUTOPLAY")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KRISHI_AUTOPLAY: %w", err)
		}
		c.Audio.Autoplay = b
	}
	if v := strings.TrimSpace(os.Getenv("KRISHI_VOLUME_DB")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("KRISHI_VOLUME_DB: %w", err)
		}
		c.Audio.VolumeDB = f
	}
	return nil
}

// Validate checks ranges and formats.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q: want an http(s) URL", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Backend.MinInterval < 0 {
		errs = append(errs, errors.New("backend.min_interval must not be negative"))
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d out of range", c.Audio.SampleRate))
	}
	if c.Audio.VolumeDB < format.MinVolumeDB || c.Audio.VolumeDB > format.MaxVolumeDB {
		errs = append(errs, fmt.Errorf("audio.volume_db %.1f out of range [%g, %g]",
			c.Audio.VolumeDB, format.MinVolumeDB, format.MaxVolumeDB))
	}
	if c.Audio.Socket == "" {
		errs = append(errs, errors.New("audio.socket is empty"))
	}
	if c.Voice.MaxDuration <= 0 {
		errs = append(errs, errors.New("voice.max_duration must be positive"))
	}
	if c.UI.Language != "" && !supported(c.UI.Language) {
		errs = append(errs, fmt.Errorf("ui.language %q: want en, hi or te", c.UI.Language))
	}
	if c.UI.TypingSpeed < 0 {
		errs = append(errs, errors.New("ui.typing_speed must not be negative"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

func supported(code string) bool {
	for _, l := range i18n.Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
