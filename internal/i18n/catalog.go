/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package i18n translates UI strings for English, Hindi and Telugu.
//
// Built-in strings can be overridden per language with a TOML file named
// after the language code in the locale directory, e.g. hi.toml:
//
//	aiIsThinking = "सोच रहा हूँ..."
//
// Override files are reloaded while the application runs. A % in a string
// that takes no arguments is printed as is. Strings that take arguments
// (imageAttached, imageError, languageChanged) are format strings, so a
// literal percent sign there is written %%.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLanguage is used when nothing better matches.
const DefaultLanguage = "en"

// Language is a selectable UI language.
type Language struct {
	Code string
	Name string
}

// Languages lists the supported languages in selector order.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "hi", Name: "हिंदी"},
	{Code: "te", Name: "తెలుగు"},
}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Hindi,
	language.Telugu,
})

// Match maps any BCP 47 tag or locale string (en_IN.UTF-8, hi-IN, te) to a
// supported language code.
func Match(pref string) string {
	pref = strings.TrimSpace(pref)
	if i := strings.IndexByte(pref, '.'); i >= 0 {
		pref = pref[:i]
	}
	pref = strings.ReplaceAll(pref, "_", "-")
	if pref == "" || strings.EqualFold(pref, "C") || strings.EqualFold(pref, "POSIX") {
		return DefaultLanguage
	}
	tag, err := language.Parse(pref)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	return Languages[idx].Code
}

// Next returns the language after code in selector order.
func Next(code string) string {
	for i, l := range Languages {
		if l.Code == code {
			return Languages[(i+1)%len(Languages)].Code
		}
	}
	return DefaultLanguage
}

// NameOf returns the display name for code.
func NameOf(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// ======================================================
// Catalog
// ======================================================

// Catalog resolves message keys to translated strings.
type Catalog struct {
	dir string
	log zerolog.Logger

	mu       sync.RWMutex
	printers map[string]*message.Printer

	changed chan struct{}
}

// New builds a catalog from the built-in strings plus any overrides in dir.
// An empty dir disables overrides.
func New(dir string, log zerolog.Logger) (*Catalog, error) {
	c := &Catalog{
		dir:     dir,
		log:     log.With().Str("component", "i18n").Logger(),
		changed: make(chan struct{}, 1),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// T formats key in lang. Unknown keys come back unchanged.
func (c *Catalog) T(lang, key string, args ...any) string {
	c.mu.RLock()
	p, ok := c.printers[Match(lang)]
	c.mu.RUnlock()
	if !ok {
		return key
	}
	return p.Sprintf(key, args...)
}

// Changed receives a value after every successful reload.
func (c *Catalog) Changed() <-chan struct{} { return c.changed }

// Reload rebuilds the catalog from the built-in strings and override files.
func (c *Catalog) Reload() error {
	var overrides map[string]map[string]string
	if c.dir != "" {
		overrides = make(map[string]map[string]string, len(Languages))
		for _, l := range Languages {
			o, err := loadOverrides(filepath.Join(c.dir, l.Code+".toml"))
			if err != nil {
				return err
			}
			if len(o) > 0 {
				c.log.Debug().Str("lang", l.Code).Int("keys", len(o)).Msg("locale overrides")
			}
			overrides[l.Code] = o
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, l := range Languages {
		tag := language.MustParse(l.Code)
		for key, text := range merged(l.Code, overrides) {
			if !takesArgs(key) {
				text = strings.ReplaceAll(text, "%", "%%")
			}
			if err := b.SetString(tag, key, text); err != nil {
				return fmt.Errorf("i18n %s/%s: %w", l.Code, key, err)
			}
		}
	}

	printers := make(map[string]*message.Printer, len(Languages))
	for _, l := range Languages {
		printers[l.Code] = message.NewPrinter(language.MustParse(l.Code), message.Catalog(b))
	}

	c.mu.Lock()
	c.printers = printers
	c.mu.Unlock()

	select {
	case c.changed <- struct{}{}:
	default:
	}
	return nil
}

// takesArgs reports whether key is formatted with arguments, judged by its
// English built-in.
func takesArgs(key string) bool {
	return strings.Contains(builtin[DefaultLanguage][key], "%")
}

// merged layers the strings for code: English built-ins, English overrides,
// then the language's own built-ins and overrides.
func merged(code string, overrides map[string]map[string]string) map[string]string {
	out := make(map[string]string, len(builtin[DefaultLanguage]))
	layers := []map[string]string{builtin[DefaultLanguage], overrides[DefaultLanguage]}
	if code != DefaultLanguage {
		layers = append(layers, builtin[code], overrides[code])
	}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

func loadOverrides(path string) (map[string]string, error) {
	var out map[string]string
	if _, err := toml.DecodeFile(path, &out); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("locale %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// ======================================================
// Hot reload
// ======================================================

// Watch reloads the catalog whenever a file in the locale directory changes,
// until ctx is cancelled. A broken file keeps the previous strings.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(c.dir); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Ext(ev.Name) != ".toml" {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := c.Reload(); err != nil {
					c.log.Warn().Err(err).Msg("locale reload failed")
					continue
				}
				c.log.Info().Str("file", filepath.Base(ev.Name)).Msg("locale reloaded")
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.log.Warn().Err(err).Msg("locale watcher")
			}
		}
	}()
	return nil
}
