/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package clip turns a clip locator into playable bytes.
//
// A locator is one of:
//
//	data:audio/mpeg;base64,....   inline clip returned by the assistant
//	https://host/path/clip.mp3    remote clip, cached on disk
//	file:///abs/path.wav          local file
//	/abs/path.ogg, ./rel.mp3      local file
package clip

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"krishimitra/internal/codec"
	"krishimitra/pkg/format"
)

var (
	ErrUnsupportedLocator = errors.New("clip: unsupported locator")
	ErrUnknownFormat      = errors.New("clip: unknown audio format")
	ErrTooLarge           = errors.New("clip: clip too large")
)

// DefaultMaxBytes caps a single downloaded or decoded clip.
const DefaultMaxBytes = 32 << 20

// Clip is a resolved audio resource.
type Clip struct {
	Locator string
	Kind    format.Kind
	Data    []byte
}

// Options configures a Resolver. The zero value resolves data URIs and local
// files and downloads without caching.
type Options struct {
	CacheDir string
	MaxBytes int64
	Timeout  time.Duration
	Client   *http.Client
}

// Resolver fetches clips by locator.
type Resolver struct {
	client   *http.Client
	cacheDir string
	maxBytes int64
	log      zerolog.Logger
}

func NewResolver(opts Options, log zerolog.Logger) *Resolver {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	max := opts.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	return &Resolver{
		client:   client,
		cacheDir: opts.CacheDir,
		maxBytes: max,
		log:      log.With().Str("component", "clip").Logger(),
	}
}

// Resolve loads the clip behind locator and identifies its format.
func (r *Resolver) Resolve(ctx context.Context, locator string) (*Clip, error) {
	var (
		data []byte
		hint format.Kind
		err  error
	)

	switch {
	case locator == "":
		return nil, ErrUnsupportedLocator
	case strings.HasPrefix(locator, "data:"):
		var mime string
		mime, data, err = ParseDataURI(locator)
		hint = format.KindFromMime(mime)
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		data, err = r.fetch(ctx, locator)
	case strings.HasPrefix(locator, "file://"):
		u, perr := url.Parse(locator)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedLocator, perr)
		}
		data, err = r.readFile(u.Path)
		hint = kindFromExt(u.Path)
	case strings.Contains(locator, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocator, scheme(locator))
	default:
		data, err = r.readFile(locator)
		hint = kindFromExt(locator)
	}
	if err != nil {
		return nil, err
	}

	kind := format.Sniff(data)
	if kind == format.KindUnknown {
		kind = hint
	}
	if kind == format.KindUnknown {
		return nil, ErrUnknownFormat
	}
	return &Clip{Locator: locator, Kind: kind, Data: data}, nil
}

// ======================================================
// Sources
// ======================================================

func (r *Resolver) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clip: %w", err)
	}
	defer f.Close()
	return r.readLimited(f)
}

func (r *Resolver) fetch(ctx context.Context, locator string) ([]byte, error) {
	cached := r.cachePath(locator)
	if cached != "" {
		if data, err := os.ReadFile(cached); err == nil {
			r.log.Debug().Str("key", filepath.Base(cached)).Msg("cache hit")
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLocator, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch clip: status %s", resp.Status)
	}
	data, err := r.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	if cached != "" {
		if err := writeAtomic(cached, data); err != nil {
			r.log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return data, nil
}

func (r *Resolver) readLimited(src io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read clip: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func (r *Resolver) cachePath(locator string) string {
	if r.cacheDir == "" {
		return ""
	}
	return filepath.Join(r.cacheDir, codec.ClipKey(locator))
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".clip-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ======================================================
// Data URIs
// ======================================================

// DataURI builds a base64 data URI locator.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI splits a data URI into its media type and decoded payload.
func ParseDataURI(locator string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(locator, "data:")
	if !ok {
		return "", nil, ErrUnsupportedLocator
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data uri without payload", ErrUnsupportedLocator)
	}

	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if !isBase64 {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrUnsupportedLocator, err)
		}
		return mime, []byte(s), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some servers strip padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad base64: %v", ErrUnsupportedLocator, err)
	}
	return mime, data, nil
}

func kindFromExt(path string) format.Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return format.KindMP3
	case ".wav":
		return format.KindWAV
	case ".ogg", ".opus":
		return format.KindOpus
	}
	return format.KindUnknown
}

func scheme(locator string) string {
	s, _, _ := strings.Cut(locator, "://")
	return s
}
