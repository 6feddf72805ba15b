/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package location turns saved coordinates into a short place name.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"krishimitra/internal/prefs"
	"krishimitra/pkg/format"
)

// DefaultURL is the public OpenStreetMap reverse geocoder.
const DefaultURL = "https://nominatim.openstreetmap.org"

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
}

// Geocoder queries a Nominatim-compatible reverse endpoint.
type Geocoder struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

func NewGeocoder(base string, timeout time.Duration, log zerolog.Logger) *Geocoder {
	if base == "" {
		base = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Geocoder{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "location").Logger(),
	}
}

// Name returns "City, State" for c. The city falls back to town and then
// village; either half may be missing.
func (g *Geocoder) Name(ctx context.Context, c prefs.Coords) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	// the public instance rejects requests without an identifying agent
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%d.%d", strings.ReplaceAll(format.AppName, " ", ""), format.VersionMajor, format.VersionMinor))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: status %s", resp.Status)
	}

	var out reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	a := out.Address
	place := firstNonEmpty(a.City, a.Town, a.Village)
	name := strings.Trim(place+", "+a.State, ", ")
	g.log.Debug().Str("name", name).Msg("reverse geocode")
	return name, nil
}

// Describe is Name with the UI fallback: a failed lookup yields fallback.
func (g *Geocoder) Describe(ctx context.Context, c prefs.Coords, fallback string) string {
	name, err := g.Name(ctx, c)
	if err != nil {
		g.log.Warn().Err(err).Msg("location lookup failed")
		return fallback
	}
	return name
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
