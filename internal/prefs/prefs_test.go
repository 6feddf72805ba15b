/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prefs.toml")

	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, Prefs{}, s.Get())

	require.NoError(t, s.SetLanguage("te"))
	require.NoError(t, s.SetLocation(Coords{Lat: 17.385, Lon: 78.4867}))

	reopened, err := Open(path)
	require.NoError(t, err)
	p := reopened.Get()
	require.Equal(t, "te", p.Language)
	require.True(t, p.LocationAsked)
	require.NotNil(t, p.Location)
	require.InDelta(t, 17.385, p.Location.Lat, 1e-9)
	require.InDelta(t, 78.4867, p.Location.Lon, 1e-9)
}

func TestSkipLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SkipLocation())

	reopened, err := Open(path)
	require.NoError(t, err)
	require.True(t, reopened.Get().LocationAsked)
	require.Nil(t, reopened.Get().Location)
}

func TestGetReturnsCopy(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)
	require.NoError(t, s.SetLocation(Coords{Lat: 1, Lon: 2}))

	p := s.Get()
	p.Location.Lat = 50
	require.Equal(t, 1.0, s.Get().Location.Lat)
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("language = ["), 0o644))
	_, err := Open(path)
	require.Error(t, err)
}

func TestParseCoords(t *testing.T) {
	c, err := ParseCoords(" 17.38, 78.48 ")
	require.NoError(t, err)
	require.Equal(t, Coords{Lat: 17.38, Lon: 78.48}, c)
	require.Equal(t, "17.38000,78.48000", c.String())

	for _, bad := range []string{"", "17.38", "a,b", "91,0", "0,181"} {
		_, err := ParseCoords(bad)
		require.Error(t, err, bad)
	}
}
