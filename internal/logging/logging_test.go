/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Info().Msg("hidden")
	log.Warn().Str("component", "playback").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "playback", entry["component"])
	require.Equal(t, "shown", entry["message"])
	require.Contains(t, entry, "time")
}

func TestNewUnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "chatty")
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "krishimitra.log")

	for i := 0; i < 2; i++ {
		log, closer, err := File(path, "info")
		require.NoError(t, err)
		log.Info().Int("run", i).Msg("start")
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(data), "\n"))
}
