/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"encoding/json"

	"krishimitra/pkg/playback"
)

// statusReply is the STATUS payload and the body of every EVENT line.
type statusReply struct {
	Type     string  `json:"type,omitempty"`
	Locator  string  `json:"locator"`
	Playing  bool    `json:"playing"`
	Phase    string  `json:"phase"`
	VolumeDB float64 `json:"volume_db"`
}

func newStatusReply(s playback.Status, volumeDB float64) statusReply {
	return statusReply{
		Locator:  s.Locator,
		Playing:  s.Playing,
		Phase:    s.Phase().String(),
		VolumeDB: volumeDB,
	}
}

// eventType names the transition from prev to next for WATCH clients.
func eventType(prev, next playback.Status) string {
	switch {
	case next.Locator == "" && prev.Locator != "":
		return "STOPPED"
	case next.Locator != prev.Locator:
		return "TRACK_CHANGED"
	default:
		return "STATUS"
	}
}

func statusLine(r statusReply) string {
	b, _ := json.Marshal(r)
	return string(b)
}
