/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"strconv"
	"strings"

	"krishimitra/pkg/format"
)

// exec runs one command line and returns the reply without its newline.
// WATCH also starts the event stream on cl.
func (s *server) exec(cl *client, line string) string {
	// verb + raw arg, so locators may contain spaces
	parts := strings.SplitN(line, " ", 2)
	verb := strings.ToUpper(parts[0])
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}

	switch verb {
	case "ABOUT":
		return fmt.Sprintf("%s Speaker V.%d.%d", format.AppName, format.VersionMajor, format.VersionMinor)

	case "PING":
		return "Pong"

	case "STATUS":
		return statusLine(newStatusReply(s.player.Status(), s.volumeDB()))

	case "PLAY":
		if arg == "" {
			return "ERR ARG"
		}
		s.player.RequestPlayPause(arg)
		s.log.Info().Str("locator", arg).Msg("play/pause")
		return "OK"

	case "MUTE":
		s.player.DisableAndStop()
		return "OK"

	case "WATCH":
		cl.watch(s)
		return "OK"

	case "VOL":
		if s.volume == nil {
			return "ERR NO_DEVICE"
		}
		if arg == "" {
			return strconv.FormatFloat(s.volume.Volume(), 'f', 1, 64)
		}
		db, err := strconv.ParseFloat(arg, 64)
		if err != nil || db < format.MinVolumeDB || db > format.MaxVolumeDB {
			return "ERR ARG"
		}
		s.volume.SetVolume(db)
		return "OK"
	}
	return "ERR UNKNOWN"
}

func (s *server) volumeDB() float64 {
	if s.volume == nil {
		return 0
	}
	return s.volume.Volume()
}
