/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package format

const (
	// === IDENTITY & VERSIONING ===
	AppName      = "Krishi Mitra"
	VersionMajor = 1
	VersionMinor = 0

	// === AUDIO ENGINE ===
	SampleRate      = 48000 // speaker output rate
	Channels        = 2
	BufferMillis    = 100
	ResampleQuality = 4
	MinVolumeDB     = -60.0 // output gain range, config and IPC alike
	MaxVolumeDB     = 12.0

	// === VOICE CAPTURE ===
	VoiceSampleRate = 16000
	VoiceChannels   = 1
	VoiceBitDepth   = 16

	// === MAGIC NUMBERS ===
	MagicRIFF = "RIFF"
	MagicWAVE = "WAVE"
	MagicOgg  = "OggS"
	MagicOpus = "OpusHead"
	MagicID3  = "ID3"

	// === MIME TYPES ===
	MimeMP3  = "audio/mpeg"
	MimeWAV  = "audio/wav"
	MimeOgg  = "audio/ogg"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"

	// === IPC ===
	SocketFile = "/tmp/krishimitra-speaker.sock"
)

// Kind is the container/codec of a clip.
type Kind int

const (
	KindUnknown Kind = iota
	KindMP3
	KindWAV
	KindOpus
)

func (k Kind) String() string {
	switch k {
	case KindMP3:
		return "mp3"
	case KindWAV:
		return "wav"
	case KindOpus:
		return "opus"
	default:
		return "unknown"
	}
}

// Sniff identifies a clip from its leading bytes.
func Sniff(head []byte) Kind {
	switch {
	case len(head) >= 12 && string(head[:4]) == MagicRIFF && string(head[8:12]) == MagicWAVE:
		return KindWAV
	case len(head) >= 4 && string(head[:4]) == MagicOgg:
		return KindOpus
	case len(head) >= 3 && string(head[:3]) == MagicID3:
		return KindMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// bare MPEG frame sync
		return KindMP3
	}
	return KindUnknown
}

// KindFromMime maps a data URI media type to a Kind.
func KindFromMime(mime string) Kind {
	switch mime {
	case MimeMP3, "audio/mp3":
		return KindMP3
	case MimeWAV, "audio/x-wav", "audio/wave":
		return KindWAV
	case MimeOgg, "audio/opus":
		return KindOpus
	}
	return KindUnknown
}
